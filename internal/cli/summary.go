package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/client"
)

var (
	summaryLocalCSV string
	summaryJSON     bool
	summaryRows     int
)

var summaryCmd = &cobra.Command{
	Use:   "summary <id|filename>",
	Short: "Show statistics and a preview for a dataset",
	Long: `Shows the stored summary for a dataset, addressed by id, digit string,
original filename or stored blob name. Filenames resolve against your
upload history, newest first.

Without a live session the command serves the bundled sample dataset
and says so on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newLoader().LoadDataset(cmd.Context(), client.LoadRequest{
			Identifier:   args[0],
			Token:        sessionToken(),
			LocalCSVPath: summaryLocalCSV,
		})
		if err != nil {
			return err
		}

		if summaryJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.Summary)
		}

		if res.Source.IsFallback() {
			fmt.Fprintf(os.Stderr, "⚠ Showing bundled sample data (%s)\n", res.Source.Reason)
		}
		printSummary(cmd.OutOrStdout(), res.Summary)
		printPreview(cmd.OutOrStdout(), res.Summary, summaryRows)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your five most recent uploads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := requireToken()
		if err != nil {
			return err
		}
		entries, err := newAPI().History(cmd.Context(), token)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no uploads yet)")
			return nil
		}
		printHistory(cmd.OutOrStdout(), entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(historyCmd)
	summaryCmd.Flags().StringVar(&summaryLocalCSV, "local", "", "local copy of the source CSV for full-preview reconciliation")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the raw summary payload as JSON")
	summaryCmd.Flags().IntVar(&summaryRows, "rows", previewLimit, "preview rows to print (0 = all available)")
}
