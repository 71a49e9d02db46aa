package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadQuiet bool

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Upload a CSV and show its summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := requireToken()
		if err != nil {
			return err
		}
		api := newAPI()
		res, err := api.Upload(cmd.Context(), token, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Uploaded %s as dataset %d\n", filepath.Base(args[0]), res.DatasetID)
		if uploadQuiet {
			return nil
		}

		sum, err := api.Summary(cmd.Context(), token, res.DatasetID)
		if err != nil {
			return fmt.Errorf("upload succeeded but fetching the summary failed: %w", err)
		}
		printSummary(cmd.OutOrStdout(), sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolVarP(&uploadQuiet, "quiet", "q", false, "print only the dataset id, skip the summary")
}
