package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/client"
)

var (
	loginPassword string
	loginNoCache  bool
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and cache the API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		password := loginPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return fmt.Errorf("password must not be empty")
		}

		token, err := newAPI().Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		if loginNoCache {
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		}
		if err := client.SaveCachedToken(tokenCachePath, client.CachedToken{Username: username, Token: token}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s\n", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the cached API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.ClearCachedToken(tokenCachePath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginNoCache, "no-cache", false, "print the token instead of caching it")
}
