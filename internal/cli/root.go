// Package cli implements the equipviz terminal client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/client"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/config"
)

var (
	// Global flags, applied over the loaded config.
	cfgFile        string
	flagServerURL  string
	flagTimeoutSec int
	flagToken      string

	// Loaded configuration.
	cfg *config.Client

	// tokenCachePath overrides the per-user token cache; empty selects
	// ~/.equipment-visualizer/token.json.
	tokenCachePath string
)

var rootCmd = &cobra.Command{
	Use:   "equipviz",
	Short: "Terminal client for the chemical equipment visualizer",
	Long: `equipviz uploads equipment CSV files to the visualizer backend and shows
summaries, upload history and PDF reports from the terminal.

When the backend is unreachable or no login is cached, the summary view
falls back to a bundled sample dataset so the output stays demoable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetVersion stamps the build version reported by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the entry point called by main.main().
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.equipment-visualizer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagTimeoutSec, "timeout", 0, "request timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "API token (overrides the cached login)")
}

func loadConfig() {
	c, err := config.LoadClient(cfgFile)
	if err != nil {
		// Non-fatal: the fallback path still works on defaults.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &config.Client{ServerURL: "http://127.0.0.1:8080", TimeoutSec: 15}
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("server") && flagServerURL != "" {
		cfg.ServerURL = flagServerURL
	}
	if f.Changed("timeout") && flagTimeoutSec > 0 {
		cfg.TimeoutSec = flagTimeoutSec
	}
}

func newAPI() *client.Client {
	return client.New(cfg.ServerURL, cfg.Timeout())
}

func newLoader() *client.Loader {
	return client.NewLoader(newAPI())
}

// sessionToken finds the token for this invocation: the --token flag,
// then the EQUIPVIZ_TOKEN environment, then the cached login.
func sessionToken() string {
	if flagToken != "" {
		return flagToken
	}
	if t := os.Getenv("EQUIPVIZ_TOKEN"); t != "" {
		return t
	}
	if ct, err := client.LoadCachedToken(tokenCachePath); err == nil && ct != nil {
		return ct.Token
	}
	return ""
}

func requireToken() (string, error) {
	if t := sessionToken(); t != "" {
		return t, nil
	}
	return "", fmt.Errorf("not logged in; run 'equipviz login <username>' first")
}
