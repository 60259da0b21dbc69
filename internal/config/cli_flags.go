package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON to stderr")
	cmd.PersistentFlags().String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", "12s", "Hard timeout for direct HTTP requests")
	cmd.PersistentFlags().String("render-timeout", "30s", "Hard timeout for browser-rendered fetches")
	cmd.PersistentFlags().String("session", "", "Name of a stored login session to reuse")
	cmd.PersistentFlags().Bool("force-render", false, "Skip the direct tier and always render in a browser")
	cmd.PersistentFlags().Bool("headful", false, "Run the browser with a visible window")
}
