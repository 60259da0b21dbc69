// internal/cli/login.go
package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meterkit/socialmeter/internal/auth"
	"github.com/meterkit/socialmeter/internal/ui"
)

var (
	loginSession string
	waitSelector string
	loginTimeout string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <url>",
	Short: "Interactively log in and save the session",
	Long: `Opens a visible browser window for you to manually log in.
After successful login, cookies are extracted and securely stored in your OS keyring.

The stored session can then be used with inspect and batch to read content
that is hidden from unauthenticated views.`,
	Example: `  # Log in to Facebook and save as "fb"
  socialmeter login https://www.facebook.com/login --name=fb

  # End the capture as soon as the feed appears
  socialmeter login https://www.instagram.com/accounts/login/ --name=ig --wait="main[role=main]"

  # Use the saved session
  socialmeter inspect https://www.instagram.com/p/xyz/ --session=ig`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginSession, "name", "n", "", "Session name to save (required)")
	loginCmd.Flags().StringVarP(&waitSelector, "wait", "w", "", "CSS selector that marks a completed login")
	loginCmd.Flags().StringVar(&loginTimeout, "login-timeout", "5m", "Timeout for the login process")
	loginCmd.MarkFlagRequired("name")
}

func runLogin(cmd *cobra.Command, args []string) error {
	url := args[0]

	timeout, err := time.ParseDuration(loginTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	log.Info().
		Str("url", url).
		Str("session", loginSession).
		Msg("Initiating login")

	fmt.Printf("\n%s\n", ui.Bold("Interactive Login"))
	fmt.Printf("  %s %s\n", ui.ColorBold+"Session:"+ui.ColorReset, loginSession)
	fmt.Printf("  %s %s\n", ui.ColorBold+"URL:"+ui.ColorReset, url)
	if waitSelector != "" {
		fmt.Printf("  %s %s\n", ui.ColorBold+"Waiting:"+ui.ColorReset, waitSelector)
	}
	fmt.Printf("  %s %s\n\n", ui.ColorBold+"Timeout:"+ui.ColorReset, timeout.String())

	session, err := auth.InteractiveLogin(auth.LoginOptions{
		SessionName:  loginSession,
		URL:          url,
		WaitSelector: waitSelector,
		Timeout:      timeout,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println(ui.Success("✓ Session saved"))
	fmt.Printf("\nUse it with:\n  socialmeter inspect <url> --session=%s\n\n", loginSession)

	if !session.ExpiresAt.IsZero() {
		fmt.Printf("Session expires: %s\n\n", session.ExpiresAt.Format(time.RFC1123))
	}

	return nil
}
