// internal/cli/sessions.go
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meterkit/socialmeter/internal/auth"
	"github.com/meterkit/socialmeter/internal/ui"
)

var importSiteURL string

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved login sessions",
	Long: `List, import and delete saved login sessions.

Sessions are stored in your OS keyring (with a file fallback) and contain the
cookies needed to read content hidden from unauthenticated views.`,
	Example: `  # List all saved sessions
  socialmeter sessions list

  # Import a Playwright storage-state file captured elsewhere
  socialmeter sessions import fb storage_state.json --url=https://www.facebook.com

  # Delete a session
  socialmeter sessions delete old-session`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved sessions",
	RunE:  runSessionsList,
}

var sessionsImportCmd = &cobra.Command{
	Use:   "import <session-name> <storage-state-file>",
	Short: "Import a browser storage-state file as a session",
	Long: `Imports cookies from a Playwright-style storage-state JSON file.
This is the way to create sessions in headless environments where the
interactive login browser cannot open.`,
	Args: cobra.ExactArgs(2),
	RunE: runSessionsImport,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsImportCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	sessionsImportCmd.Flags().StringVar(&importSiteURL, "url", "", "Site the session belongs to (required)")
	sessionsImportCmd.MarkFlagRequired("url")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	sessions, err := auth.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("\nNo saved sessions found.")
		fmt.Println("\nCreate one with:")
		fmt.Println("  socialmeter login <url> --name=<name>")
		fmt.Println()
		return nil
	}

	fmt.Printf("\n%s\n\n", ui.Bold(fmt.Sprintf("Saved Sessions (%d)", len(sessions))))

	for i, name := range sessions {
		fmt.Printf("%d. %s\n", i+1, name)

		session, err := auth.Load(name)
		if err != nil {
			fmt.Printf("   %s\n", ui.Error(fmt.Sprintf("not loadable: %v", err)))
			continue
		}

		fmt.Printf("   URL: %s\n", session.URL)
		fmt.Printf("   Cookies: %d\n", len(session.Cookies))
		fmt.Printf("   Created: %s\n", session.CreatedAt.Format(time.RFC1123))

		if !session.ExpiresAt.IsZero() {
			fmt.Printf("   Expires: %s (in %s)\n",
				session.ExpiresAt.Format(time.RFC1123),
				time.Until(session.ExpiresAt).Round(time.Hour))
		}

		if i < len(sessions)-1 {
			fmt.Println()
		}
	}

	fmt.Println()
	return nil
}

func runSessionsImport(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]

	session, err := auth.ImportStorageState(name, path, importSiteURL)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	fmt.Printf("\n%s\n", ui.Success(fmt.Sprintf("✓ Session '%s' imported (%d cookies)", name, len(session.Cookies))))
	if !session.ExpiresAt.IsZero() {
		fmt.Printf("Expires: %s\n", session.ExpiresAt.Format(time.RFC1123))
	}
	fmt.Printf("\nUse it with:\n  socialmeter inspect <url> --session=%s\n\n", name)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	fmt.Printf("\nDelete session '%s'? [y/N]: ", name)
	var confirm string
	fmt.Scanln(&confirm)

	if confirm != "y" && confirm != "Y" {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := auth.Delete(name); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Printf("\n%s\n\n", ui.Success(fmt.Sprintf("✓ Session '%s' deleted", name)))
	return nil
}
