// internal/cli/snapshot.go
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meterkit/socialmeter/internal/fetch"
	"github.com/meterkit/socialmeter/internal/output"
	"github.com/meterkit/socialmeter/internal/ui"
	urlutil "github.com/meterkit/socialmeter/internal/utils/url"
)

var (
	snapshotOutput string
	snapshotRaw    bool
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot <url>",
	Short: "Fetch a URL and save its markup for inspection",
	Long: `Runs the same tiered fetch as inspect but saves the acquired markup
instead of extracting metrics. Useful for checking what a page actually
serves when a metric comes back absent.`,
	Example: `  # Save a cleaned markdown rendering
  socialmeter snapshot https://www.facebook.com/nasa --output=nasa.md

  # Keep the raw HTML, rendered in a browser
  socialmeter snapshot https://www.instagram.com/p/xyz/ --raw --force-render --output=post.html`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "File path for the snapshot (required)")
	snapshotCmd.Flags().BoolVar(&snapshotRaw, "raw", false, "Save raw HTML instead of markdown")
	snapshotCmd.MarkFlagRequired("output")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	url := args[0]
	if err := urlutil.ValidateURL(url); err != nil {
		return err
	}

	appCtx := GetAppFromCmd(cmd)

	// Snapshots go through the same mobile-host rewrite as inspections so
	// the captured markup matches what the extractor would see.
	target := url
	if rewritten, ok := fetch.RewriteMobileHost(url); ok {
		target = rewritten
		log.Debug().Str("url", target).Msg("Rewrote to mobile host")
	}

	res := appCtx.Fetcher.Fetch(context.Background(), target)
	if !res.OK {
		return fmt.Errorf("fetch failed for %s", target)
	}
	log.Info().Str("url", target).Str("method", string(res.Method)).Int("bytes", len(res.Markup)).
		Msg("Markup acquired")

	if snapshotRaw || strings.HasSuffix(snapshotOutput, ".html") {
		if err := os.WriteFile(snapshotOutput, []byte(res.Markup), 0644); err != nil {
			return err
		}
	} else {
		if err := output.SaveMarkdown(target, res.Markup, snapshotOutput); err != nil {
			return err
		}
	}

	fmt.Printf("%s\n", ui.Success("✓ Snapshot saved to "+snapshotOutput))
	return nil
}
