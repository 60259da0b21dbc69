// internal/cli/inspect.go
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meterkit/socialmeter/internal/output"
	"github.com/meterkit/socialmeter/internal/ui"
	urlutil "github.com/meterkit/socialmeter/internal/utils/url"
	"github.com/meterkit/socialmeter/pkg/models"
)

var inspectOutput string

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <url>",
	Short: "Inspect one social URL and report its metrics",
	Long: `Classifies the URL (Facebook page, post, group, group post, Instagram
profile or post), fetches it through the direct tier with a browser-render
fallback, and extracts the metric fields for that content type. For posts,
the owning page or group is resolved and its aggregate count backfilled.`,
	Example: `  # Inspect a Facebook page
  socialmeter inspect https://www.facebook.com/nasa

  # Inspect a share shortlink, rendering in a browser
  socialmeter inspect https://www.facebook.com/share/p/abc123/ --force-render

  # Use a stored login session and save the full result
  socialmeter inspect https://www.instagram.com/p/xyz/ --session=ig --output=result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "", "File path to save the result (supports .json, .csv)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	url := args[0]
	if err := urlutil.ValidateURL(url); err != nil {
		return err
	}

	appCtx := GetAppFromCmd(cmd)
	log.Info().Str("url", url).Msg("Inspecting URL")

	result := appCtx.Inspector.Inspect(context.Background(), url)

	if inspectOutput != "" {
		if err := saveResult(result, inspectOutput); err != nil {
			return err
		}
		fmt.Printf("%s\n", ui.Success("✓ Saved to "+inspectOutput))
		return nil
	}

	printResult(result)
	return nil
}

func saveResult(result *models.InspectionResult, path string) error {
	if strings.HasSuffix(path, ".csv") {
		w, err := output.NewCSVWriter(path)
		if err != nil {
			return err
		}
		if err := w.Write(result); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	}
	return output.SaveJSON(result, path)
}

// printResult writes a human-readable summary of one inspection to stdout.
func printResult(result *models.InspectionResult) {
	fmt.Printf("\n%s\n", ui.Bold(result.URL))
	fmt.Printf("  %-18s %s\n", "type:", string(result.ContentType))

	if result.Status != models.StatusOK {
		fmt.Printf("  %-18s %s\n\n", "status:", ui.Error(result.Status+" ("+result.Error+")"))
		return
	}

	m := result.Metrics
	printMetric("followers", m.Followers)
	printMetric("members", m.Members)
	printMetric("likes", m.Likes)
	printMetric("shares", m.Shares)
	printMetric("page_followers", m.PageFollowers)
	printMetric("group_members", m.GroupMembers)
	printMetric("owner_followers", m.OwnerFollowers)
	if m.OwnerURL != "" {
		fmt.Printf("  %-18s %s\n", "owner:", m.OwnerURL)
	}
	if m.OwnerName != "" {
		fmt.Printf("  %-18s %s\n", "owner_name:", m.OwnerName)
	}
	if m.SourceHint != "" {
		fmt.Printf("  %-18s %s\n", "source:", string(m.SourceHint))
	}
	if m.Note != "" {
		fmt.Printf("  %-18s %s\n", "note:", ui.Info(string(m.Note)))
	}

	fmt.Printf("  %-18s %s, %dms", "fetched:", string(result.Diagnostics.Method), result.Diagnostics.DurationMS)
	if result.Diagnostics.ResolvedPermalink != "" {
		fmt.Printf("\n  %-18s %s", "permalink:", result.Diagnostics.ResolvedPermalink)
	}
	fmt.Printf("\n\n")
}

func printMetric(name string, v *int64) {
	if v == nil {
		return
	}
	fmt.Printf("  %-18s %s\n", name+":", ui.Bold(strconv.FormatInt(*v, 10)))
}
