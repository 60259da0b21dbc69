// internal/cli/batch.go
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/meterkit/socialmeter/internal/output"
	"github.com/meterkit/socialmeter/internal/ui"
	urlutil "github.com/meterkit/socialmeter/internal/utils/url"
	"github.com/meterkit/socialmeter/pkg/models"
)

var (
	batchOutput      string
	batchConcurrency int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <urls-file>",
	Short: "Inspect a list of URLs and write one CSV row each",
	Long: `Reads URLs from a file (one per line, # comments allowed), inspects them
concurrently and writes one flat record per URL. Inspections share no state
beyond the rate limiter, so failures stay isolated to their row.`,
	Example: `  # Inspect a list into a CSV
  socialmeter batch urls.txt --output=results.csv

  # JSON array output with four workers
  socialmeter batch urls.txt --output=results.json --concurrency=4`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "results.csv", "File path for results (.csv or .json)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Number of concurrent inspections (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	urls, err := readURLFile(args[0])
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in %s", args[0])
	}

	appCtx := GetAppFromCmd(cmd)
	workers := appCtx.Config.BatchConcurrency
	if batchConcurrency > 0 {
		workers = batchConcurrency
	}
	if workers > len(urls) {
		workers = len(urls)
	}

	log.Info().Int("urls", len(urls)).Int("workers", workers).Msg("Starting batch inspection")

	bar := progressbar.NewOptions(len(urls),
		progressbar.OptionSetDescription("inspecting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	// Results keep the input order regardless of which worker finished first.
	results := make([]*models.InspectionResult, len(urls))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = appCtx.Inspector.Inspect(context.Background(), urls[idx])
				bar.Add(1)
			}
		}()
	}
	for idx := range urls {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	bar.Finish()

	if err := saveBatch(results, batchOutput); err != nil {
		return err
	}

	okCount := 0
	for _, res := range results {
		if res.Status == models.StatusOK {
			okCount++
		}
	}
	fmt.Printf("%s\n", ui.Success(fmt.Sprintf("✓ %d/%d inspected, results in %s", okCount, len(results), batchOutput)))
	return nil
}

func saveBatch(results []*models.InspectionResult, path string) error {
	if strings.HasSuffix(path, ".json") {
		return output.SaveJSON(results, path)
	}
	w, err := output.NewCSVWriter(path)
	if err != nil {
		return err
	}
	for _, res := range results {
		if err := w.Write(res); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

// readURLFile loads one URL per line, skipping blanks and # comments.
// Invalid lines abort rather than silently dropping rows.
func readURLFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := urlutil.ValidateURL(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
