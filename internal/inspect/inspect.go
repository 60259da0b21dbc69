// Package inspect runs the full inspection pipeline for one URL: classify,
// rewrite, fetch, extract, then owner resolution for post-type content.
package inspect

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meterkit/socialmeter/internal/classify"
	"github.com/meterkit/socialmeter/internal/extract"
	"github.com/meterkit/socialmeter/internal/fetch"
	"github.com/meterkit/socialmeter/internal/reqctx"
	"github.com/meterkit/socialmeter/internal/resolve"
	"github.com/meterkit/socialmeter/pkg/models"
)

// Inspector ties the pipeline stages together. Inspectors hold no per-URL
// state; one Inspector may serve concurrent inspections as long as its
// fetcher does.
type Inspector struct {
	fetcher  fetch.Fetcher
	resolver *resolve.Resolver
}

func New(fetcher fetch.Fetcher) *Inspector {
	return &Inspector{
		fetcher:  fetcher,
		resolver: resolve.New(fetcher),
	}
}

// Inspect classifies and fetches one URL and returns the populated result
// envelope. The only terminal failure is a primary fetch where neither tier
// produced markup; every other miss degrades to absent fields or a note.
func (i *Inspector) Inspect(ctx context.Context, rawURL string) *models.InspectionResult {
	start := time.Now()
	ctx = reqctx.WithInspection(ctx)
	inspectionID := reqctx.Get(ctx).InspectionID
	result := &models.InspectionResult{
		URL:         rawURL,
		Status:      models.StatusOK,
		ContentType: classify.Classify(rawURL),
	}

	target := rawURL
	if result.ContentType.IsFacebook() {
		if rewritten, ok := fetch.RewriteMobileHost(rawURL); ok {
			target = rewritten
			result.Diagnostics.URLWasRewritten = true
			result.Diagnostics.RewrittenURL = rewritten
		}
	}

	res := i.fetcher.Fetch(ctx, target)
	result.Diagnostics.Method = res.Method
	if !res.OK {
		result.Status = models.StatusError
		result.Error = models.ErrFetchFailed
		result.Diagnostics.DurationMS = time.Since(start).Milliseconds()
		log.Debug().Str("inspection", inspectionID).Str("url", rawURL).
			Msg("Inspection failed, no markup acquired")
		return result
	}

	page := extract.NewPage(res.Markup)
	metrics := extract.ExtractPage(result.ContentType, page)

	switch result.ContentType {
	case models.TypeFBPost, models.TypeFBGroupPost:
		result.Diagnostics.ResolvedPermalink = i.resolver.Resolve(ctx, target, page, result.ContentType, metrics)
	case models.TypeIGPost:
		i.resolver.BackfillInstagramOwner(ctx, page, metrics)
	}

	result.Metrics = metrics
	result.Diagnostics.DurationMS = time.Since(start).Milliseconds()
	log.Debug().
		Str("inspection", inspectionID).
		Str("url", rawURL).
		Str("type", string(result.ContentType)).
		Str("method", string(res.Method)).
		Int64("duration_ms", result.Diagnostics.DurationMS).
		Msg("Inspection finished")
	return result
}
