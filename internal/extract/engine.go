package extract

import (
	"github.com/meterkit/socialmeter/internal/numfmt"
	"github.com/meterkit/socialmeter/pkg/models"
	"github.com/rs/zerolog/log"
)

// tier is one evidence level within the extraction chain. Higher values are
// stronger trust signals.
type tier int

const (
	tierNone tier = iota
	tierText
	tierMeta
	tierJSON
)

func (t tier) hint() models.SourceHint {
	switch t {
	case tierText:
		return models.SourceText
	case tierMeta:
		return models.SourceMeta
	case tierJSON:
		return models.SourceJSON
	}
	return ""
}

// Extract runs the per-type extractor over markup and returns the metric
// schema for that content type. Unknown types yield empty metrics. The
// extraction never fails: any per-field miss leaves the field absent.
func Extract(ct models.ContentType, markup string) *models.BasicMetrics {
	page := NewPage(markup)
	return ExtractPage(ct, page)
}

// ExtractPage is Extract over an already-parsed page.
func ExtractPage(ct models.ContentType, page *Page) *models.BasicMetrics {
	m := &models.BasicMetrics{}
	strongest := tierNone
	resolved := 0

	fill := func(dst **int64, spec fieldSpec) {
		if *dst != nil {
			return
		}
		val, tr, ok := resolveField(page, spec)
		if !ok {
			return
		}
		*dst = models.Int64(val)
		resolved++
		if tr > strongest {
			strongest = tr
		}
	}

	switch ct {
	case models.TypeFBPage:
		fill(&m.Followers, followersField)
	case models.TypeFBPost:
		fill(&m.Likes, likesField)
		fill(&m.Shares, sharesField)
		fill(&m.PageFollowers, followersField)
	case models.TypeFBGroup:
		fill(&m.Members, membersField)
	case models.TypeFBGroupPost:
		fill(&m.Likes, likesField)
		fill(&m.Shares, sharesField)
		fill(&m.GroupMembers, membersField)
	case models.TypeIGProfile:
		fill(&m.Followers, followersField)
	case models.TypeIGPost:
		fill(&m.Likes, likesField)
		fill(&m.OwnerFollowers, followersField)
	default:
		return m
	}

	m.SourceHint = strongest.hint()
	m.Note = classifyOutcome(ct, m, resolved)

	log.Debug().
		Str("type", string(ct)).
		Int("fields", resolved).
		Str("source", string(m.SourceHint)).
		Str("note", string(m.Note)).
		Msg("Extraction finished")
	return m
}

// resolveField walks the strategy chain for one field: visible-text phrases,
// then meta/attribute phrases, then embedded structured-data keys. First
// success wins.
func resolveField(p *Page, spec fieldSpec) (int64, tier, bool) {
	for _, re := range spec.phrases {
		if m := re.FindStringSubmatch(p.Text); m != nil {
			if val, ok := numfmt.Parse(m[1]); ok {
				return val, tierText, true
			}
		}
	}
	if meta := p.MetaText(); meta != "" {
		for _, re := range spec.phrases {
			if m := re.FindStringSubmatch(meta); m != nil {
				if val, ok := numfmt.Parse(m[1]); ok {
					return val, tierMeta, true
				}
			}
		}
	}
	for _, re := range spec.json {
		if m := re.FindStringSubmatch(p.Raw); m != nil {
			if val, ok := numfmt.Parse(m[1]); ok {
				return val, tierJSON, true
			}
		}
	}
	return 0, tierNone, false
}

// classifyOutcome maps an extraction result to its note. Instagram withholds
// most fields from unauthenticated views, so a full miss there reads as a
// login wall rather than absence, and a post whose engagement resolved while
// the headline like count did not is reported as hidden.
func classifyOutcome(ct models.ContentType, m *models.BasicMetrics, resolved int) models.Note {
	switch ct {
	case models.TypeIGProfile, models.TypeIGPost:
		if resolved == 0 {
			return models.NoteRequiresLogin
		}
		if ct == models.TypeIGPost && m.Likes == nil {
			return models.NoteHidden
		}
	default:
		if resolved == 0 {
			return models.NoteNotFound
		}
	}
	return ""
}
