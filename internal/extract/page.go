// Package extract pulls the per-type metric schema out of fetched markup.
//
// Every field is resolved through a prioritized chain of heuristics spanning
// three evidence tiers: visible text phrases, meta/attribute values, and
// embedded structured-data keys. The first success per field wins; a failed
// heuristic is a miss for that field only and never aborts the extraction.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is parsed markup shared by all extraction heuristics. Construction
// tolerates malformed markup: a page that cannot be parsed still exposes its
// raw form for the structured-data tier.
type Page struct {
	Raw  string
	Doc  *goquery.Document // nil when the markup could not be parsed
	Text string            // visible text content

	metaText string
}

// NewPage parses markup into a Page. It never fails; parse errors simply
// leave the document-backed tiers empty.
func NewPage(markup string) *Page {
	p := &Page{Raw: markup}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return p
	}
	p.Doc = doc

	if body := doc.Find("body"); body.Length() > 0 {
		p.Text = body.Text()
	} else {
		p.Text = doc.Text()
	}

	// Meta descriptions and accessible labels carry count phrases that the
	// visible text often hides behind scripted rendering.
	var sb strings.Builder
	doc.Find(`meta[name="description"], meta[property="og:description"], meta[property="og:title"]`).
		Each(func(_ int, sel *goquery.Selection) {
			if content, ok := sel.Attr("content"); ok {
				sb.WriteString(content)
				sb.WriteByte('\n')
			}
		})
	doc.Find("[aria-label]").Each(func(_ int, sel *goquery.Selection) {
		if label, ok := sel.Attr("aria-label"); ok {
			sb.WriteString(label)
			sb.WriteByte('\n')
		}
	})
	p.metaText = sb.String()
	return p
}

// MetaText returns the concatenated meta descriptions and accessible labels.
func (p *Page) MetaText() string { return p.metaText }
