package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meterkit/socialmeter/pkg/models"
)

func sampleResult() *models.InspectionResult {
	return &models.InspectionResult{
		URL:         "https://www.facebook.com/somepage",
		Status:      models.StatusOK,
		ContentType: models.TypeFBPage,
		Metrics: &models.BasicMetrics{
			Followers:  models.Int64(12345),
			SourceHint: models.SourceText,
		},
		Diagnostics: models.Diagnostics{
			DurationMS: 321,
			Method:     models.MethodDirect,
		},
	}
}

func TestRowFlattensResult(t *testing.T) {
	row := Row(sampleResult())
	if len(row) != len(csvHeader) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(csvHeader))
	}
	want := map[string]string{
		"url":          "https://www.facebook.com/somepage",
		"status":       "ok",
		"content_type": "fb_page",
		"followers":    "12345",
		"likes":        "",
		"source_hint":  "text",
		"method":       "direct",
		"duration_ms":  "321",
	}
	for col, val := range want {
		idx := -1
		for i, h := range csvHeader {
			if h == col {
				idx = i
				break
			}
		}
		if idx < 0 {
			t.Fatalf("no column %q", col)
		}
		if row[idx] != val {
			t.Errorf("column %s = %q, want %q", col, row[idx], val)
		}
	}
}

func TestRowHandlesErrorResult(t *testing.T) {
	res := &models.InspectionResult{
		URL:    "https://www.facebook.com/gone",
		Status: models.StatusError,
		Error:  models.ErrFetchFailed,
	}
	row := Row(res)
	if row[len(row)-1] != models.ErrFetchFailed {
		t.Errorf("error cell = %q, want %q", row[len(row)-1], models.ErrFetchFailed)
	}
}

func TestCSVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(sampleResult()); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header plus one", len(rows))
	}
	if rows[0][0] != "url" {
		t.Errorf("header starts with %q", rows[0][0])
	}
}

func TestCleanHTMLStripsScriptsAndAttributes(t *testing.T) {
	in := `<html><body>` +
		`<script>var x = 1;</script>` +
		`<div class="chrome" data-testid="x"><a href="/somepage" class="link">Some Page</a></div>` +
		`</body></html>`
	out, err := CleanHTML(in)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "script") || strings.Contains(out, "var x") {
		t.Errorf("script survived cleaning: %s", out)
	}
	if strings.Contains(out, "class=") || strings.Contains(out, "data-testid") {
		t.Errorf("attributes survived cleaning: %s", out)
	}
	if !strings.Contains(out, `href="/somepage"`) {
		t.Errorf("anchor href lost: %s", out)
	}
}

func TestSaveMarkdownResolvesLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.md")
	markup := `<html><body><p>hello</p><a href="/somepage">Some Page</a></body></html>`
	if err := SaveMarkdown("https://m.facebook.com/somepage/posts/1", markup, path); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "https://m.facebook.com/somepage") {
		t.Errorf("relative link not resolved: %s", content)
	}
}
