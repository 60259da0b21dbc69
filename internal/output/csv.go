// Package output serializes inspection results for files and terminals: one
// flat CSV row per inspection, a full JSON export, and a markdown snapshot of
// fetched markup for heuristic debugging.
package output

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/meterkit/socialmeter/pkg/models"
)

var csvHeader = []string{
	"url", "status", "content_type",
	"followers", "members", "likes", "shares",
	"page_followers", "group_members", "owner_followers",
	"owner_url", "owner_name", "source_hint", "note",
	"method", "duration_ms", "resolved_permalink", "error",
}

// CSVWriter streams inspection results into a CSV file, one row each.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates the file and writes the header row.
func NewCSVWriter(path string) (*CSVWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		file.Close()
		return nil, err
	}
	return &CSVWriter{file: file, writer: writer}, nil
}

// Write appends one result row.
func (w *CSVWriter) Write(res *models.InspectionResult) error {
	return w.writer.Write(Row(res))
}

// Close flushes and closes the underlying file.
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Row flattens one InspectionResult into the CSV column order. Absent metric
// fields become empty cells.
func Row(res *models.InspectionResult) []string {
	m := res.Metrics
	if m == nil {
		m = &models.BasicMetrics{}
	}
	return []string{
		res.URL,
		res.Status,
		string(res.ContentType),
		cell(m.Followers),
		cell(m.Members),
		cell(m.Likes),
		cell(m.Shares),
		cell(m.PageFollowers),
		cell(m.GroupMembers),
		cell(m.OwnerFollowers),
		m.OwnerURL,
		m.OwnerName,
		string(m.SourceHint),
		string(m.Note),
		string(res.Diagnostics.Method),
		strconv.FormatInt(res.Diagnostics.DurationMS, 10),
		res.Diagnostics.ResolvedPermalink,
		res.Error,
	}
}

func cell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
