package output

import (
	"encoding/json"
	"io"
	"os"
)

// SaveJSON writes an indented JSON export of v to path.
func SaveJSON(v any, path string) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

// PrintJSON writes an indented JSON rendering of v to w.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
