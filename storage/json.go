package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dreamerjackson/listcrawler/spider"
)

// JSONWriter writes an array of {"Quote", "Author", "Tags"} objects; unlike
// the CSV output, Tags stays an array.
type JSONWriter struct {
	Indent string
}

func (j JSONWriter) Write(w io.Writer, records []spider.Record) error {
	out := make([]spider.Record, len(records))
	for i, r := range records {
		if r.Tags == nil {
			r.Tags = []string{}
		}
		out[i] = r
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if j.Indent != "" {
		enc.SetIndent("", j.Indent)
	}

	return enc.Encode(out)
}

// ReadJSON reads back what JSONWriter wrote.
func ReadJSON(r io.Reader) ([]spider.Record, error) {
	var records []spider.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if records == nil {
		records = []spider.Record{}
	}

	return records, nil
}
