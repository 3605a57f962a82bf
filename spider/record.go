package spider

import "fmt"

// Record is one listing entry extracted from a page.
type Record struct {
	Text   string   `json:"Quote"`
	Author string   `json:"Author"`
	Tags   []string `json:"Tags"`
}

// ItemError reports a listing entry that was skipped because a required
// field is missing.
type ItemError struct {
	URL   string
	Index int
	Field string
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("listing entry %d on %s: missing field %q", e.Index, e.URL, e.Field)
}

type ParseResult struct {
	Records []Record
	// Next is the absolute URL of the next listing page, empty on the last page.
	Next    string
	Skipped []*ItemError
}

// Extractor turns a fetched page into records and the next-page link.
type Extractor interface {
	Extract(page *Page) (ParseResult, error)
}
