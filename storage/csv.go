package storage

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/dreamerjackson/listcrawler/spider"
)

// TagSeparator joins tags into the single CSV column.
const TagSeparator = ", "

type CSVWriter struct{}

func (CSVWriter) Write(w io.Writer, records []spider.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnQuote, ColumnAuthor, ColumnTags}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Text, r.Author, strings.Join(r.Tags, TagSeparator)}); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
