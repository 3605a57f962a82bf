// Package storage writes the records of a crawl to a CSV or JSON file.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dreamerjackson/listcrawler/spider"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat accepts "csv" or "json", ignoring case and surrounding space.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Column names shared by both formats.
const (
	ColumnQuote  = "Quote"
	ColumnAuthor = "Author"
	ColumnTags   = "Tags"
)

// Writer serialises a full record list.
type Writer interface {
	Write(w io.Writer, records []spider.Record) error
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatCSV:
		return CSVWriter{}, nil
	case FormatJSON:
		return JSONWriter{Indent: "    "}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}

func DefaultFileName(format Format) string {
	return "quotes." + string(format)
}

// WriteFile writes records to path in one piece: the data goes to a
// temporary file in the same directory which is renamed over path only
// after it was written and synced. Nothing is created when the format is
// not supported.
func WriteFile(path string, format Format, records []spider.Record) (err error) {
	w, err := NewWriter(format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = w.Write(tmp, records); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move into place: %w", err)
	}

	return nil
}
