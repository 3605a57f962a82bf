// Package quotes extracts listing entries from quote-listing pages: one
// container per entry holding the text, the author and tag links, plus a
// "next" pagination link.
package quotes

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/listcrawler/spider"
	"go.uber.org/zap"
)

const (
	FieldText   = "text"
	FieldAuthor = "author"
)

type Selectors struct {
	Item   string `json:"item"`
	Text   string `json:"text"`
	Author string `json:"author"`
	Tag    string `json:"tag"`
	Next   string `json:"next"`
}

var DefaultSelectors = Selectors{
	Item:   "div.quote",
	Text:   "span.text",
	Author: "small.author",
	Tag:    "a.tag",
	Next:   "li.next a",
}

// merge fills empty selectors from DefaultSelectors.
func (s Selectors) merge() Selectors {
	if s.Item == "" {
		s.Item = DefaultSelectors.Item
	}
	if s.Text == "" {
		s.Text = DefaultSelectors.Text
	}
	if s.Author == "" {
		s.Author = DefaultSelectors.Author
	}
	if s.Tag == "" {
		s.Tag = DefaultSelectors.Tag
	}
	if s.Next == "" {
		s.Next = DefaultSelectors.Next
	}
	return s
}

type Extractor struct {
	selectors Selectors
	logger    *zap.Logger
}

type Option func(e *Extractor)

func WithSelectors(s Selectors) Option {
	return func(e *Extractor) {
		e.selectors = s.merge()
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		selectors: DefaultSelectors,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) Selectors() Selectors {
	return e.selectors
}

func (e *Extractor) Extract(page *spider.Page) (spider.ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return spider.ParseResult{}, fmt.Errorf("parse html of %s: %w", page.URL, err)
	}

	result := spider.ParseResult{}
	doc.Find(e.selectors.Item).Each(func(i int, s *goquery.Selection) {
		record, itemErr := e.extractItem(s)
		if itemErr != nil {
			itemErr.URL = page.URL
			itemErr.Index = i
			e.logger.Warn("skip listing entry",
				zap.String("url", page.URL),
				zap.Int("index", i),
				zap.String("field", itemErr.Field))
			result.Skipped = append(result.Skipped, itemErr)
			return
		}
		result.Records = append(result.Records, record)
	})

	next, err := e.nextPage(doc, page)
	if err != nil {
		e.logger.Warn("invalid next page link", zap.String("url", page.URL), zap.Error(err))
	}
	result.Next = next

	return result, nil
}

func (e *Extractor) extractItem(s *goquery.Selection) (spider.Record, *spider.ItemError) {
	text, ok := firstText(s, e.selectors.Text)
	if !ok {
		return spider.Record{}, &spider.ItemError{Field: FieldText}
	}

	author, ok := firstText(s, e.selectors.Author)
	if !ok {
		return spider.Record{}, &spider.ItemError{Field: FieldAuthor}
	}

	tags := []string{}
	s.Find(e.selectors.Tag).Each(func(_ int, tag *goquery.Selection) {
		if t := strings.TrimSpace(tag.Text()); t != "" {
			tags = append(tags, t)
		}
	})

	return spider.Record{Text: text, Author: author, Tags: tags}, nil
}

func firstText(s *goquery.Selection, selector string) (string, bool) {
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(found.Text())

	return text, text != ""
}

// nextPage resolves the next link against the URL the page was served from.
func (e *Extractor) nextPage(doc *goquery.Document, page *spider.Page) (string, error) {
	href, ok := doc.Find(e.selectors.Next).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", nil
	}

	base := page.FinalURL
	if base == "" {
		base = page.URL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	next, err := baseURL.Parse(href)
	if err != nil {
		return "", err
	}

	return next.String(), nil
}
