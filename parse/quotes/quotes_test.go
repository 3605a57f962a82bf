package quotes

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dreamerjackson/listcrawler/spider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteHTML(text, author string, tags ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="quote">`)
	if text != "" {
		fmt.Fprintf(&b, `<span class="text">%s</span>`, text)
	}
	if author != "" {
		fmt.Fprintf(&b, `<span>by <small class="author">%s</small></span>`, author)
	}
	b.WriteString(`<div class="tags">Tags:`)
	for _, tag := range tags {
		fmt.Fprintf(&b, `<a class="tag" href="/tag/%s/page/1/">%s</a>`, tag, tag)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func listingPage(next string, quotes ...string) []byte {
	var b strings.Builder
	b.WriteString(`<html><body><div class="col-md-8">`)
	for _, q := range quotes {
		b.WriteString(q)
	}
	b.WriteString(`<nav><ul class="pager">`)
	if next != "" {
		fmt.Fprintf(&b, `<li class="next"><a href="%s">Next <span aria-hidden="true">&rarr;</span></a></li>`, next)
	}
	b.WriteString(`</ul></nav></div></body></html>`)
	return []byte(b.String())
}

func TestExtractThreeEntriesAndNext(t *testing.T) {
	page := &spider.Page{
		URL:      "http://quotes.example/page/1/",
		FinalURL: "http://quotes.example/page/1/",
		Body: listingPage("/page/2/",
			quoteHTML("“The world as we have created it.”", "Albert Einstein", "change", "deep-thoughts", "thinking"),
			quoteHTML("“It is our choices.”", "J.K. Rowling", "abilities", "choices"),
			quoteHTML("“There are only two ways.”", "Albert Einstein"),
		),
	}

	result, err := New().Extract(page)
	require.NoError(t, err)

	assert.Equal(t, []spider.Record{
		{Text: "“The world as we have created it.”", Author: "Albert Einstein", Tags: []string{"change", "deep-thoughts", "thinking"}},
		{Text: "“It is our choices.”", Author: "J.K. Rowling", Tags: []string{"abilities", "choices"}},
		{Text: "“There are only two ways.”", Author: "Albert Einstein", Tags: []string{}},
	}, result.Records)
	assert.Equal(t, "http://quotes.example/page/2/", result.Next)
	assert.Empty(t, result.Skipped)
}

func TestExtractSkipsMalformedEntry(t *testing.T) {
	page := &spider.Page{
		URL: "http://quotes.example/page/4/",
		Body: listingPage("",
			quoteHTML("first", "A"),
			quoteHTML("second", "B", "x"),
			quoteHTML("third", ""),
		),
	}

	result, err := New().Extract(page)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "first", result.Records[0].Text)
	assert.Equal(t, "second", result.Records[1].Text)
	assert.Empty(t, result.Next)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 2, result.Skipped[0].Index)
	assert.Equal(t, FieldAuthor, result.Skipped[0].Field)
	assert.Equal(t, page.URL, result.Skipped[0].URL)
}

func TestExtractMissingOrBlankText(t *testing.T) {
	page := &spider.Page{
		URL: "http://quotes.example/",
		Body: listingPage("",
			quoteHTML("", "A"),
			`<div class="quote"><span class="text">   </span><small class="author">B</small></div>`,
			quoteHTML("kept", "C"),
		),
	}

	result, err := New().Extract(page)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "kept", result.Records[0].Text)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, FieldText, result.Skipped[0].Field)
	assert.Equal(t, FieldText, result.Skipped[1].Field)
}

func TestExtractNextResolution(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		finalURL string
		href     string
		want     string
	}{
		{name: "root relative", url: "http://quotes.example/page/1/", href: "/page/2/", want: "http://quotes.example/page/2/"},
		{name: "path relative", url: "http://quotes.example/list/page1.html", href: "page2.html", want: "http://quotes.example/list/page2.html"},
		{name: "absolute", url: "http://quotes.example/", href: "https://cdn.example/page/2/", want: "https://cdn.example/page/2/"},
		{name: "against final url", url: "http://quotes.example/", finalURL: "http://quotes.example/new/", href: "page/2/", want: "http://quotes.example/new/page/2/"},
		{name: "no link", url: "http://quotes.example/", href: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &spider.Page{URL: tt.url, FinalURL: tt.finalURL, Body: listingPage(tt.href, quoteHTML("q", "a"))}
			result, err := New().Extract(page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Next)
		})
	}
}

func TestExtractNextWithoutHref(t *testing.T) {
	page := &spider.Page{
		URL:  "http://quotes.example/",
		Body: []byte(`<ul><li class="next"><a>Next</a></li></ul>`),
	}
	result, err := New().Extract(page)
	require.NoError(t, err)
	assert.Empty(t, result.Next)
	assert.Empty(t, result.Records)
}

func TestExtractCustomSelectors(t *testing.T) {
	body := `<article class="entry"><p class="body">Hello</p><em class="by">Ann</em><b class="label">one</b><b class="label">two</b></article>
<a rel="next" href="?page=2">more</a>`
	e := New(WithSelectors(Selectors{
		Item:   "article.entry",
		Text:   "p.body",
		Author: "em.by",
		Tag:    "b.label",
		Next:   `a[rel="next"]`,
	}))

	result, err := e.Extract(&spider.Page{URL: "http://blog.example/list?page=1", Body: []byte(body)})
	require.NoError(t, err)
	assert.Equal(t, []spider.Record{{Text: "Hello", Author: "Ann", Tags: []string{"one", "two"}}}, result.Records)
	assert.Equal(t, "http://blog.example/list?page=2", result.Next)
}

func TestSelectorsMerge(t *testing.T) {
	e := New(WithSelectors(Selectors{Item: "li.item"}))
	s := e.Selectors()
	assert.Equal(t, "li.item", s.Item)
	assert.Equal(t, DefaultSelectors.Text, s.Text)
	assert.Equal(t, DefaultSelectors.Next, s.Next)
}
