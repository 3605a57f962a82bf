package crawl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dreamerjackson/listcrawler/robots"
)

const (
	urlQuestion     = "Enter the URL to scrape (e.g., http://quotes.toscrape.com): "
	formatQuestion  = "Enter the file type to save data (csv/json): "
	unknownQuestion = "robots.txt not found or inaccessible. Do you want to continue scraping? (yes/no): "
)

// Prompter reads one line answers from a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer. A final line without a
// newline is still an answer; io.EOF is returned only when nothing was typed.
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", err
	}

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-ch:
		line := strings.TrimSpace(a.line)
		if a.err != nil && (a.err != io.EOF || line == "") {
			return "", a.err
		}
		return line, nil
	}
}

// Continue asks whether to crawl a site whose robots.txt could not be read.
// Only "yes" or "y" continue; end of input counts as no.
func (p *Prompter) Continue(ctx context.Context, d robots.Decision) (bool, error) {
	ans, err := p.Ask(ctx, unknownQuestion)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(ans) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}
