package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dreamerjackson/listcrawler/robots"
	"github.com/dreamerjackson/listcrawler/spider"
	"go.uber.org/zap"
)

type StopReason int

const (
	StopCompleted StopReason = iota
	StopPolicyDenied
	StopFetchFailed
	StopExtractFailed
	StopCancelled
	StopPageLimit
	StopRevisit
)

func (r StopReason) String() string {
	switch r {
	case StopCompleted:
		return "completed"
	case StopPolicyDenied:
		return "denied by robots.txt"
	case StopFetchFailed:
		return "fetch failed"
	case StopExtractFailed:
		return "extraction failed"
	case StopCancelled:
		return "cancelled"
	case StopPageLimit:
		return "page limit reached"
	case StopRevisit:
		return "next page already visited"
	default:
		return fmt.Sprintf("stop(%d)", int(r))
	}
}

// Result is what a crawl leaves behind. Records gathered before an early
// stop are always kept.
type Result struct {
	RunID   string
	Records []spider.Record
	Pages   int
	Skipped int
	Reason  StopReason
	// Err is the cause of an early stop, nil for StopCompleted and
	// StopPageLimit.
	Err error
}

// Clean reports whether the crawl reached the last page or the page limit.
func (r *Result) Clean() bool {
	return r.Err == nil
}

// Crawler follows next-page links one page at a time.
type Crawler struct {
	options
}

func New(opts ...Option) (*Crawler, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.Fetcher == nil {
		return nil, errors.New("engine: fetcher is required")
	}
	if options.Extractor == nil {
		return nil, errors.New("engine: extractor is required")
	}

	return &Crawler{options: options}, nil
}

type crawlState struct {
	current  string
	records  []spider.Record
	pages    int
	skipped  int
	visited  spider.ReqHistoryRepository
	resolved map[string]bool
}

// Run crawls from startURL until there is no next page, the context is
// cancelled, or a step fails.
func (c *Crawler) Run(ctx context.Context, startURL string) *Result {
	s := &crawlState{
		current:  startURL,
		visited:  spider.NewReqHistoryRepository(),
		resolved: make(map[string]bool),
	}
	logger := c.Logger.With(zap.String("run", c.RunID))

	reason, err := c.loop(ctx, s, logger)

	if ferr := c.Storage.Flush(); ferr != nil {
		logger.Error("flush storage failed", zap.Error(ferr))
	}

	res := &Result{
		RunID:   c.RunID,
		Records: s.records,
		Pages:   s.pages,
		Skipped: s.skipped,
		Reason:  reason,
		Err:     err,
	}
	if res.Records == nil {
		res.Records = []spider.Record{}
	}

	if err != nil {
		logger.Error("crawl stopped early",
			zap.String("reason", reason.String()),
			zap.String("url", s.current),
			zap.Int("pages", s.pages),
			zap.Int("records", len(s.records)),
			zap.Error(err))
	} else {
		logger.Info("crawl finished",
			zap.String("reason", reason.String()),
			zap.Int("pages", s.pages),
			zap.Int("records", len(s.records)),
			zap.Int("skipped", s.skipped))
	}

	return res
}

func (c *Crawler) loop(ctx context.Context, s *crawlState, logger *zap.Logger) (StopReason, error) {
	for s.current != "" {
		if err := ctx.Err(); err != nil {
			return StopCancelled, err
		}

		if c.MaxPages > 0 && s.pages >= c.MaxPages {
			return StopPageLimit, nil
		}

		req := spider.NewRequest(s.current, int64(s.pages+1), c.RunID)
		if s.visited.HasVisited(req) {
			return StopRevisit, fmt.Errorf("next page %s was already crawled", s.current)
		}

		if s.pages > 0 && c.Limit != nil {
			if err := c.Limit.Wait(ctx); err != nil {
				return StopCancelled, err
			}
		}

		if reason, err := c.checkPolicy(ctx, s, logger); err != nil {
			return reason, err
		}

		page, err := c.Fetcher.Get(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return StopCancelled, err
			}
			return StopFetchFailed, err
		}
		s.visited.AddVisited(req)
		s.pages++

		result, err := c.Extractor.Extract(page)
		if err != nil {
			return StopExtractFailed, err
		}

		s.records = append(s.records, result.Records...)
		s.skipped += len(result.Skipped)
		if err := c.Storage.Save(spider.NewDataCells(req, result.Records)...); err != nil {
			logger.Error("save records failed", zap.String("url", req.URL), zap.Error(err))
		}

		logger.Info("scraped page",
			zap.String("url", req.URL),
			zap.Int64("page", req.Depth),
			zap.Int("records", len(result.Records)),
			zap.Int("skipped", len(result.Skipped)),
			zap.String("next", result.Next))

		s.current = result.Next
	}

	return StopCompleted, nil
}

// checkPolicy evaluates the concrete URL about to be fetched. An unknown
// robots.txt is settled once per host.
func (c *Crawler) checkPolicy(ctx context.Context, s *crawlState, logger *zap.Logger) (StopReason, error) {
	if c.Policy == nil {
		return StopCompleted, nil
	}

	d := c.Policy.Evaluate(ctx, s.current)
	switch d.Verdict {
	case robots.Allowed:
		return StopCompleted, nil
	case robots.Denied:
		return StopPolicyDenied, d.Error()
	}

	if err := ctx.Err(); err != nil {
		return StopCancelled, err
	}

	host := hostKey(s.current)
	allowed, ok := s.resolved[host]
	if !ok {
		var err error
		allowed, err = c.UnknownPolicy(ctx, d)
		if err != nil {
			return StopPolicyDenied, fmt.Errorf("resolve unknown robots.txt policy: %w", err)
		}
		s.resolved[host] = allowed
		logger.Warn("robots.txt policy unknown",
			zap.String("url", s.current),
			zap.String("reason", d.Reason),
			zap.NamedError("cause", d.Err),
			zap.Bool("continue", allowed))
	}
	if !allowed {
		return StopPolicyDenied, d.Error()
	}

	return StopCompleted, nil
}

func hostKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
