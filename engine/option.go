package engine

import (
	"context"
	"time"

	"github.com/dreamerjackson/listcrawler/limiter"
	"github.com/dreamerjackson/listcrawler/robots"
	"github.com/dreamerjackson/listcrawler/spider"
	"go.uber.org/zap"
)

// Policy answers whether a URL may be fetched. *robots.Evaluator is the
// production implementation.
type Policy interface {
	Evaluate(ctx context.Context, target string) robots.Decision
}

type Option func(opts *options)

type options struct {
	Fetcher       spider.Fetcher
	Extractor     spider.Extractor
	Policy        Policy
	UnknownPolicy robots.UnknownPolicy
	Limit         limiter.RateLimiter
	Storage       spider.DataRepository
	MaxPages      int
	RunID         string
	Logger        *zap.Logger
}

var defaultOptions = options{
	UnknownPolicy: robots.DenyUnknown,
	Limit:         limiter.NewRandomDelay(1*time.Second, 3*time.Second),
	Storage:       spider.EmptyDataRepository{},
	Logger:        zap.NewNop(),
}

func WithFetcher(fetcher spider.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

func WithExtractor(extractor spider.Extractor) Option {
	return func(opts *options) {
		opts.Extractor = extractor
	}
}

// WithPolicy enables the robots.txt check before every page. Without it
// every URL is allowed.
func WithPolicy(policy Policy) Option {
	return func(opts *options) {
		opts.Policy = policy
	}
}

func WithUnknownPolicy(p robots.UnknownPolicy) Option {
	return func(opts *options) {
		if p != nil {
			opts.UnknownPolicy = p
		}
	}
}

// WithLimiter sets the pause taken before every page after the first.
func WithLimiter(l limiter.RateLimiter) Option {
	return func(opts *options) {
		opts.Limit = l
	}
}

func WithStorage(s spider.DataRepository) Option {
	return func(opts *options) {
		if s != nil {
			opts.Storage = s
		}
	}
}

// WithMaxPages stops the crawl after n pages, 0 means no limit.
func WithMaxPages(n int) Option {
	return func(opts *options) {
		opts.MaxPages = n
	}
}

func WithRunID(id string) Option {
	return func(opts *options) {
		opts.RunID = id
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}
