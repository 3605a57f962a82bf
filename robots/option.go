package robots

import (
	"github.com/dreamerjackson/listcrawler/spider"
	"go.uber.org/zap"
)

type options struct {
	fetcher spider.Fetcher
	agent   string
	logger  *zap.Logger
}

var defaultOptions = options{
	agent:  "*",
	logger: zap.NewNop(),
}

type Option func(opts *options)

func WithFetcher(f spider.Fetcher) Option {
	return func(opts *options) {
		opts.fetcher = f
	}
}

// WithAgent sets the identity rules are evaluated for.
func WithAgent(agent string) Option {
	return func(opts *options) {
		if agent != "" {
			opts.agent = agent
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}
