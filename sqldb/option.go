package sqldb

import (
	"go.uber.org/zap"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type options struct {
	logger *zap.Logger
	driver string
	sqlURL string
}

var defaultOptions = options{
	logger: zap.NewNop(),
	driver: DriverMySQL,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithConnURL(sqlURL string) Option {
	return func(opts *options) {
		opts.sqlURL = sqlURL
	}
}

// WithDriver selects "mysql" (default) or "sqlite".
func WithDriver(driver string) Option {
	return func(opts *options) {
		if driver != "" {
			opts.driver = driver
		}
	}
}
