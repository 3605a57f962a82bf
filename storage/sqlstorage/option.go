package sqlstorage

import (
	"go.uber.org/zap"
)

type options struct {
	logger     *zap.Logger
	sqlURL     string
	driver     string
	tableName  string
	BatchCount int // rows per INSERT
}

var defaultOptions = options{
	logger:     zap.NewNop(),
	tableName:  "quotes",
	BatchCount: 50,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithSQLURL(sqlURL string) Option {
	return func(opts *options) {
		opts.sqlURL = sqlURL
	}
}

func WithDriver(driver string) Option {
	return func(opts *options) {
		opts.driver = driver
	}
}

func WithTableName(name string) Option {
	return func(opts *options) {
		if name != "" {
			opts.tableName = name
		}
	}
}

func WithBatchCount(batchCount int) Option {
	return func(opts *options) {
		if batchCount > 0 {
			opts.BatchCount = batchCount
		}
	}
}
