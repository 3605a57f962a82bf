// Package sqlstorage mirrors crawled records into a SQL table while the
// crawl runs.
package sqlstorage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dreamerjackson/listcrawler/spider"
	"github.com/dreamerjackson/listcrawler/sqldb"
	"go.uber.org/zap"
)

type SQLStorage struct {
	dataDocker []*spider.DataCell // rows waiting for the next batch insert
	db         sqldb.DBer
	closer     func() error
	created    bool
	options
}

func New(opts ...Option) (*SQLStorage, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	s := &SQLStorage{}
	s.options = options

	db, err := sqldb.New(
		sqldb.WithDriver(s.driver),
		sqldb.WithConnURL(s.sqlURL),
		sqldb.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", s.driver, err)
	}
	s.db = db
	s.closer = db.Close

	return s, nil
}

var columns = []sqldb.Field{
	{Title: "Quote", Type: "MEDIUMTEXT"},
	{Title: "Author", Type: "VARCHAR(255)"},
	{Title: "Tags", Type: "TEXT"},
	{Title: "URL", Type: "VARCHAR(255)"},
	{Title: "RunID", Type: "VARCHAR(32)"},
	{Title: "Time", Type: "VARCHAR(32)"},
}

func (s *SQLStorage) Save(dataCells ...*spider.DataCell) error {
	if len(dataCells) == 0 {
		return nil
	}

	if !s.created {
		if err := s.db.CreateTable(sqldb.TableData{
			TableName:   s.tableName,
			ColumnNames: columns,
			AutoKey:     true,
		}); err != nil {
			return fmt.Errorf("create table %s: %w", s.tableName, err)
		}
		s.created = true
	}

	s.dataDocker = append(s.dataDocker, dataCells...)
	if len(s.dataDocker) >= s.BatchCount {
		return s.Flush()
	}

	return nil
}

func (s *SQLStorage) Flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}

	defer func() {
		s.dataDocker = nil
	}()

	args := make([]interface{}, 0, len(s.dataDocker)*len(columns))
	for _, cell := range s.dataDocker {
		tags := cell.Record.Tags
		if tags == nil {
			tags = []string{}
		}
		j, err := json.Marshal(tags)
		if err != nil {
			return err
		}
		args = append(args,
			cell.Record.Text,
			cell.Record.Author,
			string(j),
			cell.URL,
			cell.RunID,
			cell.Time.UTC().Format(time.RFC3339),
		)
	}

	if err := s.db.Insert(sqldb.TableData{
		TableName:   s.tableName,
		ColumnNames: columns,
		Args:        args,
		DataCount:   len(s.dataDocker),
	}); err != nil {
		s.logger.Error("insert data failed", zap.Int("rows", len(s.dataDocker)), zap.Error(err))
		return err
	}

	s.logger.Debug("records mirrored", zap.String("table", s.tableName), zap.Int("rows", len(s.dataDocker)))

	return nil
}

func (s *SQLStorage) Close() error {
	err := s.Flush()
	if s.closer != nil {
		if cerr := s.closer(); err == nil {
			err = cerr
		}
	}
	return err
}
