package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type DBer interface {
	CreateTable(t TableData) error
	Insert(t TableData) error
}

type Sqldb struct {
	options
	db *sql.DB
}

type Field struct {
	Title string
	Type  string
}

type TableData struct {
	TableName   string
	ColumnNames []Field       // column definitions
	Args        []interface{} // row values, flattened
	DataCount   int           // number of rows in Args
	AutoKey     bool
}

func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	d := &Sqldb{}
	d.options = options

	if err := d.OpenDB(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Sqldb) OpenDB() error {
	switch d.driver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported sql driver %q", d.driver)
	}

	db, err := sql.Open(d.driver, d.sqlURL)
	if err != nil {
		return err
	}

	if d.driver == DriverSQLite {
		// one connection keeps ":memory:" databases alive and serialises writes
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(16)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.db = db

	return nil
}

func (d *Sqldb) DB() *sql.DB {
	return d.db
}

func (d *Sqldb) Close() error {
	return d.db.Close()
}

func (d *Sqldb) CreateTable(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return errors.New("column can not be empty")
	}

	sql := `CREATE TABLE IF NOT EXISTS ` + t.TableName + " ("

	if t.AutoKey {
		if d.driver == DriverSQLite {
			sql += `id INTEGER PRIMARY KEY AUTOINCREMENT,`
		} else {
			sql += `id INT(12) NOT NULL PRIMARY KEY AUTO_INCREMENT,`
		}
	}

	for _, t := range t.ColumnNames {
		sql += t.Title + ` ` + t.Type + `,`
	}

	sql = sql[:len(sql)-1] + `)`
	if d.driver == DriverMySQL {
		sql += ` ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	}
	sql += `;`

	d.logger.Debug("create table", zap.String("sql", sql))

	_, err := d.db.Exec(sql)

	return err
}

func (d *Sqldb) DropTable(t TableData) error {
	if t.TableName == "" {
		return errors.New("table name can not be empty")
	}

	sql := `DROP TABLE IF EXISTS ` + t.TableName

	d.logger.Debug("drop table", zap.String("sql", sql))

	_, err := d.db.Exec(sql)

	return err
}

func (d *Sqldb) Insert(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return errors.New("empty column")
	}
	if t.DataCount <= 0 {
		return errors.New("no rows to insert")
	}
	if len(t.Args) != len(t.ColumnNames)*t.DataCount {
		return fmt.Errorf("got %d values for %d rows of %d columns", len(t.Args), t.DataCount, len(t.ColumnNames))
	}

	sql := `INSERT INTO ` + t.TableName + `(`

	for _, v := range t.ColumnNames {
		sql += v.Title + ","
	}

	sql = sql[:len(sql)-1] + `) VALUES `

	blank := ",(" + strings.Repeat(",?", len(t.ColumnNames))[1:] + ")"
	sql += strings.Repeat(blank, t.DataCount)[1:] + `;`
	d.logger.Debug("insert table", zap.String("sql", sql))
	_, err := d.db.Exec(sql, t.Args...)

	return err
}
