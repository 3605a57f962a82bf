package sqldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemory(t *testing.T) *Sqldb {
	d, err := New(WithDriver(DriverSQLite), WithConnURL(":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New(WithDriver("oracle"))
	assert.Error(t, err)
}

func TestSqldb_CreateTable(t *testing.T) {
	tests := []struct {
		name    string
		table   TableData
		wantErr bool
	}{
		{
			name:    "no columns",
			table:   TableData{TableName: "empty"},
			wantErr: true,
		},
		{
			name: "create_valid_table",
			table: TableData{
				TableName: "quotes",
				ColumnNames: []Field{
					{Title: "Quote", Type: "MEDIUMTEXT"},
					{Title: "URL", Type: "VARCHAR(255)"},
				},
			},
		},
		{
			name: "create_valid_table_with_primary_key",
			table: TableData{
				TableName: "quotes_keyed",
				ColumnNames: []Field{
					{Title: "Quote", Type: "MEDIUMTEXT"},
					{Title: "URL", Type: "VARCHAR(255)"},
				},
				AutoKey: true,
			},
		},
	}

	d := newMemory(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.CreateTable(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			// IF NOT EXISTS makes it idempotent
			assert.NoError(t, d.CreateTable(tt.table))
			assert.NoError(t, d.DropTable(tt.table))
		})
	}
}

func TestSqldb_InsertTable(t *testing.T) {
	columnNames := []Field{{Title: "Quote", Type: "MEDIUMTEXT"}, {Title: "Author", Type: "VARCHAR(255)"}}
	table := TableData{TableName: "quotes", ColumnNames: columnNames, AutoKey: true}

	tests := []struct {
		name    string
		args    []interface{}
		count   int
		wantErr bool
	}{
		{name: "insert_data", args: []interface{}{"q1", "a1"}, count: 1},
		{name: "insert_multi_data", args: []interface{}{"q2", "a2", "q3", "a3"}, count: 2},
		{name: "insert_multi_data_wrong_count", args: []interface{}{"q4", "a4", "q5", "a5"}, count: 1, wantErr: true},
		{name: "insert_no_rows", count: 0, wantErr: true},
	}

	d := newMemory(t)
	require.NoError(t, d.CreateTable(table))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table
			tbl.Args = tt.args
			tbl.DataCount = tt.count
			err := d.Insert(tbl)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	var n int
	require.NoError(t, d.DB().QueryRow("SELECT COUNT(*) FROM quotes").Scan(&n))
	assert.Equal(t, 3, n)
}
