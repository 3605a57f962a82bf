package spider

import "time"

// DataRepository receives records as soon as a page has been extracted.
type DataRepository interface {
	Save(datas ...*DataCell) error
	Flush() error
}

type DataCell struct {
	RunID  string
	URL    string
	Time   time.Time
	Record Record
}

func NewDataCells(req *Request, records []Record) []*DataCell {
	now := time.Now()
	cells := make([]*DataCell, 0, len(records))
	for _, r := range records {
		cells = append(cells, &DataCell{
			RunID:  req.RunID,
			URL:    req.URL,
			Time:   now,
			Record: r,
		})
	}

	return cells
}

type EmptyDataRepository struct{}

func (EmptyDataRepository) Save(datas ...*DataCell) error { return nil }

func (EmptyDataRepository) Flush() error { return nil }
