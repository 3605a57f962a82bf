package spider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReqHistory(t *testing.T) {
	h := NewReqHistoryRepository()
	first := NewRequest("http://quotes.example/page/1/", 1, "run")
	second := NewRequest("http://quotes.example/page/2/", 2, "run")

	assert.False(t, h.HasVisited(first))
	h.AddVisited(first)
	assert.True(t, h.HasVisited(first))
	assert.True(t, h.HasVisited(NewRequest(first.URL, 7, "other")))
	assert.False(t, h.HasVisited(second))

	h.DeleteVisited(first)
	assert.False(t, h.HasVisited(first))
}

func TestNewDataCells(t *testing.T) {
	req := NewRequest("http://quotes.example/page/1/", 1, "42")
	cells := NewDataCells(req, []Record{
		{Text: "a", Author: "x", Tags: []string{"t"}},
		{Text: "b", Author: "y"},
	})

	assert.Len(t, cells, 2)
	for _, c := range cells {
		assert.Equal(t, "42", c.RunID)
		assert.Equal(t, req.URL, c.URL)
		assert.False(t, c.Time.IsZero())
	}
	assert.Equal(t, "b", cells[1].Record.Text)
	assert.Empty(t, NewDataCells(req, nil))
}
