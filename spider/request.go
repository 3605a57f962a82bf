package spider

import (
	"crypto/md5"
	"encoding/hex"
	"net/http"
)

// Request is a single page retrieval.
type Request struct {
	URL    string
	Method string
	// Depth is the 1-based position of the page in the listing.
	Depth int64
	RunID string
}

func NewRequest(url string, depth int64, runID string) *Request {
	return &Request{
		URL:    url,
		Method: http.MethodGet,
		Depth:  depth,
		RunID:  runID,
	}
}

// Unique identifies the request.
func (r *Request) Unique() string {
	block := md5.Sum([]byte(r.URL + r.Method))

	return hex.EncodeToString(block[:])
}
