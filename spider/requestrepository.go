package spider

import "sync"

type ReqHistoryRepository interface {
	AddVisited(reqs ...*Request)
	DeleteVisited(req *Request)
	HasVisited(req *Request) bool
}

type reqHistory struct {
	Visited     map[string]bool
	VisitedLock sync.Mutex
}

func NewReqHistoryRepository() ReqHistoryRepository {
	r := &reqHistory{}
	r.Visited = make(map[string]bool, 100)
	return r
}

func (r *reqHistory) HasVisited(req *Request) bool {
	r.VisitedLock.Lock()
	defer r.VisitedLock.Unlock()

	return r.Visited[req.Unique()]
}

func (r *reqHistory) AddVisited(reqs ...*Request) {
	r.VisitedLock.Lock()
	defer r.VisitedLock.Unlock()

	for _, req := range reqs {
		r.Visited[req.Unique()] = true
	}
}

func (r *reqHistory) DeleteVisited(req *Request) {
	r.VisitedLock.Lock()
	defer r.VisitedLock.Unlock()

	delete(r.Visited, req.Unique())
}
