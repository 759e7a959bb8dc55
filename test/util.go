package test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"
)

// Clock is a manually advanced clock.
type Clock struct {
	lock sync.Mutex
	t    time.Time
}

// NewClock returns a Clock set to a fixed instant.
func NewClock() *Clock {
	return &Clock{
		t: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Now returns the clock's current time.
func (c *Clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.lock.Lock()
	c.t = c.t.Add(d)
	c.lock.Unlock()
}

// Response is a canned reply from a DataServer.
type Response struct {
	Status int
	Body   string
}

// DataServer is a fake identity-data API. It answers
// GET /api/v1/{provider}/GetDataValue/All with the Response registered for
// the DataAccountUrl query value, or 404 if none is registered.
type DataServer struct {
	*httptest.Server

	lock      sync.Mutex
	responses map[string]Response
	requests  []*http.Request

	hits atomic.Int32
}

// NewDataServer starts a DataServer. Close it when done.
func NewDataServer() *DataServer {
	ds := &DataServer{
		responses: make(map[string]Response),
	}
	ds.Server = httptest.NewServer(http.HandlerFunc(ds.serve))
	return ds
}

// Set registers the reply for an account. The account is the locator without
// its scheme, as sent in the DataAccountUrl parameter.
func (ds *DataServer) Set(account string, status int, body string) {
	ds.lock.Lock()
	ds.responses[account] = Response{
		Status: status,
		Body:   body,
	}
	ds.lock.Unlock()
}

// Hits returns the number of requests served.
func (ds *DataServer) Hits() int {
	return int(ds.hits.Load())
}

// LastRequest returns the most recent request, or nil.
func (ds *DataServer) LastRequest() *http.Request {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	if len(ds.requests) == 0 {
		return nil
	}
	return ds.requests[len(ds.requests)-1]
}

func (ds *DataServer) serve(w http.ResponseWriter, r *http.Request) {
	ds.hits.Add(1)

	ds.lock.Lock()
	ds.requests = append(ds.requests, r.Clone(r.Context()))
	resp, ok := ds.responses[r.URL.Query().Get("DataAccountUrl")]
	ds.lock.Unlock()

	if !ok {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	if resp.Status != http.StatusOK {
		http.Error(w, resp.Body, resp.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(resp.Body))
}
