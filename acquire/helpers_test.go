package acquire

import (
	"sync"
	"time"
)

// fakeClient is an in-memory Client capturing every enqueue, flush, and
// query in order.
type fakeClient struct {
	mu sync.Mutex

	enqueued []string
	flushed  [][]string
	queries  []string
	timeouts []time.Duration
	closed   bool

	// respond produces the reply for a query. Nil means a fixed reading.
	respond func(cmd string) (string, error)

	flushErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{}
}

func (f *fakeClient) Enqueue(cmd string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, cmd)
}

func (f *fakeClient) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flushErr != nil {
		return f.flushErr
	}
	f.flushed = append(f.flushed, f.enqueued)
	f.enqueued = nil

	return nil
}

func (f *fakeClient) Query(cmd string) (string, error) {
	return f.QueryTimeout(cmd, 0)
}

func (f *fakeClient) QueryTimeout(cmd string, timeout time.Duration) (string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, cmd)
	f.timeouts = append(f.timeouts, timeout)
	respond := f.respond
	f.mu.Unlock()

	if respond != nil {
		return respond(cmd)
	}

	return "+1.23456E-02", nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true

	return nil
}

func (f *fakeClient) flushedCommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []string
	for _, batch := range f.flushed {
		all = append(all, batch...)
	}

	return all
}

func (f *fakeClient) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.queries)
}
