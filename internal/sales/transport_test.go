package sales

import (
	"context"
	"errors"
	"sync"

	"pos_sales/internal/query"
)

// fakeTransport answers each statement with a canned body or error.
type fakeTransport struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  []query.Query
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		bodies: map[string]string{},
		errs:   map[string]error{},
	}
}

func (f *fakeTransport) answer(text, body string) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[text] = body
	return f
}

func (f *fakeTransport) fail(text string, err error) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[text] = err
	return f
}

func (f *fakeTransport) Execute(ctx context.Context, q query.Query) (query.RawResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	body, hasBody := f.bodies[q.Text]
	err := f.errs[q.Text]
	f.mu.Unlock()

	if err != nil {
		return query.RawResult{}, err
	}
	if !hasBody {
		body = `[]`
	}
	return query.DecodeRaw([]byte(body))
}

func (f *fakeTransport) callsFor(text string) []query.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []query.Query
	for _, c := range f.calls {
		if c.Text == text {
			out = append(out, c)
		}
	}
	return out
}

var errBackendDown = &query.TransportError{Query: "x", StatusCode: 503, Err: errors.New("backend down")}
