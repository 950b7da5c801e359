package rio

import (
	"context"
	"fmt"
	"sync"
)

// Pending is one outstanding request.
type Pending struct {
	key  string
	done chan struct{}
	line Line
	err  error
}

// Key returns the path.attribute the request waits for.
func (p *Pending) Key() string {
	return p.key
}

// Done returns a channel closed when the request completes.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the response. It is valid once Done is closed.
func (p *Pending) Result() (Line, error) {
	return p.line, p.err
}

// Wait blocks until the request completes or ctx ends.
func (p *Pending) Wait(ctx context.Context) (Line, error) {
	select {
	case <-p.done:
		return p.line, p.err
	case <-ctx.Done():
		return Line{}, ctx.Err()
	}
}

// PendingTable correlates responses with outstanding requests by key.
// Requests for the same key complete in the order they began. It is safe for
// concurrent use: requests begin on caller goroutines and complete on the
// receive goroutine.
type PendingTable struct {
	mu    sync.Mutex
	order []*Pending
}

// NewPendingTable creates an empty table.
func NewPendingTable() *PendingTable {
	return &PendingTable{}
}

// Begin registers a request waiting for key.
func (t *PendingTable) Begin(key string) *Pending {
	p := &Pending{key: key, done: make(chan struct{})}
	t.mu.Lock()
	t.order = append(t.order, p)
	t.mu.Unlock()
	return p
}

// Resolve completes the oldest request matching the line. S and N lines
// match by key; a keyless S line with a value completes the oldest request
// of any key. E lines fail the oldest request. It reports whether a request
// was completed.
func (t *PendingTable) Resolve(l Line) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	switch l.Tag {
	case TagError:
		if len(t.order) > 0 {
			idx = 0
		}
	case TagSuccess:
		key := l.Key()
		if key == "" && l.Value == "" {
			// Bare acknowledgement of a SET or EVENT.
			return false
		}
		for i, p := range t.order {
			if key == "" || p.key == key {
				idx = i
				break
			}
		}
	case TagNotify:
		// A watched attribute may report before the GET is answered.
		key := l.Key()
		if key == "" {
			return false
		}
		for i, p := range t.order {
			if p.key == key {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return false
	}

	p := t.order[idx]
	t.order = append(t.order[:idx], t.order[idx+1:]...)

	p.line = l
	if l.Tag == TagError {
		p.err = fmt.Errorf("%w: %s: %s", ErrErrorResponse, p.key, l.Value)
	}
	close(p.done)
	return true
}

// Cancel removes a request without completing it. Removing a request that
// already completed is a no-op.
func (t *PendingTable) Cancel(p *Pending) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, q := range t.order {
		if q == p {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

// FailAll completes every outstanding request with err.
func (t *PendingTable) FailAll(err error) {
	t.mu.Lock()
	order := t.order
	t.order = nil
	t.mu.Unlock()

	for _, p := range order {
		p.err = err
		close(p.done)
	}
}

// Len returns the number of outstanding requests.
func (t *PendingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}
