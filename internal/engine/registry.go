package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Kind identifies what an operation does.
type Kind string

const (
	KindNameSearch    Kind = "name-search"
	KindContentSearch Kind = "content-search"
	KindEnumeration   Kind = "enumeration"
)

// EventName is the channel name consumers subscribe to for this kind.
func (k Kind) EventName() string {
	switch k {
	case KindNameSearch:
		return "search-results"
	case KindContentSearch:
		return "content-search-results"
	case KindEnumeration:
		return "directory-entries"
	}
	return string(k)
}

// CancelToken is a write-once cancellation flag. Workers poll Cancelled
// without locking; Done unblocks channel operations once the flag is set.
type CancelToken struct {
	cancelled atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
}

func newCancelToken() *CancelToken {
	ctx, cancel := context.WithCancel(context.Background())
	return &CancelToken{ctx: ctx, cancel: cancel}
}

// Cancel sets the flag. It reports whether this call was the one that set it.
func (t *CancelToken) Cancel() bool {
	if !t.cancelled.CompareAndSwap(false, true) {
		return false
	}
	t.cancel()
	return true
}

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool {
	return t.cancelled.Load()
}

// Done is closed once the token is cancelled.
func (t *CancelToken) Done() <-chan struct{} {
	return t.ctx.Done()
}

// Context returns a context cancelled together with the token.
func (t *CancelToken) Context() context.Context {
	return t.ctx
}

// release frees the token's context resources without marking it cancelled.
func (t *CancelToken) release() {
	t.cancel()
}

// Operation is one running name search, content search or enumeration.
type Operation struct {
	ID      uint64
	Kind    Kind
	Started time.Time

	token *CancelToken
}

// Cancelled reports whether the operation has been asked to stop.
func (o *Operation) Cancelled() bool {
	return o.token.Cancelled()
}

// Context is cancelled when the operation is.
func (o *Operation) Context() context.Context {
	return o.token.Context()
}

// Registry maps operation ids to their cancellation tokens. Ids are strictly
// increasing and never reused within a process.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	ops    map[uint64]*Operation
}

// NewRegistry returns an empty registry. The first id handed out is 1.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[uint64]*Operation)}
}

// Start allocates an id and a fresh token and records the operation.
func (r *Registry) Start(kind Kind) *Operation {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	op := &Operation{
		ID:      r.nextID,
		Kind:    kind,
		Started: time.Now(),
		token:   newCancelToken(),
	}
	r.ops[op.ID] = op
	return op
}

// Cancel flags the operation if it is still registered. Unknown and completed
// ids are ignored. It reports whether a running operation was flagged by this call.
func (r *Registry) Cancel(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[id]
	if !ok {
		return false
	}
	return op.token.Cancel()
}

// Complete removes the operation and reports whether it had been cancelled.
// Once Complete returns, Cancel(id) is a no-op, so a false result means the
// operation may publish its terminal event.
func (r *Registry) Complete(id uint64) (cancelled bool) {
	r.mu.Lock()
	op, ok := r.ops[id]
	if ok {
		delete(r.ops, id)
	}
	r.mu.Unlock()

	if !ok {
		return true
	}
	cancelled = op.token.Cancelled()
	op.token.release()
	return cancelled
}

// Lookup returns the registered operation with id.
func (r *Registry) Lookup(id uint64) (*Operation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	return op, ok
}

// Active returns the number of registered operations.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}
