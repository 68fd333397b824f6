// Package messaging implements the action-tagged request/response
// channel between the engine and its embedding surfaces (CLI commands,
// a popup, a coordinator). A handler receives a respond callback it may
// invoke after returning, which models "will respond later" semantics:
// the caller awaits exactly one eventual response, a disconnect, or
// context cancellation.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/linkgate/linkgate/internal/model"
)

// Action identifies a request type on the bus.
type Action string

// Actions understood by a page session.
const (
	// ActionAnalyzeURL requests an out-of-band analysis of one URL.
	// The response is typically deferred until the analysis completes.
	ActionAnalyzeURL Action = "analyzeURL"

	// ActionGetStats requests the current session statistics.
	ActionGetStats Action = "getStats"

	// ActionRescanPage clears the link index and re-runs the initial
	// staggered scan, including URLs that were previously scored.
	ActionRescanPage Action = "rescanPage"
)

// Request is one message sent to the bus.
type Request struct {
	// Action selects the handler.
	Action Action

	// URL is the target for ActionAnalyzeURL.
	URL string
}

// Response is the single reply to a Request.
type Response struct {
	// Success reports whether the requested operation succeeded.
	Success bool

	// Stats carries the statistics for ActionGetStats.
	Stats *model.Stats

	// Result carries the analysis outcome for ActionAnalyzeURL, when
	// the analysis succeeded.
	Result *model.AnalysisResult

	// Err is a human-readable failure description when Success is
	// false.
	Err string
}

// Handler processes one request. The respond callback delivers the
// response; it may be called from the handler body (immediate
// response) or stashed and called from another goroutine later
// (deferred response). Only the first call counts, extra calls are
// dropped.
type Handler func(ctx context.Context, req Request, respond func(Response))

// Bus routing errors.
var (
	// ErrNoHandler is returned when no handler is registered for the
	// request's action.
	ErrNoHandler = errors.New("no handler registered for action")

	// ErrDisconnected is returned when the bus is closed while a
	// caller is awaiting a response.
	ErrDisconnected = errors.New("messaging bus disconnected")
)

// Bus routes requests to registered handlers.
type Bus struct {
	mu       sync.Mutex
	handlers map[Action]Handler

	closeOnce sync.Once
	closed    chan struct{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Action]Handler),
		closed:   make(chan struct{}),
	}
}

// Handle registers the handler for an action, replacing any previous
// registration.
func (b *Bus) Handle(action Action, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[action] = h
}

// Close disconnects the bus. Callers blocked in Send receive
// ErrDisconnected; responses arriving afterwards are dropped.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
	})
}

// Send dispatches the request and blocks until the handler responds,
// the context is cancelled, or the bus disconnects. Exactly one of the
// response and the error is meaningful.
func (b *Bus) Send(ctx context.Context, req Request) (Response, error) {
	b.mu.Lock()
	handler, ok := b.handlers[req.Action]
	b.mu.Unlock()
	if !ok {
		return Response{}, fmt.Errorf("%w: %q", ErrNoHandler, req.Action)
	}

	// Buffered so a late deferred response never blocks its sender.
	ch := make(chan Response, 1)
	var once sync.Once
	respond := func(resp Response) {
		once.Do(func() {
			ch <- resp
		})
	}

	go handler(ctx, req, respond)

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-b.closed:
		return Response{}, ErrDisconnected
	}
}
