// Package remote implements a socket.io-backed collection source. A Source
// answers filter queries over a persistent connection and can be exposed to
// expressions as a function, e.g. `item.name for item in dataSource(query)`.
//
// Protocol: the client emits `<event>` with {"id": n, "query": q}; the server
// answers with `<event>:result` carrying {"id": n, "items": [...]} or
// {"id": n, "error": "..."}. Responses are matched to requests by id.
package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/optbind/internal/ctxlog"
	"github.com/vk/optbind/internal/evaluator"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultTimeout = 5 * time.Second

// ErrTimeout is returned when no response arrives in time.
var ErrTimeout = errors.New("remote: timed out waiting for response")

// Options configures a Source.
type Options struct {
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

type result struct {
	items []any
	err   error
}

// Source queries a socket.io server for collection items.
type Source struct {
	event   string
	timeout time.Duration
	logger  *slog.Logger

	emit       func(event string, payload any)
	disconnect func()

	nextID  atomic.Uint64
	mu      sync.Mutex
	pending map[uint64]chan result
}

// Dial connects to the server and waits for the connection to be established.
func Dial(ctx context.Context, opts Options) (*Source, error) {
	logger := ctxlog.FromContext(ctx).With("remote", opts.URL, "namespace", opts.Namespace)

	if opts.Event == "" {
		return nil, errors.New("remote: event name is required")
	}
	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)

	s := newSource(opts.Event, timeout, logger,
		func(event string, payload any) { io.Emit(event, payload) },
		func() { io.Disconnect() },
	)
	io.On(types.EventName(opts.Event+":result"), s.handleResult)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return s, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}
}

func newSource(event string, timeout time.Duration, logger *slog.Logger, emit func(string, any), disconnect func()) *Source {
	return &Source{
		event:      event,
		timeout:    timeout,
		logger:     logger,
		emit:       emit,
		disconnect: disconnect,
		pending:    make(map[uint64]chan result),
	}
}

// Query asks the server for the items matching query. It is safe for
// concurrent use.
func (s *Source) Query(ctx context.Context, query string) ([]any, error) {
	id := s.nextID.Add(1)
	ch := make(chan result, 1)

	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	s.logger.Debug("Emitting query.", "event", s.event, "id", id, "query", query)
	s.emit(s.event, map[string]any{"id": id, "query": query})

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.items, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("%w: query %q after %v", ErrTimeout, query, s.timeout)
	}
}

// handleResult delivers a `<event>:result` payload to the waiting query.
// Payloads for unknown ids are dropped.
func (s *Source) handleResult(data ...any) {
	if len(data) == 0 {
		s.logger.Warn("Empty result payload.")
		return
	}
	payload, ok := data[0].(map[string]any)
	if !ok {
		s.logger.Warn("Unexpected result payload.", "type", fmt.Sprintf("%T", data[0]))
		return
	}
	id, ok := toID(payload["id"])
	if !ok {
		s.logger.Warn("Result payload without a valid id.", "id", payload["id"])
		return
	}

	s.mu.Lock()
	ch, ok := s.pending[id]
	s.mu.Unlock()
	if !ok {
		s.logger.Debug("Dropping result for unknown request.", "id", id)
		return
	}

	var res result
	switch {
	case payload["error"] != nil:
		res.err = fmt.Errorf("remote: %v", payload["error"])
	case payload["items"] == nil:
		res.items = []any{}
	default:
		items, ok := payload["items"].([]any)
		if !ok {
			res.err = fmt.Errorf("remote: items is a %T, not a list", payload["items"])
		} else if items == nil {
			items = []any{}
		}
		res.items = items
	}

	select {
	case ch <- res:
	default:
	}
}

func toID(v any) (uint64, bool) {
	switch n := v.(type) {
	case float64:
		if n < 1 || n != float64(uint64(n)) {
			return 0, false
		}
		return uint64(n), true
	case int:
		return uint64(n), n > 0
	case int64:
		return uint64(n), n > 0
	case uint64:
		return n, n > 0
	}
	return 0, false
}

// Function exposes the source as an expression function taking the filter
// query. A missing or null argument queries with the empty string.
func (s *Source) Function() evaluator.NativeFunc {
	return func(ctx context.Context, args ...any) (any, error) {
		if len(args) > 1 {
			return nil, fmt.Errorf("expected at most 1 argument, got %d", len(args))
		}
		query := ""
		if len(args) == 1 && args[0] != nil {
			query = fmt.Sprint(args[0])
		}
		return s.Query(ctx, query)
	}
}

// Close disconnects from the server.
func (s *Source) Close() error {
	s.logger.Debug("Disconnecting socket client.")
	s.disconnect()
	return nil
}
