package proxy

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/toolproxy/backend"
)

// fakeBehavior scripts one backend's responses for a fake dialer.
type fakeBehavior struct {
	caps     []backend.Capability
	dialErr  error
	listErr  error
	invokeFn func(tool string, args map[string]any) (any, error)
	dialWait time.Duration
}

// fakeDialer serves scripted sessions and counts opens/closes so tests
// can assert the open/close pairing.
type fakeDialer struct {
	mu        sync.Mutex
	behaviors map[string]fakeBehavior
	opens     atomic.Int64
	closes    atomic.Int64
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{behaviors: make(map[string]fakeBehavior)}
}

func (d *fakeDialer) set(id string, b fakeBehavior) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.behaviors[id] = b
}

func (d *fakeDialer) Dial(ctx context.Context, desc backend.Descriptor) (backend.Session, error) {
	d.mu.Lock()
	b := d.behaviors[desc.ID]
	d.mu.Unlock()

	if b.dialWait > 0 {
		select {
		case <-time.After(b.dialWait):
		case <-ctx.Done():
			return nil, &backend.InvokeError{
				Backend: desc.ID,
				Err:     fmt.Errorf("%w: %v", backend.ErrTimeout, ctx.Err()),
			}
		}
	}
	if b.dialErr != nil {
		return nil, &backend.InvokeError{Backend: desc.ID, Err: b.dialErr}
	}

	d.opens.Add(1)
	return &fakeSession{dialer: d, backendID: desc.ID, behavior: b}, nil
}

type fakeSession struct {
	dialer    *fakeDialer
	backendID string
	behavior  fakeBehavior
	closed    atomic.Bool
}

func (s *fakeSession) ListCapabilities(_ context.Context) ([]backend.Capability, error) {
	if s.behavior.listErr != nil {
		return nil, &backend.InvokeError{Backend: s.backendID, Err: s.behavior.listErr}
	}
	return s.behavior.caps, nil
}

func (s *fakeSession) Invoke(_ context.Context, tool string, args map[string]any) (any, error) {
	if s.behavior.invokeFn == nil {
		return nil, &backend.InvokeError{
			Backend: s.backendID,
			Tool:    tool,
			Err:     fmt.Errorf("%w: %s", backend.ErrApplication, tool),
		}
	}
	payload, err := s.behavior.invokeFn(tool, args)
	if err != nil {
		return nil, &backend.InvokeError{Backend: s.backendID, Tool: tool, Err: err}
	}
	return payload, nil
}

func (s *fakeSession) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.dialer.closes.Add(1)
	}
	return nil
}

// cap builds a capability with the given name.
func capNamed(name, description string) backend.Capability {
	return backend.Capability{Tool: mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: map[string]any{"type": "object"},
	}}
}
