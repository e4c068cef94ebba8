// Package observability provides instrumentation hooks for floorview.
//
// Libraries call the registered hooks; main registers real implementations
// (metrics, tracing) at startup. Without registration every hook is a no-op,
// so library code never depends on an observability backend.
//
// # Usage
//
//	func main() {
//	    observability.SetViewerHooks(&promViewerHooks{})
//	    observability.SetTransportHooks(&promTransportHooks{})
//	    // ... run application
//	}
//
// Libraries emit events through the getters:
//
//	observability.Transport().OnMessage(ctx, "redis", channel, len(payload))
//	observability.Viewer().OnPatchApplied(floorID, roomID)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Viewer Hooks
// =============================================================================

// ViewerHooks receives events from mounted floor-plan viewers. Viewer events
// are emitted from a single event loop, so they carry no context.
type ViewerHooks interface {
	OnMount(floorID string, rooms int)
	OnUnmount(floorID string)

	// OnPatchApplied records a realtime patch that changed a room.
	OnPatchApplied(floorID, roomID string)
	// OnPatchDropped records a malformed or unmatched patch.
	OnPatchDropped(floorID, reason string)

	// OnNavigate records a navigation intent sent to the router.
	OnNavigate(floorID, target string)
}

// =============================================================================
// Transport Hooks
// =============================================================================

// TransportHooks receives events from realtime push channels.
type TransportHooks interface {
	OnSubscribe(ctx context.Context, transport, channel string, err error)
	OnUnsubscribe(ctx context.Context, transport, channel string)
	OnMessage(ctx context.Context, transport, channel string, size int)
	OnPublish(ctx context.Context, transport, channel string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from outgoing and incoming HTTP traffic.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopViewerHooks ignores every viewer event.
type NoopViewerHooks struct{}

func (NoopViewerHooks) OnMount(string, int)           {}
func (NoopViewerHooks) OnUnmount(string)              {}
func (NoopViewerHooks) OnPatchApplied(string, string) {}
func (NoopViewerHooks) OnPatchDropped(string, string) {}
func (NoopViewerHooks) OnNavigate(string, string)     {}

// NoopTransportHooks ignores every transport event.
type NoopTransportHooks struct{}

func (NoopTransportHooks) OnSubscribe(context.Context, string, string, error) {}
func (NoopTransportHooks) OnUnsubscribe(context.Context, string, string)      {}
func (NoopTransportHooks) OnMessage(context.Context, string, string, int)     {}
func (NoopTransportHooks) OnPublish(context.Context, string, string, error)   {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	viewerHooks    ViewerHooks    = NoopViewerHooks{}
	transportHooks TransportHooks = NoopTransportHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetViewerHooks registers viewer hooks. Nil is ignored.
func SetViewerHooks(h ViewerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		viewerHooks = h
	}
}

// SetTransportHooks registers transport hooks. Nil is ignored.
func SetTransportHooks(h TransportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		transportHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Viewer returns the registered viewer hooks.
func Viewer() ViewerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return viewerHooks
}

// Transport returns the registered transport hooks.
func Transport() TransportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return transportHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults. Used by tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	viewerHooks = NoopViewerHooks{}
	transportHooks = NoopTransportHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
