package httpapi

import (
	"context"
	"net/http"
)

// serverBaseCtx is a process-level context that can be canceled on shutdown.
// Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context that is canceled when either a or b is done.
// The returned cancel func must be called to release the goroutine when handler ends.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// predictContext joins the request with the server base context and applies
// the configured prediction timeout.
func predictContext(r *http.Request) (context.Context, context.CancelFunc) {
	joined, cancelJoin := joinContexts(serverBaseCtx, r.Context())
	if predictTimeout <= 0 {
		return joined, cancelJoin
	}
	ctx, cancelTimeout := context.WithTimeout(joined, predictTimeout)
	return ctx, func() {
		cancelTimeout()
		cancelJoin()
	}
}

// clientGone reports whether the caller disconnected.
func clientGone(r *http.Request) bool {
	return r.Context().Err() != nil
}

// shuttingDown reports whether the server base context has been canceled.
func shuttingDown() bool {
	return serverBaseCtx.Err() != nil
}
