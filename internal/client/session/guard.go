// Package session detects session-class errors in endpoint replies and
// performs the forced logout at most once per client process.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/iudanet/invoicekeeper/internal/client/iocli"
	"github.com/iudanet/invoicekeeper/internal/client/storage"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

// sessionMarkers are matched against the lowercased error text
var sessionMarkers = []string{"login", "session", "disabled", "revoked"}

// IsSessionError reports whether resp says the session is invalid, expired,
// disabled or revoked. Matching is by substring on the free-text error;
// keep every caller on this function so it can move to error codes later.
func IsSessionError(resp api.Response) bool {
	text, ok := resp[api.FieldError].(string)
	if !ok {
		return false
	}

	text = strings.ToLower(text)
	for _, marker := range sessionMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Guard performs the forced logout on the first session error it sees
type Guard struct {
	identity storage.IdentityStorage
	io       iocli.IO
	logger   *slog.Logger
	onLogout func()

	redirected atomic.Bool
}

// NewGuard creates a guard. onLogout plays the role of navigating to the
// login entry point and may be nil.
func NewGuard(identity storage.IdentityStorage, io iocli.IO, logger *slog.Logger, onLogout func()) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		identity: identity,
		io:       io,
		logger:   logger,
		onLogout: onLogout,
	}
}

// Check inspects resp and returns it unchanged. On the first session error
// it alerts the user, clears the stored identity and calls onLogout; later
// session errors only pass through.
func (g *Guard) Check(ctx context.Context, resp api.Response) api.Response {
	if !IsSessionError(resp) {
		return resp
	}

	if !g.redirected.CompareAndSwap(false, true) {
		g.logger.DebugContext(ctx, "session error after forced logout", "error", resp.ErrorText())
		return resp
	}

	g.logger.WarnContext(ctx, "session rejected by server, logging out", "error", resp.ErrorText())

	if g.io != nil {
		g.io.Println("Session error:", resp.ErrorText())
		g.io.Println("Please log in again.")
	}

	if g.identity != nil {
		if err := g.identity.ClearIdentity(ctx); err != nil {
			g.logger.ErrorContext(ctx, "failed to clear identity", "error", err)
		}
	}

	if g.onLogout != nil {
		g.onLogout()
	}

	return resp
}

// Triggered reports whether the forced logout already happened
func (g *Guard) Triggered() bool {
	return g.redirected.Load()
}
