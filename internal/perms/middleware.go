package perms

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/stockbook-app/stockbook/internal/platform/httpx"
	"github.com/stockbook-app/stockbook/internal/shared"
)

type actorContextKey struct{}

// Actor describes the authenticated user attached to a request after
// RequireUser has run.
type Actor struct {
	UserID       string
	Capabilities Capabilities
}

// ActorFromContext extracts the resolved actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// Middleware wires capability checks for HTTP handlers.
type Middleware struct {
	Service  *Service
	Sessions *shared.SessionManager
	Logger   *slog.Logger
}

// RequireUser resolves the session user and attaches the actor to the
// request context. Blocked accounts are signed out on the spot: the session
// is destroyed before any handler can return data.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		caps, err := m.Service.Resolve(r.Context(), sess.User())
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("resolve capabilities", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if caps.IsBlocked {
			m.Sessions.Destroy(sess)
			if m.Logger != nil {
				m.Logger.Warn("blocked account signed out", slog.String("user_id", sess.User()))
			}
			httpx.RespondError(w, shared.ErrBlocked)
			return
		}
		actor := Actor{UserID: sess.User(), Capabilities: caps}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorContextKey{}, actor)))
	})
}

// Require gates a route behind one capability flag. Must run after
// RequireUser.
func (m Middleware) Require(cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			if !actor.Capabilities.Allows(cap) {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route behind the admin role. Must run after
// RequireUser.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		admin, err := m.Service.IsAdmin(r.Context(), actor.UserID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("check admin role", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if !admin {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
