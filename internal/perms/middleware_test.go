package perms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbook-app/stockbook/internal/shared"
)

func newTestSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return shared.NewSessionManager(client, "stockbook_session", "test-secret", time.Hour, false)
}

func requestWithSession(userID string) (*http.Request, *shared.Session) {
	sess := &shared.Session{}
	if userID != "" {
		sess.SetUser(userID)
	}
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	return req, sess
}

func contextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUserRejectsAnonymous(t *testing.T) {
	mw := Middleware{Service: NewService(newMockPermsRepo()), Sessions: newTestSessionManager(t)}

	called := false
	rec := httptest.NewRecorder()
	req, _ := requestWithSession("")
	mw.RequireUser(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireUserAttachesActor(t *testing.T) {
	repo := newMockPermsRepo()
	repo.roles["user-1"] = RoleUser
	repo.perms["user-1"] = PermissionRow{UserID: "user-1", CanAdd: true}
	mw := Middleware{Service: NewService(repo), Sessions: newTestSessionManager(t)}

	var actor Actor
	var ok bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req, _ := requestWithSession("user-1")
	mw.RequireUser(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, "user-1", actor.UserID)
	assert.True(t, actor.Capabilities.CanAdd)
}

func TestRequireUserSignsOutBlockedAccount(t *testing.T) {
	repo := newMockPermsRepo()
	repo.roles["blocked-1"] = RoleUser
	repo.perms["blocked-1"] = PermissionRow{UserID: "blocked-1", CanAdd: true, IsBlocked: true}
	mw := Middleware{Service: NewService(repo), Sessions: newTestSessionManager(t)}

	called := false
	rec := httptest.NewRecorder()
	req, sess := requestWithSession("blocked-1")
	mw.RequireUser(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
	assert.True(t, sess.Destroyed())
}

func TestRequireGatesOnCapability(t *testing.T) {
	mw := Middleware{Service: NewService(newMockPermsRepo())}

	handlerFor := func(actor Actor, cap Capability, called *bool) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		req = req.WithContext(contextWithActor(req.Context(), actor))
		mw.Require(cap)(okHandler(called)).ServeHTTP(rec, req)
		return rec
	}

	called := false
	rec := handlerFor(Actor{UserID: "u", Capabilities: Capabilities{CanAdd: true}}, CapabilityAdd, &called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)

	called = false
	rec = handlerFor(Actor{UserID: "u", Capabilities: Capabilities{CanAdd: true}}, CapabilityDelete, &called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestRequireWithoutActorIsUnauthorized(t *testing.T) {
	mw := Middleware{Service: NewService(newMockPermsRepo())}

	called := false
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	mw.Require(CapabilityAdd)(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireAdmin(t *testing.T) {
	repo := newMockPermsRepo()
	repo.roles["admin-1"] = RoleAdmin
	repo.roles["user-1"] = RoleUser
	mw := Middleware{Service: NewService(repo)}

	run := func(userID string) (*httptest.ResponseRecorder, bool) {
		called := false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req = req.WithContext(contextWithActor(req.Context(), Actor{UserID: userID}))
		mw.RequireAdmin(okHandler(&called)).ServeHTTP(rec, req)
		return rec, called
	}

	rec, called := run("admin-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)

	rec, called = run("user-1")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}
