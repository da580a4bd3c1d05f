package shared

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
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewSessionManager(client, "stockbook_session", "test-secret", time.Hour, false)
}

func TestLoadCreatesNewSessionWithoutCookie(t *testing.T) {
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.ID)
	assert.Empty(t, sess.User())
}

func TestCommitThenLoadRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)

	sess.SetUser("user-1")
	sess.Set("csrf_token", "tok")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, "stockbook_session", cookies[0].Name)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])

	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, "user-1", loaded.User())
	assert.Equal(t, "tok", loaded.Get("csrf_token"))
}

func TestDestroyClearsStoreAndCookie(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("user-1")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	cookie := rec.Result().Cookies()[0]

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)

	sm.Destroy(loaded)
	assert.True(t, loaded.Destroyed())

	rec = httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, next, loaded))

	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Equal(t, -1, cleared[0].MaxAge)

	// Store entry is gone: a fresh load with the old cookie is anonymous.
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(cookie)
	fresh, err := sm.Load(ctx, again)
	require.NoError(t, err)
	assert.Empty(t, fresh.User())
}
