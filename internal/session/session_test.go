package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/domain"
)

type identityStub struct {
	calls  int
	emails []string
	user   *domain.User
	err    error
}

func (s *identityStub) GetMe(ctx context.Context) (*domain.User, error) {
	s.calls++
	s.emails = append(s.emails, apiclient.EmailFrom(ctx))
	return s.user, s.err
}

func setup(t *testing.T, identity Identity) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewStore(rdb, time.Hour)
	cookies := CookieConfig{Name: "sess", Secret: "secret", Expiration: time.Hour}
	return NewManager(store, cookies, identity, zerolog.Nop()), mr
}

func requestWith(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

var teacher = &domain.User{Email: "teacher@school.ac.th", Name: "ครูสมใจ", Role: domain.RoleTeacher, Status: domain.UserActive}

func TestRestoreUsesCachedUserWithoutNetwork(t *testing.T) {
	identity := &identityStub{}
	m, _ := setup(t, identity)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	started, err := m.Start(ctx, rec, teacher)
	require.NoError(t, err)

	s, err := m.Restore(ctx, requestWith(rec))
	require.NoError(t, err)
	require.Equal(t, started.ID, s.ID)
	require.Equal(t, teacher.Email, s.User.Email)
	require.Equal(t, "teacher@school.ac.th", s.Email)
	require.Zero(t, identity.calls)
}

func TestRestoreFallsBackToGetMe(t *testing.T) {
	identity := &identityStub{user: teacher}
	m, mr := setup(t, identity)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	started, err := m.Start(ctx, rec, teacher)
	require.NoError(t, err)
	mr.Del(userKey(started.ID))

	s, err := m.Restore(ctx, requestWith(rec))
	require.NoError(t, err)
	require.Equal(t, teacher.Email, s.User.Email)
	require.Equal(t, 1, identity.calls)
	require.Equal(t, []string{"teacher@school.ac.th"}, identity.emails)

	// cached again, so no second call
	_, err = m.Restore(ctx, requestWith(rec))
	require.NoError(t, err)
	require.Equal(t, 1, identity.calls)
}

func TestRestoreGetMeFailureIsAnonymous(t *testing.T) {
	identity := &identityStub{err: errors.New("user not found")}
	m, mr := setup(t, identity)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	started, err := m.Start(ctx, rec, teacher)
	require.NoError(t, err)
	mr.Del(userKey(started.ID))

	_, err = m.Restore(ctx, requestWith(rec))
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRestoreWithoutCookie(t *testing.T) {
	m, _ := setup(t, &identityStub{})
	_, err := m.Restore(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRestoreRejectsForgedCookie(t *testing.T) {
	m, _ := setup(t, &identityStub{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: "not-a-token"})

	_, err := m.Restore(context.Background(), req)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestEndClearsCacheAndCookie(t *testing.T) {
	identity := &identityStub{err: errors.New("nope")}
	m, mr := setup(t, identity)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	s, err := m.Start(ctx, rec, teacher)
	require.NoError(t, err)
	require.True(t, mr.Exists(userKey(s.ID)))

	out := httptest.NewRecorder()
	require.NoError(t, m.End(ctx, out, s))
	require.False(t, mr.Exists(userKey(s.ID)))

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "sess", cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Less(t, cookies[0].MaxAge, 0)
}

func TestFlashes(t *testing.T) {
	m, _ := setup(t, &identityStub{})
	ctx := context.Background()
	store := m.Store()

	require.NoError(t, store.AddFlash(ctx, "sid", Flash{Kind: FlashWarning, Message: "บันทึกแล้ว แต่แนบไฟล์ไม่สำเร็จ"}))
	require.NoError(t, store.AddFlash(ctx, "sid", Flash{Kind: FlashSuccess, Message: "ok"}))

	flashes, err := store.PopFlashes(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, flashes, 2)
	require.Equal(t, FlashWarning, flashes[0].Kind)

	flashes, err = store.PopFlashes(ctx, "sid")
	require.NoError(t, err)
	require.Empty(t, flashes)
}
