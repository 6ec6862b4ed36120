package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"portalgate/internal/slo"
	"portalgate/pkg/platform/sentinel"
	"portalgate/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*Session, error) {
	return nil, fmt.Errorf("%w: connection refused", sentinel.ErrUnavailable)
}
func (failingStore) Set(context.Context, *Session, time.Duration) error {
	return fmt.Errorf("%w: connection refused", sentinel.ErrUnavailable)
}
func (failingStore) Destroy(context.Context, string) error {
	return fmt.Errorf("%w: connection refused", sentinel.ErrUnavailable)
}
func (failingStore) Touch(context.Context, string, time.Duration) error {
	return fmt.Errorf("%w: connection refused", sentinel.ErrUnavailable)
}

type MiddlewareSuite struct {
	suite.Suite
	store *MemoryStore
	index *slo.MemoryIndex
	codec *CookieCodec
	now   time.Time
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) SetupTest() {
	s.now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }
	s.store = NewMemoryStore(WithClock(clock))
	s.index = slo.NewMemoryIndex(slo.WithIndexClock(clock))
	s.codec = NewCookieCodec("citizen", testSecret, true)
}

func (s *MiddlewareSuite) handler(store Store) (http.Handler, *Session) {
	captured := &Session{}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := FromContext(r.Context()); sess != nil {
			*captured = *sess
		}
		w.WriteHeader(http.StatusOK)
	})
	mw := Middleware(store, s.index, s.codec, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return mw(inner), captured
}

func (s *MiddlewareSuite) request(sessionID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/whatever", nil)
	req = req.WithContext(requestcontext.WithTime(req.Context(), s.now))
	if sessionID != "" {
		rec := httptest.NewRecorder()
		s.Require().NoError(s.codec.Issue(rec, sessionID))
		req.AddCookie(rec.Result().Cookies()[0])
	}
	return req
}

func (s *MiddlewareSuite) seed(sessionID string, token *slo.Token) {
	sess := &Session{
		ID:            sessionID,
		Principal:     &Principal{SubjectID: "subject-1", SessionType: "citizen"},
		FederationKey: &FederationKey{NameID: "U1", SessionIndex: "S1"},
		LogoutToken:   token,
		CreatedAt:     s.now,
	}
	s.Require().NoError(s.store.Set(context.Background(), sess, time.Hour))
}

func (s *MiddlewareSuite) TestNoCookieIsAnonymous() {
	handler, captured := s.handler(s.store)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, s.request(""))

	s.Equal(http.StatusOK, rec.Code)
	s.Empty(captured.ID)
}

func (s *MiddlewareSuite) TestValidCookieResolvesPrincipal() {
	s.seed("sid-1", nil)
	handler, captured := s.handler(s.store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, s.request("sid-1"))

	s.Equal("sid-1", captured.ID)
	s.Require().NotNil(captured.Principal)
	s.Equal("subject-1", captured.Principal.SubjectID)
}

func (s *MiddlewareSuite) TestUnknownSessionClearsCookie() {
	handler, captured := s.handler(s.store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, s.request("ghost"))

	s.Equal(http.StatusOK, rec.Code)
	s.Empty(captured.ID)
	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Negative(cookies[0].MaxAge)
}

func (s *MiddlewareSuite) TestStoreOutageFailsClosed() {
	handler, captured := s.handler(failingStore{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, s.request("sid-1"))

	// The request proceeds anonymously; it is not rejected outright, and the
	// cookie is kept so the session resumes when the store returns.
	s.Equal(http.StatusOK, rec.Code)
	s.Empty(captured.ID)
	s.Empty(rec.Result().Cookies())
}

func (s *MiddlewareSuite) TestSlidingExpiry() {
	s.seed("sid-1", nil)
	handler, _ := s.handler(s.store)

	s.now = s.now.Add(50 * time.Minute)
	handler.ServeHTTP(httptest.NewRecorder(), s.request("sid-1"))

	// Without the touch the session would have lapsed at +60m.
	s.now = s.now.Add(55 * time.Minute)
	got, err := s.store.Get(context.Background(), "sid-1")
	s.Require().NoError(err)
	s.Equal("sid-1", got.ID)
}

func (s *MiddlewareSuite) TestLogoutTokenRefreshedWhenMarginNarrow() {
	// Token expires 10 minutes after the post-touch session expiry, inside
	// the 30 minute threshold.
	s.seed("sid-1", &slo.Token{Value: "sid-1", ExpiresAt: s.now.Add(70 * time.Minute)})
	handler, _ := s.handler(s.store)

	handler.ServeHTTP(httptest.NewRecorder(), s.request("sid-1"))

	got, err := s.store.Get(context.Background(), "sid-1")
	s.Require().NoError(err)
	s.Require().NotNil(got.LogoutToken)
	s.Equal("sid-1", got.LogoutToken.Value)
	s.True(got.LogoutToken.ExpiresAt.Equal(s.now.Add(2*time.Hour)))

	sid, err := s.index.Lookup(context.Background(), slo.ComputeKey("U1", "S1"))
	s.Require().NoError(err)
	s.Equal("sid-1", sid)
}

func (s *MiddlewareSuite) TestLogoutTokenNotRefreshedWhenMarginWide() {
	token := &slo.Token{Value: "sid-1", ExpiresAt: s.now.Add(3 * time.Hour)}
	s.seed("sid-1", token)
	handler, _ := s.handler(s.store)

	handler.ServeHTTP(httptest.NewRecorder(), s.request("sid-1"))

	got, err := s.store.Get(context.Background(), "sid-1")
	s.Require().NoError(err)
	s.True(got.LogoutToken.ExpiresAt.Equal(token.ExpiresAt))

	_, err = s.index.Lookup(context.Background(), slo.ComputeKey("U1", "S1"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func TestRequireAuth(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(inner)

	t.Run("anonymous is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("authenticated passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		sess := &Session{ID: "sid-1", Principal: &Principal{SubjectID: "subject-1"}}
		req = req.WithContext(WithSession(req.Context(), sess))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})
}
