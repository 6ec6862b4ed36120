package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestCookieCodecRoundTrip(t *testing.T) {
	codec := NewCookieCodec("citizen", testSecret, true)

	rec := httptest.NewRecorder()
	require.NoError(t, codec.Issue(rec, "sid-1"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "pg_sess_citizen", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.NotContains(t, cookie.Value, "sid-1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sessionID, err := codec.Read(req)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sessionID)
}

func TestCookieCodecNamespaces(t *testing.T) {
	citizen := NewCookieCodec("citizen", testSecret, true)
	employee := NewCookieCodec("employee", testSecret, true)
	assert.Equal(t, "pg_sess_citizen", citizen.Name())
	assert.Equal(t, "pg_sess_employee", employee.Name())

	// A cookie issued for one audience is invisible to the other.
	rec := httptest.NewRecorder()
	require.NoError(t, citizen.Issue(rec, "sid-1"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	_, err := employee.Read(req)
	assert.Error(t, err)
}

func TestCookieCodecRejectsTamper(t *testing.T) {
	codec := NewCookieCodec("citizen", testSecret, true)

	rec := httptest.NewRecorder()
	require.NoError(t, codec.Issue(rec, "sid-1"))
	cookie := rec.Result().Cookies()[0]
	cookie.Value = cookie.Value[:len(cookie.Value)-2] + "xx"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	_, err := codec.Read(req)
	assert.Error(t, err)
}

func TestCookieCodecRejectsForeignKey(t *testing.T) {
	issuer := NewCookieCodec("citizen", testSecret, true)
	verifier := NewCookieCodec("citizen", "another-secret-another-secret-ab", true)

	rec := httptest.NewRecorder()
	require.NoError(t, issuer.Issue(rec, "sid-1"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	_, err := verifier.Read(req)
	assert.Error(t, err)
}

func TestCookieCodecClear(t *testing.T) {
	codec := NewCookieCodec("citizen", testSecret, true)

	rec := httptest.NewRecorder()
	codec.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "pg_sess_citizen", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}
