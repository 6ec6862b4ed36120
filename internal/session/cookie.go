package session

import (
	"net/http"

	"github.com/gorilla/securecookie"
)

// cookieNamePrefix plus the session type yields the cookie name, so a browser
// holding both a citizen and an employee session keeps them apart.
const cookieNamePrefix = "pg_sess_"

// CookieCodec signs and verifies the session cookie. The cookie value is only
// the HMAC-wrapped session id; expiry is governed by the store TTL, not the
// cookie, so the codec's own age check is disabled.
type CookieCodec struct {
	codec  *securecookie.SecureCookie
	name   string
	secure bool
}

// NewCookieCodec builds the codec for one session type.
func NewCookieCodec(sessionType, signingSecret string, secure bool) *CookieCodec {
	codec := securecookie.New([]byte(signingSecret), nil)
	codec.MaxAge(0)
	return &CookieCodec{
		codec:  codec,
		name:   cookieNamePrefix + sessionType,
		secure: secure,
	}
}

// Name returns the cookie name this codec reads and writes.
func (c *CookieCodec) Name() string {
	return c.name
}

// Read extracts and verifies the session id from the request cookie. Any
// failure (absent cookie, bad signature, wrong name) returns an error; the
// caller treats all of them identically as "no session".
func (c *CookieCodec) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", err
	}
	var sessionID string
	if err := c.codec.Decode(c.name, cookie.Value, &sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Issue sets the signed session cookie. No Max-Age: the cookie is
// session-scoped and the server-side TTL is the real expiry.
func (c *CookieCodec) Issue(w http.ResponseWriter, sessionID string) error {
	value, err := c.codec.Encode(c.name, sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie in the browser.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
