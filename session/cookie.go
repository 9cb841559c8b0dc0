package session

import (
	"net/http"

	"github.com/gorilla/securecookie"
)

// Codec signs session IDs for browser clients. The cookie carries only the
// signed session ID; session state stays server-side.
type Codec struct {
	codec      *securecookie.SecureCookie
	cookieName string
	secure     bool
}

// NewCodec creates a cookie codec. The secret signs cookie values; tampered
// cookies fail to decode.
func NewCodec(secret, cookieName string, secure bool) *Codec {
	return &Codec{
		codec:      securecookie.New([]byte(secret), nil),
		cookieName: cookieName,
		secure:     secure,
	}
}

// Write sets the signed session cookie on the response.
func (c *Codec) Write(w http.ResponseWriter, sessionID string) error {
	encoded, err := c.codec.Encode(c.cookieName, sessionID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Read extracts and verifies the session ID from the request cookie.
func (c *Codec) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil {
		return "", err
	}

	var sessionID string
	if err := c.codec.Decode(c.cookieName, cookie.Value, &sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Clear expires the session cookie.
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
