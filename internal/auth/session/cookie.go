package session

import (
	"net/http"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/user"
)

// NewCookie wraps an issued token in the admin session cookie: HttpOnly,
// Secure, SameSite=Strict, scoped to the whole site, with Max-Age matching
// the token TTL.
func NewCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// IssueCookie issues a token for uid and wraps it in the session cookie.
func (m *Manager) IssueCookie(uid string, role user.Role) (*http.Cookie, error) {
	token, err := m.Issue(uid, role)
	if err != nil {
		return nil, err
	}
	return NewCookie(token), nil
}

// RevokeCookie returns a cookie that overwrites and immediately expires the
// session cookie.
func RevokeCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // serialized as Max-Age=0
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// FromRequest verifies the session cookie on r. A missing cookie yields
// ErrNoSession like any other failure.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}
	return m.Verify(c.Value)
}
