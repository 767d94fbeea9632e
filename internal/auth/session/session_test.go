package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, now time.Time) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return m
}

func TestNewManagerRejectsWeakSecret(t *testing.T) {
	for _, secret := range []string{"", "short", strings.Repeat("x", MinSecretLen-1)} {
		_, err := NewManager(secret)
		assert.ErrorIs(t, err, ErrWeakSecret)
	}

	_, err := NewManager(strings.Repeat("x", MinSecretLen))
	assert.NoError(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, now)

	token, err := m.Issue("user-1", user.RoleAdmin)
	require.NoError(t, err)

	sess, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UID)
	assert.Equal(t, user.RoleAdmin, sess.Role)
	assert.Equal(t, now.Unix(), sess.IssuedAt.Unix())
	assert.Equal(t, now.Add(TTL).Unix(), sess.ExpiresAt.Unix())
}

func TestIssueRejectsBadInput(t *testing.T) {
	m := newTestManager(t, time.Now())

	_, err := m.Issue("", user.RoleAdmin)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Issue("user-1", user.Role("SUPERUSER"))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestVerifyRejectsTampering(t *testing.T) {
	m := newTestManager(t, time.Now())
	token, err := m.Issue("user-1", user.RoleStaff)
	require.NoError(t, err)

	// Flip one bit in the payload and in the signature.
	for _, i := range []int{0, len(token) / 2, len(token) - 2} {
		raw := []byte(token)
		raw[i] ^= 0x01
		_, err := m.Verify(string(raw))
		assert.ErrorIs(t, err, ErrNoSession, "bit flip at %d", i)
	}
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	m := newTestManager(t, time.Now())

	for _, token := range []string{
		"",
		"justonepart",
		".",
		"a.",
		".b",
		"a.b.c",
		"!!!.###",
	} {
		_, err := m.Verify(token)
		assert.ErrorIs(t, err, ErrNoSession, "token %q", token)
	}
}

func TestVerifyRejectsForgedPayloads(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, now)

	sign := func(payload string) string {
		encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
		mac := hmac.New(sha256.New, []byte(testSecret))
		mac.Write([]byte(encoded))
		return encoded + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	}

	exp := now.Add(TTL).Unix()
	cases := map[string]string{
		"unknown field":  `{"uid":"u","role":"ADMIN","iat":1,"exp":` + itoa(exp) + `,"extra":true}`,
		"trailing data":  `{"uid":"u","role":"ADMIN","iat":1,"exp":` + itoa(exp) + `}{}`,
		"wrong types":    `{"uid":1,"role":"ADMIN","iat":1,"exp":` + itoa(exp) + `}`,
		"not an object":  `"hello"`,
		"bad role":       `{"uid":"u","role":"ROOT","iat":1,"exp":` + itoa(exp) + `}`,
		"empty uid":      `{"uid":"","role":"ADMIN","iat":1,"exp":` + itoa(exp) + `}`,
		"missing fields": `{}`,
	}
	for name, payload := range cases {
		_, err := m.Verify(sign(payload))
		assert.ErrorIs(t, err, ErrNoSession, name)
	}

	// Sanity: the same signing path with a valid payload verifies.
	_, err := m.Verify(sign(`{"uid":"u","role":"ADMIN","iat":1,"exp":` + itoa(exp) + `}`))
	assert.NoError(t, err)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	m := newTestManager(t, issued)
	token, err := m.Issue("user-1", user.RoleAdmin)
	require.NoError(t, err)

	verifyAt := func(at time.Time) error {
		late := newTestManager(t, at)
		_, err := late.Verify(token)
		return err
	}

	assert.NoError(t, verifyAt(issued.Add(TTL-time.Second)), "one second before expiry")
	assert.ErrorIs(t, verifyAt(issued.Add(TTL)), ErrNoSession, "exactly at expiry")
	assert.ErrorIs(t, verifyAt(issued.Add(TTL+time.Second)), ErrNoSession, "after expiry")
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	m1 := newTestManager(t, time.Now())
	m2, err := NewManager(strings.Repeat("y", MinSecretLen))
	require.NoError(t, err)

	token, err := m1.Issue("user-1", user.RoleAdmin)
	require.NoError(t, err)

	_, err = m2.Verify(token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestIssueCookieAttributes(t *testing.T) {
	m := newTestManager(t, time.Now())
	c, err := m.IssueCookie("user-1", user.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, int(TTL.Seconds()), c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestRevokeCookieExpiresImmediately(t *testing.T) {
	c := RevokeCookie()
	assert.Equal(t, CookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Contains(t, c.String(), "Max-Age=0")
}

func TestFromRequest(t *testing.T) {
	m := newTestManager(t, time.Now())
	token, err := m.Issue("user-1", user.RoleStaff)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	sess, err := m.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UID)

	bare := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	_, err = m.FromRequest(bare)
	assert.ErrorIs(t, err, ErrNoSession)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
