package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/user"
)

const (
	// CookieName is the admin session cookie.
	CookieName = "hf_admin_session"
	// TTL is the fixed session lifetime.
	TTL = time.Hour
	// MinSecretLen is the minimum HMAC secret length in bytes.
	MinSecretLen = 32
)

var (
	// ErrNoSession is the single failure surfaced by Verify. Malformed
	// tokens, bad signatures, expiry, bad roles and empty uids all collapse
	// into it so a caller cannot tell why a token was rejected.
	ErrNoSession = errors.New("session: no valid session")
	// ErrWeakSecret is returned when the signing secret is absent or shorter
	// than MinSecretLen. It is a configuration fault, not a bad token.
	ErrWeakSecret = errors.New("session: secret must be at least 32 bytes")
)

// Session is a verified admin session. It exists only inside the signed
// token; the server keeps no session table.
type Session struct {
	UID       string
	Role      user.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenPayload struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
	Iat  int64  `json:"iat"`
	Exp  int64  `json:"exp"`
}

// Manager issues and verifies signed session tokens. Construct one per
// process; the clock is injectable for expiry tests.
type Manager struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager validates the secret and builds a Manager. A short or empty
// secret is a hard error: issuing tokens with a weak key must never happen.
func NewManager(secret string, opts ...Option) (*Manager, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	m := &Manager{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue builds a signed token for uid with the given role, valid for TTL.
func (m *Manager) Issue(uid string, role user.Role) (string, error) {
	if uid == "" || !user.ValidRole(string(role)) {
		return "", ErrNoSession
	}

	now := m.now().Unix()
	payload := tokenPayload{
		UID:  uid,
		Role: string(role),
		Iat:  now,
		Exp:  now + int64(TTL/time.Second),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + m.sign(encoded), nil
}

// Verify checks a token and returns the session it carries. Every failure
// mode returns ErrNoSession.
func (m *Manager) Verify(token string) (*Session, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrNoSession
	}
	encoded, sig := parts[0], parts[1]

	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return nil, ErrNoSession
	}
	want := m.signRaw(encoded)
	if !hmac.Equal(got, want) {
		return nil, ErrNoSession
	}

	payload, err := decodePayload(encoded)
	if err != nil {
		return nil, ErrNoSession
	}

	if payload.Exp <= m.now().Unix() {
		return nil, ErrNoSession
	}
	if !user.ValidRole(payload.Role) {
		return nil, ErrNoSession
	}
	if payload.UID == "" {
		return nil, ErrNoSession
	}

	return &Session{
		UID:       payload.UID,
		Role:      user.Role(payload.Role),
		IssuedAt:  time.Unix(payload.Iat, 0).UTC(),
		ExpiresAt: time.Unix(payload.Exp, 0).UTC(),
	}, nil
}

func (m *Manager) sign(data string) string {
	return base64.RawURLEncoding.EncodeToString(m.signRaw(data))
}

func (m *Manager) signRaw(data string) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// decodePayload parses the token payload strictly: unknown fields, trailing
// data and type mismatches are all rejected rather than structurally trusted.
func decodePayload(encoded string) (*tokenPayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	var p tokenPayload
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("session: trailing payload data")
	}
	return &p, nil
}
