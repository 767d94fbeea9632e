package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/auth/session"
	domain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/user"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is the shortest password accepted at login; shorter inputs
// are rejected before touching the user store.
const MinPasswordLen = 8

var (
	ErrInvalidInput = errors.New("auth: phone and password are required")
	// ErrInvalidCredentials covers both unknown accounts and wrong
	// passwords so the response never reveals which one it was.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrNotAllowed         = errors.New("auth: account has no back-office access")
)

// Users looks up admin accounts for login.
type Users interface {
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

type Service struct {
	users    Users
	sessions *session.Manager
	log      observability.Logger
	verifies observability.Counter
}

func NewService(users Users, sessions *session.Manager, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		log:      tel.Logger().With(observability.F("service", "auth-service")),
		verifies: tel.Metrics().Counter(observability.MSessionVerifies),
	}
}

type LoginResult struct {
	User  *domain.User
	Token string
}

// Login checks the password against the stored bcrypt hash and issues a
// signed session token for accounts with back-office access.
func (s *Service) Login(ctx context.Context, phone, password string) (*LoginResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || len(password) < MinPasswordLen {
		return nil, ErrInvalidInput
	}

	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.CanAccessAdmin() {
		return nil, ErrNotAllowed
	}

	token, err := s.sessions.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info("admin_login", observability.F("user_id", u.ID))
	return &LoginResult{User: u, Token: token}, nil
}

// Verify validates a session token. Every failure collapses to
// session.ErrNoSession.
func (s *Service) Verify(token string) (*session.Session, error) {
	sess, err := s.sessions.Verify(token)
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	s.verifies.Add(1, observability.L("outcome", outcome))
	return sess, err
}
