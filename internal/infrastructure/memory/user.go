package memory

import (
	"context"

	appauth "github.com/nillpakhi2003-droid/habib-furniture/internal/application/auth"
	userdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/user"
)

var _ appauth.Users = (*Store)(nil)

func (s *Store) GetByPhone(ctx context.Context, phone string) (*userdomain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[phone]
	if !ok {
		return nil, userdomain.ErrNotFound
	}
	cu := *u
	return &cu, nil
}

// PutUser seeds or replaces an admin account, keyed by phone.
func (s *Store) PutUser(u *userdomain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cu := *u
	s.users[u.Phone] = &cu
}
