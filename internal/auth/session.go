package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"kukacrm/internal/logging"
	"kukacrm/internal/types"
)

// UserLister is the read side of the record store used for login.
type UserLister interface {
	ListUsers(ctx context.Context) ([]types.User, error)
}

// Session holds the authenticated principal until Logout or process end.
// There is no token and no expiry.
type Session struct {
	mu        sync.RWMutex
	id        string
	user      *types.User
	startedAt time.Time
}

// NewSession returns an anonymous session with a fresh correlation id.
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

// ID is the correlation id stamped into audit events.
func (s *Session) ID() string {
	return s.id
}

// Login authenticates against the users returned by lister. On failure the
// session stays anonymous.
func (s *Session) Login(ctx context.Context, lister UserLister, username, password string) (types.User, error) {
	timer := logging.StartTimer(logging.CategoryAuth, "Login")
	defer timer.Stop()

	users, err := lister.ListUsers(ctx)
	if err != nil {
		return types.User{}, fmt.Errorf("failed to load users: %w", err)
	}

	audit := logging.AuditWithSession(s.id, username)
	user, err := Authenticate(username, password, users)
	if err != nil {
		logging.AuthWarn("Login failed for %q", username)
		audit.Failure(logging.AuditLoginFailure, username, err)
		return types.User{}, err
	}

	s.mu.Lock()
	s.user = &user
	s.startedAt = time.Now()
	s.mu.Unlock()

	logging.Auth("Login %s as %s (session %s)", user.Username, user.Role, s.id)
	audit.Event(logging.AuditLoginSuccess, user.ID, true)
	return user, nil
}

// Logout clears the principal.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	logging.Auth("Logout %s after %s", s.user.Username, time.Since(s.startedAt).Round(time.Millisecond))
	logging.AuditWithSession(s.id, s.user.Username).Event(logging.AuditLogout, s.user.ID, true)
	s.user = nil
}

// Current returns the principal and whether one is logged in.
func (s *Session) Current() (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return types.User{}, false
	}
	return *s.user, true
}

// Require returns the principal when it holds role. Anonymous sessions get
// types.ErrInvalidCredentials, other roles types.ErrForbidden.
func (s *Session) Require(role types.Role) (types.User, error) {
	user, ok := s.Current()
	if !ok {
		return types.User{}, types.ErrInvalidCredentials
	}
	if !Authorize(user, role) {
		logging.AuthWarn("%s (%s) denied %s access", user.Username, user.Role, role)
		logging.AuditWithSession(s.id, user.Username).Event(logging.AuditAccessDenied, string(role), false)
		return types.User{}, types.ErrForbidden
	}
	return user, nil
}

// Audit returns an audit logger stamped with this session.
func (s *Session) Audit() *logging.AuditLogger {
	user, _ := s.Current()
	return logging.AuditWithSession(s.id, user.Username)
}
