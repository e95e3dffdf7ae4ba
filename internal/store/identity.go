package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/alphabot-ai/campusboard/internal/auth"
	"github.com/alphabot-ai/campusboard/internal/clock"
	"github.com/alphabot-ai/campusboard/internal/kv"
)

// IdentityStore owns the registered accounts and the single current
// session of a profile.
type IdentityStore struct {
	mu       sync.RWMutex
	accounts []Account
	session  *Identity
	kv       kv.Store
	hasher   auth.Hasher
	clock    clock.Clock
	logger   *zap.Logger
}

func NewIdentityStore(ctx context.Context, s kv.Store, hasher auth.Hasher, clk clock.Clock, logger *zap.Logger) *IdentityStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	is := &IdentityStore{kv: s, hasher: hasher, clock: clk, logger: logger}
	is.load(ctx)
	return is
}

// load reads accounts and session independently. Anything unreadable is
// treated as absent.
func (s *IdentityStore) load(ctx context.Context) {
	s.accounts = []Account{}
	if raw, ok, err := s.kv.Get(ctx, KeyUsers); err != nil {
		s.logger.Warn("failed to load users", zap.Error(err))
	} else if ok {
		var accounts []Account
		if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
			s.logger.Warn("corrupt saved users, starting empty", zap.Error(err))
		} else if accounts != nil {
			s.accounts = accounts
		}
	}

	if raw, ok, err := s.kv.Get(ctx, KeySession); err != nil {
		s.logger.Warn("failed to load session", zap.Error(err))
	} else if ok {
		var id Identity
		if err := json.Unmarshal([]byte(raw), &id); err != nil || id.Email == "" {
			s.logger.Warn("corrupt saved session, starting logged out", zap.Error(err))
		} else {
			s.session = &id
		}
	}
}

func (s *IdentityStore) persistAccountsLocked(ctx context.Context) {
	b, err := json.Marshal(s.accounts)
	if err != nil {
		s.logger.Warn("failed to encode users", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, KeyUsers, string(b)); err != nil {
		s.logger.Warn("failed to save users", zap.Error(err))
	}
}

func (s *IdentityStore) persistSessionLocked(ctx context.Context) {
	if s.session == nil {
		if err := s.kv.Remove(ctx, KeySession); err != nil {
			s.logger.Warn("failed to clear session", zap.Error(err))
		}
		return
	}
	b, err := json.Marshal(s.session)
	if err != nil {
		s.logger.Warn("failed to encode session", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, KeySession, string(b)); err != nil {
		s.logger.Warn("failed to save session", zap.Error(err))
	}
}

// Current returns the session identity, or nil when logged out.
func (s *IdentityStore) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}
	id := *s.session
	return &id
}

// UsernameTaken reports whether name matches an account case-insensitively.
func (s *IdentityStore) UsernameTaken(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUsernameLocked(strings.TrimSpace(name)) >= 0
}

func (s *IdentityStore) findUsernameLocked(name string) int {
	for i, a := range s.accounts {
		if strings.EqualFold(a.Username, name) {
			return i
		}
	}
	return -1
}

func (s *IdentityStore) findEmailLocked(email string) int {
	for i, a := range s.accounts {
		if a.Email == email {
			return i
		}
	}
	return -1
}

// Register creates an account and makes it the current session. Email is
// stored lower-cased.
func (s *IdentityStore) Register(ctx context.Context, username, email, password string) (Account, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	switch {
	case username == "":
		return Account{}, &ValidationError{Field: "username", Message: "is required"}
	case email == "":
		return Account{}, &ValidationError{Field: "email", Message: "is required"}
	case password == "":
		return Account{}, &ValidationError{Field: "password", Message: "is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUsernameLocked(username) >= 0 {
		return Account{}, ErrDuplicateUsername
	}
	if s.findEmailLocked(email) >= 0 {
		return Account{}, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Account{}, err
	}
	id, err := newID()
	if err != nil {
		return Account{}, err
	}

	acct := Account{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    clock.Millis(s.clock.Now()),
	}
	s.accounts = append(s.accounts, acct)
	s.persistAccountsLocked(ctx)

	s.session = &Identity{Name: acct.Username, Email: acct.Email}
	s.persistSessionLocked(ctx)

	s.logger.Info("account registered", zap.String("username", username))
	return acct, nil
}

// Login authenticates by username or email and replaces the session.
func (s *IdentityStore) Login(ctx context.Context, identifier, password string) (Identity, error) {
	identifier = strings.TrimSpace(identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findUsernameLocked(identifier)
	if i < 0 {
		i = s.findEmailLocked(strings.ToLower(identifier))
	}
	if i < 0 {
		return Identity{}, ErrAccountNotFound
	}

	acct := s.accounts[i]
	if err := s.hasher.Compare(acct.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("stored credential unreadable", zap.String("username", acct.Username), zap.Error(err))
		}
		return Identity{}, ErrInvalidCredentials
	}

	s.session = &Identity{Name: acct.Username, Email: acct.Email}
	s.persistSessionLocked(ctx)

	return *s.session, nil
}

// Logout clears the session.
func (s *IdentityStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	s.persistSessionLocked(ctx)
}
