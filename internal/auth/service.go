package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
)

const minPasswordLength = 6

// Service implements the session-store contract: sign-up/sign-in/sign-out
// by email and password, profile lookup, and session-change notification.
type Service struct {
	profiles domain.ProfileRepository
	tokens   *TokenManager
	logger   zerolog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]func(*domain.Session)
}

func NewService(profiles domain.ProfileRepository, tokens *TokenManager, logger zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		tokens:   tokens,
		logger:   logger,
		subs:     map[int]func(*domain.Session){},
	}
}

// SignUp registers a new identity. The profile row starts unapproved with
// the user role; an admin flips the approval bit later.
func (s *Service) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		ID:         uuid.NewString(),
		Email:      email,
		Role:       domain.UserRoleUser,
		IsApproved: false,
		CreatedAt:  time.Now(),
	}
	if err := s.profiles.Create(ctx, profile, string(hash)); err != nil {
		return nil, err
	}

	sess, err := s.tokens.Issue(profile.ID, profile.Email)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", profile.ID).Msg("user registered")
	s.notify(sess)
	return sess, nil
}

// SignIn authenticates an identity by email and password.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	profile, hash, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	sess, err := s.tokens.Issue(profile.ID, profile.Email)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", profile.ID).Msg("user signed in")
	s.notify(sess)
	return sess, nil
}

// SignOut ends a session. Tokens are stateless, so the store-side work is
// the change notification; local state clearing is the caller's concern.
func (s *Service) SignOut(ctx context.Context, token string) error {
	sess, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	s.logger.Info().Str("user_id", sess.UserID).Msg("user signed out")
	s.notify(nil)
	return nil
}

// ProfileByID fetches the profile row for an identity.
func (s *Service) ProfileByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.profiles.GetByID(ctx, userID)
}

// VerifyToken resolves a bearer token to its session.
func (s *Service) VerifyToken(token string) (*domain.Session, error) {
	return s.tokens.Verify(token)
}

// Subscribe registers fn for session-change notifications. A nil session
// means signed out. The returned func cancels the subscription.
func (s *Service) Subscribe(fn func(*domain.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) notify(sess *domain.Session) {
	s.mu.Lock()
	fns := make([]func(*domain.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(sess)
	}
}
