package auth

import (
	"context"
	"sync"
	"time"

	"server/internal/domain"
)

// Phase names the current position of the session state machine.
type Phase string

const (
	PhaseInitializing   Phase = "initializing"
	PhaseAnonymous      Phase = "anonymous"
	PhaseAuthenticating Phase = "authenticating"
	PhasePendingProfile Phase = "authenticated-pending-profile"
	PhaseAuthenticated  Phase = "authenticated"
)

// State is one observable snapshot of the session container.
type State struct {
	Phase   Phase
	Loading bool
	Session *domain.Session
	User    *domain.Identity
	Profile *domain.UserProfile
}

// IsAdmin reports whether the loaded profile grants the admin role.
// False under a nil profile.
func (s State) IsAdmin() bool {
	return s.Profile.IsAdmin()
}

// IsApproved reports whether the loaded profile has been approved.
// False under a nil profile.
func (s State) IsApproved() bool {
	return s.Profile.Approved()
}

// SessionStore is the session-store contract the state machine consumes.
// *Service satisfies it.
type SessionStore interface {
	SignUp(ctx context.Context, email, password string) (*domain.Session, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, token string) error
	ProfileByID(ctx context.Context, userID string) (*domain.UserProfile, error)
	Subscribe(fn func(*domain.Session)) func()
}

const defaultProfileTimeout = 3 * time.Second

// StateMachine is an explicit container for the session, identity, and
// profile of one client. Transitions:
//
//	initializing -> anonymous | authenticated-pending-profile
//	authenticated-pending-profile -> authenticated
//
// Loading clears as soon as the session check completes; the profile
// fetch never blocks it. The profile fetch is bounded by a fixed timeout
// and is not retried automatically; callers retry via RefreshProfile.
type StateMachine struct {
	store          SessionStore
	profileTimeout time.Duration

	mu    sync.Mutex
	state State
	// epoch invalidates in-flight profile fetches across identity changes,
	// so a stale fetch can never resurrect a cleared profile.
	epoch     int
	cancelSub func()
}

func NewStateMachine(store SessionStore) *StateMachine {
	return &StateMachine{
		store:          store,
		profileTimeout: defaultProfileTimeout,
		state:          State{Phase: PhaseInitializing, Loading: true},
	}
}

// Start seeds the container with any existing session and subscribes to
// store change notifications for the container's lifetime. The profile
// loads in the background.
func (m *StateMachine) Start(existing *domain.Session) {
	m.applySession(existing, true)
	m.cancelSub = m.store.Subscribe(func(sess *domain.Session) {
		m.applySession(sess, true)
	})
}

// Close cancels the change subscription.
func (m *StateMachine) Close() {
	if m.cancelSub != nil {
		m.cancelSub()
		m.cancelSub = nil
	}
}

// SignUp registers a new identity and adopts the resulting session.
func (m *StateMachine) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	m.setPhase(PhaseAuthenticating)
	sess, err := m.store.SignUp(ctx, email, password)
	if err != nil {
		m.setPhase(PhaseAnonymous)
		return nil, err
	}
	return sess, nil
}

// SignIn authenticates and adopts the resulting session. State updates
// arrive through the store's change notification.
func (m *StateMachine) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	m.setPhase(PhaseAuthenticating)
	sess, err := m.store.SignIn(ctx, email, password)
	if err != nil {
		m.setPhase(PhaseAnonymous)
		return nil, err
	}
	return sess, nil
}

// SignOut ends the session at the store and clears user, session, and
// profile synchronously. The local clear does not wait on anything beyond
// the store call returning without error, so callers observe the
// signed-out state immediately.
func (m *StateMachine) SignOut(ctx context.Context) error {
	m.mu.Lock()
	sess := m.state.Session
	m.mu.Unlock()
	if sess == nil {
		return nil
	}
	if err := m.store.SignOut(ctx, sess.Token); err != nil {
		return err
	}
	m.applySession(nil, false)
	return nil
}

// RefreshProfile re-fetches the profile synchronously, bounded by the
// profile timeout. With no signed-in user the profile is cleared.
func (m *StateMachine) RefreshProfile(ctx context.Context) (*domain.UserProfile, error) {
	m.mu.Lock()
	user := m.state.User
	epoch := m.epoch
	m.mu.Unlock()
	if user == nil {
		m.mu.Lock()
		m.state.Profile = nil
		m.mu.Unlock()
		return nil, nil
	}
	m.fetchProfile(user.ID, epoch)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Profile, nil
}

// Snapshot returns a copy of the current state.
func (m *StateMachine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *StateMachine) setPhase(p Phase) {
	m.mu.Lock()
	m.state.Phase = p
	m.mu.Unlock()
}

// applySession installs a new session (or nil for signed out) and kicks
// off the profile fetch. Loading drops here, on session settlement, never
// on profile arrival.
func (m *StateMachine) applySession(sess *domain.Session, async bool) {
	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	if sess == nil {
		m.state = State{Phase: PhaseAnonymous}
		m.mu.Unlock()
		return
	}
	m.state = State{
		Phase:   PhasePendingProfile,
		Session: sess,
		User:    &domain.Identity{ID: sess.UserID, Email: sess.Email},
	}
	m.mu.Unlock()

	if async {
		go m.fetchProfile(sess.UserID, epoch)
	} else {
		m.fetchProfile(sess.UserID, epoch)
	}
}

// fetchProfile races the store call against the profile timeout. On
// timeout or error the profile is set to nil; the call's eventual
// resolution is ignored. A result from a superseded epoch is discarded.
func (m *StateMachine) fetchProfile(userID string, epoch int) {
	type result struct {
		profile *domain.UserProfile
		err     error
	}
	ch := make(chan result, 1)
	ctx, cancel := context.WithTimeout(context.Background(), m.profileTimeout)
	defer cancel()
	go func() {
		p, err := m.store.ProfileByID(ctx, userID)
		ch <- result{p, err}
	}()

	var profile *domain.UserProfile
	select {
	case r := <-ch:
		if r.err == nil {
			profile = r.profile
		}
	case <-ctx.Done():
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		return
	}
	m.state.Profile = profile
	m.state.Phase = PhaseAuthenticated
}

// ResolveState runs the session and profile transitions synchronously for
// a single already-verified session, e.g. per HTTP request. The returned
// state has Loading cleared; the profile is nil when the bounded fetch
// did not succeed.
func ResolveState(store SessionStore, sess *domain.Session) State {
	m := NewStateMachine(store)
	m.applySession(sess, false)
	return m.Snapshot()
}
