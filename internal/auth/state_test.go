package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"server/internal/domain"
)

type fakeStore struct {
	mu       sync.Mutex
	profiles map[string]*domain.UserProfile

	profileErr   error
	profileBlock chan struct{} // when set, ProfileByID waits for close

	signOutErr error
	subs       []func(*domain.Session)
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: map[string]*domain.UserProfile{}}
}

func (f *fakeStore) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return &domain.Session{Token: "t-" + email, UserID: "u-" + email, Email: email}, nil
}

func (f *fakeStore) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	sess := &domain.Session{Token: "t-" + email, UserID: "u-" + email, Email: email}
	f.notify(sess)
	return sess, nil
}

func (f *fakeStore) SignOut(ctx context.Context, token string) error {
	return f.signOutErr
}

func (f *fakeStore) ProfileByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	f.mu.Lock()
	block := f.profileBlock
	err := f.profileErr
	p := f.profiles[userID]
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) Subscribe(fn func(*domain.Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakeStore) notify(sess *domain.Session) {
	f.mu.Lock()
	subs := append([]func(*domain.Session){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(sess)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestStartWithoutSessionIsAnonymous(t *testing.T) {
	m := NewStateMachine(newFakeStore())
	if st := m.Snapshot(); st.Phase != PhaseInitializing || !st.Loading {
		t.Fatalf("fresh machine state = %+v", st)
	}
	m.Start(nil)
	st := m.Snapshot()
	if st.Phase != PhaseAnonymous || st.Loading || st.User != nil || st.Profile != nil {
		t.Fatalf("anonymous state = %+v", st)
	}
}

func TestLoadingClearsBeforeProfileArrives(t *testing.T) {
	store := newFakeStore()
	store.profileBlock = make(chan struct{})
	store.profiles["u1"] = &domain.UserProfile{ID: "u1", Role: domain.UserRoleUser, IsApproved: true}

	m := NewStateMachine(store)
	m.Start(&domain.Session{Token: "tok", UserID: "u1", Email: "a@b.de"})

	st := m.Snapshot()
	if st.Loading {
		t.Fatalf("loading still set after session check")
	}
	if st.Phase != PhasePendingProfile || st.Profile != nil {
		t.Fatalf("pre-profile state = %+v", st)
	}

	close(store.profileBlock)
	waitFor(t, func() bool { return m.Snapshot().Profile != nil })
	if st := m.Snapshot(); st.Phase != PhaseAuthenticated || !st.IsApproved() {
		t.Fatalf("post-profile state = %+v", st)
	}
}

func TestProfileFetchTimeoutLeavesNilProfile(t *testing.T) {
	store := newFakeStore()
	store.profileBlock = make(chan struct{}) // never closed

	m := NewStateMachine(store)
	m.profileTimeout = 30 * time.Millisecond
	m.Start(&domain.Session{Token: "tok", UserID: "u1", Email: "a@b.de"})

	waitFor(t, func() bool { return m.Snapshot().Phase == PhaseAuthenticated })
	st := m.Snapshot()
	if st.Profile != nil {
		t.Fatalf("expected nil profile after timeout, got %+v", st.Profile)
	}
	if st.IsAdmin() || st.IsApproved() {
		t.Fatalf("derived flags must be false under nil profile")
	}
}

func TestProfileFetchErrorLeavesNilProfile(t *testing.T) {
	store := newFakeStore()
	store.profileErr = errors.New("boom")

	m := NewStateMachine(store)
	m.Start(&domain.Session{Token: "tok", UserID: "u1", Email: "a@b.de"})

	waitFor(t, func() bool { return m.Snapshot().Phase == PhaseAuthenticated })
	if st := m.Snapshot(); st.Profile != nil {
		t.Fatalf("expected nil profile after fetch error")
	}
}

func TestSignOutClearsStateSynchronously(t *testing.T) {
	store := newFakeStore()
	store.profiles["u1"] = &domain.UserProfile{ID: "u1", Role: domain.UserRoleUser, IsApproved: true}

	m := NewStateMachine(store)
	m.Start(&domain.Session{Token: "tok", UserID: "u1", Email: "a@b.de"})
	waitFor(t, func() bool { return m.Snapshot().Profile != nil })

	if err := m.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error: %v", err)
	}
	// No waiting: the cleared state must be visible immediately.
	st := m.Snapshot()
	if st.User != nil || st.Session != nil || st.Profile != nil {
		t.Fatalf("state not cleared after sign-out: %+v", st)
	}
	if st.Phase != PhaseAnonymous {
		t.Fatalf("phase after sign-out = %q", st.Phase)
	}
}

func TestSignOutErrorKeepsState(t *testing.T) {
	store := newFakeStore()
	store.profiles["u1"] = &domain.UserProfile{ID: "u1"}
	store.signOutErr = errors.New("store unavailable")

	m := NewStateMachine(store)
	m.Start(&domain.Session{Token: "tok", UserID: "u1", Email: "a@b.de"})
	waitFor(t, func() bool { return m.Snapshot().Phase == PhaseAuthenticated })

	if err := m.SignOut(context.Background()); err == nil {
		t.Fatalf("SignOut() expected error")
	}
	if st := m.Snapshot(); st.User == nil {
		t.Fatalf("state cleared despite sign-out error")
	}
}

func TestStaleProfileFetchCannotResurrectClearedState(t *testing.T) {
	store := newFakeStore()
	store.profileBlock = make(chan struct{})
	store.profiles["u1"] = &domain.UserProfile{ID: "u1", IsApproved: true}

	m := NewStateMachine(store)
	m.Start(&domain.Session{Token: "tok", UserID: "u1", Email: "a@b.de"})

	if err := m.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error: %v", err)
	}
	close(store.profileBlock) // in-flight fetch resolves after sign-out

	time.Sleep(50 * time.Millisecond)
	if st := m.Snapshot(); st.Profile != nil {
		t.Fatalf("stale fetch resurrected profile: %+v", st.Profile)
	}
}

func TestChangeNotificationRederivesState(t *testing.T) {
	store := newFakeStore()
	store.profiles["u-x@y.de"] = &domain.UserProfile{ID: "u-x@y.de", Role: domain.UserRoleAdmin}

	m := NewStateMachine(store)
	m.Start(nil)

	if _, err := m.SignIn(context.Background(), "x@y.de", "secret123"); err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}
	waitFor(t, func() bool { return m.Snapshot().Phase == PhaseAuthenticated })
	st := m.Snapshot()
	if st.User == nil || st.User.Email != "x@y.de" {
		t.Fatalf("user not derived from change notification: %+v", st)
	}
	if !st.IsAdmin() {
		t.Fatalf("admin flag not derived")
	}

	store.notify(nil)
	if st := m.Snapshot(); st.Phase != PhaseAnonymous || st.Profile != nil {
		t.Fatalf("state after signed-out notification = %+v", st)
	}
}

func TestRefreshProfileWithoutUserClearsProfile(t *testing.T) {
	m := NewStateMachine(newFakeStore())
	m.Start(nil)
	p, err := m.RefreshProfile(context.Background())
	if err != nil || p != nil {
		t.Fatalf("RefreshProfile() = %v, %v", p, err)
	}
}

func TestResolveStateSynchronous(t *testing.T) {
	store := newFakeStore()
	store.profiles["u1"] = &domain.UserProfile{ID: "u1", Role: domain.UserRoleUser, IsApproved: true}

	st := ResolveState(store, &domain.Session{Token: "tok", UserID: "u1", Email: "a@b.de"})
	if st.Loading || st.Phase != PhaseAuthenticated || !st.IsApproved() {
		t.Fatalf("resolved state = %+v", st)
	}

	if st := ResolveState(store, nil); st.Phase != PhaseAnonymous {
		t.Fatalf("resolved anonymous state = %+v", st)
	}
}
