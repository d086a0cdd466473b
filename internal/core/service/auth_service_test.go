package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vietour/admin-gateway/internal/core/domain"
	"github.com/vietour/admin-gateway/internal/core/ports"
)

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	saves    int
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	clone := *s
	if s.User != nil {
		u := *s.User
		clone.User = &u
	}
	return &clone
}

func (st *stubSessionStore) Create(_ context.Context, s *domain.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = cloneSession(s)
	return nil
}

func (st *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return cloneSession(st.sessions[id]), nil
}

func (st *stubSessionStore) Save(_ context.Context, s *domain.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.saves++
	st.sessions[s.ID] = cloneSession(s)
	return nil
}

func (st *stubSessionStore) Delete(_ context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
	return nil
}

type stubBackend struct {
	loginUser *domain.User
	loginErr  error
	meUser    *domain.User
	meErr     error

	meCalls     int
	logoutCalls int
	logoutErr   error
}

func (b *stubBackend) PrimeCSRF(context.Context) (domain.CookieSet, error) {
	return domain.CookieSet{{Name: "XSRF-TOKEN", Value: "tok"}}, nil
}

func (b *stubBackend) Login(_ context.Context, _ ports.Credentials, cookies domain.CookieSet) (*domain.User, domain.CookieSet, error) {
	if b.loginErr != nil {
		return nil, nil, b.loginErr
	}
	return b.loginUser, cookies.Merge(domain.CookieSet{{Name: "backend_session", Value: "s1"}}), nil
}

func (b *stubBackend) Me(context.Context, domain.CookieSet) (*domain.User, error) {
	b.meCalls++
	return b.meUser, b.meErr
}

func (b *stubBackend) Logout(context.Context, domain.CookieSet) error {
	b.logoutCalls++
	return b.logoutErr
}

func (b *stubBackend) Forward(context.Context, ports.ForwardRequest) (*ports.ForwardResult, error) {
	return nil, errors.New("not implemented")
}

func newService(store *stubSessionStore, backend *stubBackend) *AuthService {
	return NewAuthService(store, backend, nil, Options{}, zerolog.Nop())
}

func adminUser() *domain.User {
	return &domain.User{ID: 1, FullName: "Alice Admin", Email: "alice@example.com", Role: domain.RoleAdmin, IsVerified: true}
}

func TestLogin_EstablishesServerConfirmedSession(t *testing.T) {
	store := newStubSessionStore()
	// The login response and the identity check disagree on purpose: the
	// session must reflect what /me confirmed, not the login body.
	backend := &stubBackend{
		loginUser: &domain.User{ID: 1, FullName: "From Login", Role: domain.RoleAdmin},
		meUser:    adminUser(),
	}
	svc := newService(store, backend)

	sess, err := svc.Login(context.Background(), ports.Credentials{Login: "alice@example.com", Password: "pw"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !sess.Authenticated() {
		t.Fatalf("expected authenticated session")
	}
	if sess.User.FullName != "Alice Admin" {
		t.Fatalf("session user not server-confirmed: %+v", sess.User)
	}
	if !sess.Checked {
		t.Fatalf("expected Checked after login")
	}
	if backend.meCalls != 1 {
		t.Fatalf("expected identity re-check after login, got %d calls", backend.meCalls)
	}
	if stored, _ := store.Get(context.Background(), sess.ID); stored == nil {
		t.Fatalf("session not persisted")
	}
}

func TestLogin_DisallowedRoleRevokesBackendSession(t *testing.T) {
	store := newStubSessionStore()
	customer := &domain.User{ID: 7, FullName: "Carol Customer", Role: domain.RoleCustomer}
	backend := &stubBackend{loginUser: customer, meUser: customer}
	svc := newService(store, backend)

	_, err := svc.Login(context.Background(), ports.Credentials{Login: "carol@example.com", Password: "pw"}, "")
	if !errors.Is(err, domain.ErrNoAccess) {
		t.Fatalf("expected ErrNoAccess, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("no session may be established for a disallowed role")
	}
	if backend.logoutCalls != 1 {
		t.Fatalf("backend session must be revoked, logout calls = %d", backend.logoutCalls)
	}
}

func TestLogin_ConfirmedIdentityRoleIsGatedToo(t *testing.T) {
	store := newStubSessionStore()
	// The login response claims an allowed role but the identity check reveals
	// a disallowed one. The confirmed identity is what the session would carry,
	// so it must pass the allow-list as well.
	backend := &stubBackend{
		loginUser: &domain.User{ID: 7, FullName: "Carol", Role: domain.RoleStaff},
		meUser:    &domain.User{ID: 7, FullName: "Carol", Role: domain.RoleCustomer},
	}
	svc := newService(store, backend)

	_, err := svc.Login(context.Background(), ports.Credentials{Login: "carol@example.com", Password: "pw"}, "")
	if !errors.Is(err, domain.ErrNoAccess) {
		t.Fatalf("expected ErrNoAccess, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("no session may be established for a disallowed confirmed role")
	}
	if backend.logoutCalls != 1 {
		t.Fatalf("backend session must be revoked, logout calls = %d", backend.logoutCalls)
	}
}

func TestLogin_DeniedErrorPassesThrough(t *testing.T) {
	store := newStubSessionStore()
	backend := &stubBackend{loginErr: &domain.DeniedError{Status: 401, Message: "bad credentials"}}
	svc := newService(store, backend)

	_, err := svc.Login(context.Background(), ports.Credentials{Login: "x", Password: "y"}, "")
	var de *domain.DeniedError
	if !errors.As(err, &de) || de.Message != "bad credentials" {
		t.Fatalf("expected DeniedError with server message, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("no session on denied login")
	}
}

func TestLogin_ValidationErrorPassesThrough(t *testing.T) {
	backend := &stubBackend{loginErr: &domain.ValidationError{
		Message: "invalid input",
		Fields:  map[string][]string{"login": {"required"}},
	}}
	svc := newService(newStubSessionStore(), backend)

	_, err := svc.Login(context.Background(), ports.Credentials{}, "")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || len(ve.Fields["login"]) != 1 {
		t.Fatalf("expected ValidationError with fields, got %v", err)
	}
}

func TestRefresh_NormalizesFailureToUnauthenticated(t *testing.T) {
	store := newStubSessionStore()
	backend := &stubBackend{meErr: errors.New("connection refused")}
	svc := newService(store, backend)

	sess := &domain.Session{ID: "s1", User: adminUser(), ExpiresAt: time.Now().Add(time.Hour)}
	_ = store.Create(context.Background(), sess)

	ident, err := svc.Refresh(context.Background(), sess)
	if err != nil {
		t.Fatalf("Refresh must not surface transport errors: %v", err)
	}
	if ident.Authenticated() {
		t.Fatalf("expected unauthenticated outcome")
	}
	if sess.User != nil || sess.Authenticated() {
		t.Fatalf("user must be cleared, got %+v", sess.User)
	}
	if !sess.Checked {
		t.Fatalf("Checked must settle even on failure")
	}
}

func TestRefresh_IsIdempotent(t *testing.T) {
	store := newStubSessionStore()
	backend := &stubBackend{meUser: adminUser()}
	svc := newService(store, backend)

	sess := &domain.Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)}
	_ = store.Create(context.Background(), sess)

	first, err := svc.Refresh(context.Background(), sess)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	second, err := svc.Refresh(context.Background(), sess)
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if !first.Authenticated() || !second.Authenticated() {
		t.Fatalf("both checks should confirm identity")
	}
	if first.User.ID != second.User.ID {
		t.Fatalf("unchanged backend session must yield the same state")
	}
	if store.saves != 2 {
		t.Fatalf("expected exactly one store write per invocation, got %d", store.saves)
	}
}

func TestLogout_AlwaysClearsLocalState(t *testing.T) {
	store := newStubSessionStore()
	backend := &stubBackend{logoutErr: errors.New("network down")}
	svc := newService(store, backend)

	sess := &domain.Session{ID: "s1", User: adminUser(), ExpiresAt: time.Now().Add(time.Hour)}
	_ = store.Create(context.Background(), sess)

	svc.Logout(context.Background(), sess, "")

	if got, _ := store.Get(context.Background(), "s1"); got != nil {
		t.Fatalf("local session must be destroyed even when the backend call fails")
	}
}

func TestResolve_UnknownSession(t *testing.T) {
	svc := newService(newStubSessionStore(), &stubBackend{})

	if _, err := svc.Resolve(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), ""); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for empty id, got %v", err)
	}
}

func TestResolve_ExpiredSessionIsDestroyed(t *testing.T) {
	store := newStubSessionStore()
	svc := newService(store, &stubBackend{})

	sess := &domain.Session{ID: "s1", User: adminUser(), Checked: true, ExpiresAt: time.Now().Add(-time.Minute)}
	store.sessions["s1"] = sess

	if _, err := svc.Resolve(context.Background(), "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, ok := store.sessions["s1"]; ok {
		t.Fatalf("expired session must be deleted")
	}
}

func TestResolve_StaleIdentityIsRechecked(t *testing.T) {
	store := newStubSessionStore()
	backend := &stubBackend{meUser: adminUser()}
	svc := newService(store, backend)

	sess := &domain.Session{
		ID:          "s1",
		User:        adminUser(),
		Checked:     true,
		RefreshedAt: time.Now().Add(-time.Hour),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	store.sessions["s1"] = sess

	resolved, err := svc.Resolve(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if backend.meCalls != 1 {
		t.Fatalf("stale identity must be re-checked, got %d calls", backend.meCalls)
	}
	if !resolved.Authenticated() {
		t.Fatalf("expected authenticated session")
	}
}

func TestResolve_BackendNoLongerRecognisesSession(t *testing.T) {
	store := newStubSessionStore()
	backend := &stubBackend{meUser: nil} // backend answers, no session
	svc := newService(store, backend)

	sess := &domain.Session{
		ID:          "s1",
		User:        adminUser(),
		Checked:     true,
		RefreshedAt: time.Now().Add(-time.Hour),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	store.sessions["s1"] = sess

	if _, err := svc.Resolve(context.Background(), "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, ok := store.sessions["s1"]; ok {
		t.Fatalf("session the backend no longer recognises must be destroyed")
	}
}
