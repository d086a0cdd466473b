package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vietour/admin-gateway/internal/core/domain"
	"github.com/vietour/admin-gateway/internal/core/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "", time.Second, zerolog.Nop())
}

func TestPrimeCSRF_CollectsCookies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sanctum/csrf-cookie" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
		http.SetCookie(w, &http.Cookie{Name: "backend_session", Value: "xyz"})
		w.WriteHeader(http.StatusNoContent)
	})

	cookies, err := client.PrimeCSRF(context.Background())
	if err != nil {
		t.Fatalf("PrimeCSRF: %v", err)
	}
	if cookies.Get("XSRF-TOKEN") != "abc" || cookies.Get("backend_session") != "xyz" {
		t.Fatalf("cookies not collected: %+v", cookies)
	}
}

func TestPrimeCSRF_UsesHostRootNotAPIPrefix(t *testing.T) {
	var gotPrime, gotLogin string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sanctum/csrf-cookie"):
			gotPrime = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/login"):
			gotLogin = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"user":{"id":1,"full_name":"Alice","role":"admin"}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)

	// The API lives under a prefix; priming must fall back to the origin.
	client := New(srv.URL+"/api", "", time.Second, zerolog.Nop())

	if _, err := client.PrimeCSRF(context.Background()); err != nil {
		t.Fatalf("PrimeCSRF: %v", err)
	}
	if gotPrime != "/sanctum/csrf-cookie" {
		t.Fatalf("priming hit %q, want the host root endpoint", gotPrime)
	}

	if _, _, err := client.Login(context.Background(), ports.Credentials{Login: "a", Password: "b"}, nil); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if gotLogin != "/api/login" {
		t.Fatalf("login hit %q, want the prefixed endpoint", gotLogin)
	}
}

func TestPrimeCSRF_ExplicitRootOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/backend/sanctum/csrf-cookie" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL+"/api", srv.URL+"/backend", time.Second, zerolog.Nop())
	if _, err := client.PrimeCSRF(context.Background()); err != nil {
		t.Fatalf("PrimeCSRF: %v", err)
	}
}

func TestLogin_SendsDecodedAntiForgeryHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The cookie value is URL-encoded; the header must carry the decoded form.
		if got := r.Header.Get("X-XSRF-TOKEN"); got != "token=value" {
			t.Fatalf("X-XSRF-TOKEN = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":1,"full_name":"Alice","email":"a@example.com","role":"admin"}}`))
	})

	cookies := domain.CookieSet{{Name: "XSRF-TOKEN", Value: url.QueryEscape("token=value")}}
	user, merged, err := client.Login(context.Background(), ports.Credentials{Login: "a@example.com", Password: "pw"}, cookies)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.FullName != "Alice" || user.Role != "admin" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if merged.Get("XSRF-TOKEN") == "" {
		t.Fatalf("priming cookies must survive the merge")
	}
}

func TestLogin_ValidationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"The login field is required.","errors":{"login":["The login field is required."]}}`))
	})

	_, _, err := client.Login(context.Background(), ports.Credentials{}, nil)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Message != "The login field is required." || len(ve.Fields["login"]) != 1 {
		t.Fatalf("server validation payload not relayed: %+v", ve)
	}
}

func TestLogin_DeniedWithServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"These credentials do not match our records."}`))
	})

	_, _, err := client.Login(context.Background(), ports.Credentials{Login: "x", Password: "y"}, nil)
	var de *domain.DeniedError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeniedError, got %v", err)
	}
	if de.Status != http.StatusUnauthorized || de.Message != "These credentials do not match our records." {
		t.Fatalf("server message not relayed: %+v", de)
	}
}

func TestMe_RecognisedSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if c, err := r.Cookie("backend_session"); err != nil || c.Value != "xyz" {
			t.Fatalf("session cookie not replayed")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":2,"full_name":"Bob","role":"staff"}}`))
	})

	user, err := client.Me(context.Background(), domain.CookieSet{{Name: "backend_session", Value: "xyz"}})
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if user == nil || user.FullName != "Bob" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestMe_NonOKMeansNoSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError, http.StatusNotFound} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		user, err := client.Me(context.Background(), nil)
		if err != nil {
			t.Fatalf("status %d: no error expected, got %v", status, err)
		}
		if user != nil {
			t.Fatalf("status %d: expected no user", status)
		}
	}
}

func TestMe_MalformedBodyMeansNoSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{{{not json`))
	})

	user, err := client.Me(context.Background(), nil)
	if err != nil || user != nil {
		t.Fatalf("malformed body must read as no session, got user=%v err=%v", user, err)
	}
}

func TestMe_TransportFailureIsAnError(t *testing.T) {
	client := New("http://127.0.0.1:1", "", 200*time.Millisecond, zerolog.Nop())

	_, err := client.Me(context.Background(), nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestForward_RelaysResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tours/12" || r.URL.RawQuery != "page=2" {
			t.Fatalf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	res, err := client.Forward(context.Background(), ports.ForwardRequest{
		Method: http.MethodGet,
		Path:   "/tours/12",
		Query:  url.Values{"page": {"2"}},
	})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if res.Status != http.StatusCreated || string(res.Body) != `{"ok":true}` {
		t.Fatalf("response not relayed: %d %s", res.Status, res.Body)
	}
}

func TestPath2Label_CollapsesNumericSegments(t *testing.T) {
	cases := map[string]string{
		"/tours/12":            "/tours/:id",
		"/tours":               "/tours",
		"/user/delete/7?x=1":   "/user/delete/:id",
		"/destinations/3/edit": "/destinations/:id/edit",
	}
	for in, want := range cases {
		if got := path2label(in); got != want {
			t.Fatalf("path2label(%q) = %q, want %q", in, got, want)
		}
	}
}
