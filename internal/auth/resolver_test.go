package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", ""},
		{"bearer token", "Bearer abc123", "abc123"},
		{"bearer with trailing space", "Bearer abc123  ", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"missing scheme", "abc123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(r); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenDigest(t *testing.T) {
	a := TokenDigest("token-a")
	b := TokenDigest("token-b")

	if a == b {
		t.Error("digests for distinct tokens collide")
	}
	if a != TokenDigest("token-a") {
		t.Error("digest is not stable for the same token")
	}
	if a == "token-a" {
		t.Error("digest leaks the raw token")
	}
}

func TestHTTPResolverResolvesValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			t.Errorf("path = %q, want /userinfo", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"user-42"}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, time.Second)

	id, err := r.Resolve(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id == nil || id.ID != "user-42" {
		t.Fatalf("Resolve() = %v, want identity user-42", id)
	}
}

func TestHTTPResolverInvalidTokenIsAnonymousNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, time.Second)

	id, err := r.Resolve(context.Background(), "expired-token")
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil for rejected token", err)
	}
	if id != nil {
		t.Fatalf("Resolve() = %v, want nil identity", id)
	}
}

func TestHTTPResolverServerFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, time.Second)

	if _, err := r.Resolve(context.Background(), "any"); err == nil {
		t.Fatal("Resolve() error = nil, want error for auth service failure")
	}
}

func TestHTTPResolverRejectsEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, time.Second)

	if _, err := r.Resolve(context.Background(), "any"); err == nil {
		t.Fatal("Resolve() error = nil, want error for response without id")
	}
}

func TestDisabledResolverIsAlwaysAnonymous(t *testing.T) {
	id, err := Disabled{}.Resolve(context.Background(), "whatever")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id != nil {
		t.Fatalf("Resolve() = %v, want nil", id)
	}
}
