package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/murmur/internal/auth"
	"github.com/MrSnakeDoc/murmur/internal/domain"
	"github.com/MrSnakeDoc/murmur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/murmur/internal/httpserver/routes"
	"github.com/MrSnakeDoc/murmur/internal/logger"
	"github.com/MrSnakeDoc/murmur/internal/ratelimit"
	sqlitestore "github.com/MrSnakeDoc/murmur/internal/store/sqlite"
)

type tokenResolver map[string]string

func (tr tokenResolver) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	if id, ok := tr[token]; ok {
		return &auth.Identity{ID: id}, nil
	}
	return nil, nil
}

type option func(*deps.Deps)

func withPostLimit(limit int, window time.Duration) option {
	return func(d *deps.Deps) {
		d.PostLimiter = ratelimit.New(ratelimit.Config{Limit: limit, Window: window})
	}
}

func withReloadTrigger(ch chan struct{}) option {
	return func(d *deps.Deps) { d.PolicyReloadTrigger = ch }
}

// newTestServer wires the full route registry the way server.New does,
// minus the outer HTTP listener.
func newTestServer(t *testing.T, opts ...option) *httptest.Server {
	t.Helper()

	store, err := sqlitestore.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	policy := domain.NewContentPolicy(nil)

	d := deps.Deps{
		Logger:       logger.New("error", false),
		StartTime:    time.Now(),
		Thoughts:     domain.NewThoughtService(store, policy, 100, nil),
		Policy:       policy,
		Resolver:     tokenResolver{"alice-token": "alice", "bob-token": "bob"},
		PostLimiter:  ratelimit.New(ratelimit.Config{Limit: 1000, Window: time.Minute}),
		ListLimiter:  ratelimit.New(ratelimit.Config{Limit: 1000, Window: time.Minute}),
		Store:        store,
		MaxBodyBytes: 64 << 10,
	}
	for _, opt := range opts {
		opt(&d)
	}

	r := chi.NewRouter()
	routes.RegisterAll(r, d)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeList(t *testing.T, resp *http.Response) []domain.Thought {
	t.Helper()
	var out []domain.Thought
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	return out
}

func TestJournalEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	// Alice posts a private thought, bob and an anonymous caller post public ones.
	seeds := []struct {
		body  string
		token string
	}{
		{`{"content":"alice private","is_public":false,"mood":"Reflective"}`, "alice-token"},
		{`{"content":"bob public","is_public":true,"mood":"Happy"}`, "bob-token"},
		{`{"content":"anonymous public","is_public":true}`, ""},
	}
	for _, s := range seeds {
		resp := do(t, srv, http.MethodPost, "/thoughts", s.body, s.token)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("POST /thoughts status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	}

	// Public feed: newest first, private entries excluded.
	resp := do(t, srv, http.MethodGet, "/thoughts", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /thoughts status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	feed := decodeList(t, resp)
	if len(feed) != 2 {
		t.Fatalf("public feed has %d entries, want 2", len(feed))
	}
	if feed[0].Content != "anonymous public" || feed[1].Content != "bob public" {
		t.Errorf("feed order = [%q, %q], want newest first", feed[0].Content, feed[1].Content)
	}

	// The feed never exposes author identifiers for other callers' entries.
	for _, th := range feed {
		if th.Content == "anonymous public" && th.AuthorID != "" {
			t.Errorf("anonymous entry carries authorId %q", th.AuthorID)
		}
	}

	// Mood filter narrows the feed.
	resp = do(t, srv, http.MethodGet, "/thoughts?mood=Happy", "", "")
	if got := decodeList(t, resp); len(got) != 1 || got[0].Content != "bob public" {
		t.Errorf("mood=Happy feed = %+v, want only bob's entry", got)
	}

	// scope=me returns alice's private entry and nothing else.
	resp = do(t, srv, http.MethodGet, "/thoughts?scope=me", "", "alice-token")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET scope=me status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	mine := decodeList(t, resp)
	if len(mine) != 1 || mine[0].Content != "alice private" {
		t.Fatalf("scope=me = %+v, want only alice's entry", mine)
	}

	// scope=me without a resolvable token is rejected.
	resp = do(t, srv, http.MethodGet, "/thoughts?scope=me", "", "stale-token")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET scope=me with unknown token status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestPostRateLimitEnforced(t *testing.T) {
	srv := newTestServer(t, withPostLimit(3, time.Minute))

	for i := 1; i <= 3; i++ {
		resp := do(t, srv, http.MethodPost, "/thoughts", fmt.Sprintf(`{"content":"n%d","is_public":true}`, i), "")
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("request %d status = %d, want %d", i, resp.StatusCode, http.StatusCreated)
		}
		if got := resp.Header.Get("X-RateLimit-Limit"); got != "3" {
			t.Errorf("X-RateLimit-Limit = %q, want %q", got, "3")
		}
	}

	resp := do(t, srv, http.MethodPost, "/thoughts", `{"content":"over","is_public":true}`, "")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
	if got := resp.Header.Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want %q", got, "0")
	}

	var envelope struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding 429 body: %v", err)
	}
	if envelope.Error.Type != "rate_limit_error" {
		t.Errorf("error type = %q, want %q", envelope.Error.Type, "rate_limit_error")
	}

	// Reads stay unaffected by the write limiter.
	if resp := do(t, srv, http.MethodGet, "/thoughts", "", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("GET /thoughts status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	trigger := make(chan struct{}, 1)
	srv := newTestServer(t, withReloadTrigger(trigger))

	resp := do(t, srv, http.MethodGet, "/healthz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	resp = do(t, srv, http.MethodGet, "/readyz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /readyz status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	resp = do(t, srv, http.MethodGet, "/infra", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /infra status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var infra struct {
		Mode       string                     `json:"mode"`
		Components map[string]json.RawMessage `json:"components"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&infra); err != nil {
		t.Fatalf("decoding /infra body: %v", err)
	}
	if infra.Mode != "nominal" {
		t.Errorf("infra mode = %q, want %q", infra.Mode, "nominal")
	}
	for _, name := range []string{"database", "identity_cache", "content_policy", "rate_limiters"} {
		if _, ok := infra.Components[name]; !ok {
			t.Errorf("/infra missing component %q", name)
		}
	}

	resp = do(t, srv, http.MethodPost, "/reload", "", "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("POST /reload status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}
	select {
	case <-trigger:
	case <-time.After(time.Second):
		t.Fatal("reload trigger never fired")
	}

	// A reload still pending means the next trigger is refused.
	trigger <- struct{}{}
	resp = do(t, srv, http.MethodPost, "/reload", "", "")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("POST /reload while pending status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
}

func TestReloadWithoutPolicyFile(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/reload", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("POST /reload status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
