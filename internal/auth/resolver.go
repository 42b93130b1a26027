// Package auth resolves bearer credentials to caller identities.
//
// Resolution is a capability injected into the HTTP layer: handlers never
// talk to the auth service directly, which keeps them testable with a fake
// resolver. An unresolvable token is not an error for submissions; the
// request degrades to anonymous attribution.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Identity is a resolved caller.
type Identity struct {
	ID string `json:"id"`
}

// Resolver turns a bearer token into an identity.
// (nil, nil) means the token did not resolve; a non-nil error means the
// resolution attempt itself failed (network, timeout, malformed response).
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// BearerToken extracts the bearer token from a request, or "" if absent.
func BearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// TokenDigest returns a stable digest of token for use as a cache key.
// The raw token never leaves the process.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Disabled is a Resolver that never resolves anyone. Used when no auth
// service is configured; every request is then anonymous.
type Disabled struct{}

func (Disabled) Resolve(ctx context.Context, token string) (*Identity, error) {
	return nil, nil
}

// HTTPResolver resolves tokens against an external auth service's
// userinfo endpoint.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver builds a resolver for the auth service at baseURL.
// timeout bounds each resolution call.
func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("building userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling auth service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var id Identity
		if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
			return nil, fmt.Errorf("decoding userinfo response: %w", err)
		}
		if id.ID == "" {
			return nil, fmt.Errorf("userinfo response missing id")
		}
		return &id, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Invalid or expired token: not an error, just anonymous.
		return nil, nil
	default:
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}
}
