// Package auth turns a bearer credential into the owner id every record operation is scoped by.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/sagarc03/quire"
)

// Verifier resolves a bearer token to an owner id. Any failure to prove identity is
// reported as quire.ErrUnauthenticated; other errors mean the verifier itself is unavailable.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: missing bearer token", quire.ErrUnauthenticated)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: empty bearer token", quire.ErrUnauthenticated)
	}

	return token, nil
}

type ctxKey struct{}

// WithOwner stores the verified owner id in ctx.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ownerID)
}

// OwnerFromContext returns the owner id stored by WithOwner, or "" if there is none.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ctxKey{}).(string)
	return owner
}
