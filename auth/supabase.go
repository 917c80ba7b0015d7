package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/internal/supaclient"
)

// SupabaseVerifier asks Supabase Auth who a token belongs to. Use it when tokens are
// opaque to quire or must be checked against revocation.
type SupabaseVerifier struct {
	client *supaclient.Lazy
}

func NewSupabaseVerifier(client *supaclient.Lazy) *SupabaseVerifier {
	return &SupabaseVerifier{client: client}
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c, err := v.client.Client()
	if err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}

	user, err := c.Auth.WithToken(token).GetUser()
	if err != nil {
		// the client reports rejected tokens as "response status code 4xx: ..."
		if strings.HasPrefix(err.Error(), "response status code 4") {
			return "", fmt.Errorf("%w: %w", quire.ErrUnauthenticated, err)
		}
		return "", fmt.Errorf("verify token: %w", err)
	}

	if user.ID == uuid.Nil {
		return "", fmt.Errorf("%w: token has no user", quire.ErrUnauthenticated)
	}

	return user.ID.String(), nil
}
