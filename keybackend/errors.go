package keybackend

import (
	"fmt"

	"github.com/sagarc03/quire"
)

// ErrTokenNotFound is returned when a bearer token is not in the store.
// It matches quire.ErrUnauthenticated under errors.Is.
var ErrTokenNotFound = fmt.Errorf("token not found: %w", quire.ErrUnauthenticated)
