package http

import (
	"net/http"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/auth"
)

// AuthMiddleware resolves the bearer token to an owner id and stores it on the request
// context. A nil verifier rejects every request.
func AuthMiddleware(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				HandleError(w, r, quire.ErrUnauthenticated)
				return
			}

			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				HandleError(w, r, err)
				return
			}

			owner, err := verifier.Verify(r.Context(), token)
			if err != nil {
				HandleError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), owner)))
		})
	}
}
