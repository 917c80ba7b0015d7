// Package keybackend holds static bearer tokens and the owners they authenticate.
package keybackend

import (
	"crypto/sha256"
	"crypto/subtle"
)

// MapTokenStore resolves tokens from an in-memory table. Tokens are kept as SHA-256 digests
// and compared in constant time.
type MapTokenStore struct {
	owners map[[sha256.Size]byte]string
}

// NewMapTokenStore creates a store from a token to owner id mapping.
func NewMapTokenStore(tokens map[string]string) *MapTokenStore {
	owners := make(map[[sha256.Size]byte]string, len(tokens))
	for tok, owner := range tokens {
		owners[sha256.Sum256([]byte(tok))] = owner
	}
	return &MapTokenStore{owners: owners}
}

// Lookup returns the owner id a token belongs to.
func (s *MapTokenStore) Lookup(token string) (string, error) {
	digest := sha256.Sum256([]byte(token))
	for d, owner := range s.owners {
		if subtle.ConstantTimeCompare(d[:], digest[:]) == 1 {
			return owner, nil
		}
	}
	return "", ErrTokenNotFound
}

// Len reports how many tokens are loaded.
func (s *MapTokenStore) Len() int {
	return len(s.owners)
}
