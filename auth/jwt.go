package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sagarc03/quire"
)

// JWTConfig configures local token verification.
type JWTConfig struct {
	SigningMethod string   `mapstructure:"signing_method" validate:"omitempty,oneof=HS256 RS256"`
	Secret        string   `mapstructure:"secret"`
	PublicKey     string   `mapstructure:"public_key"`
	Issuer        string   `mapstructure:"issuer"`
	Audience      []string `mapstructure:"audience"`
}

// Claims are the token claims quire reads. The subject is the owner id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier checks signed tokens locally, without calling an identity service.
type JWTVerifier struct {
	method    jwt.SigningMethod
	secret    []byte
	publicKey *rsa.PublicKey
	issuer    string
	audience  []string
}

func NewJWTVerifier(cfg JWTConfig) (*JWTVerifier, error) {
	v := &JWTVerifier{issuer: cfg.Issuer, audience: cfg.Audience}

	switch cfg.SigningMethod {
	case "", "HS256":
		if cfg.Secret == "" {
			return nil, errors.New("jwt verifier: secret required for HS256")
		}
		v.method = jwt.SigningMethodHS256
		v.secret = []byte(cfg.Secret)
	case "RS256":
		if cfg.PublicKey == "" {
			return nil, errors.New("jwt verifier: public key required for RS256")
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("jwt verifier: parse public key: %w", err)
		}
		v.method = jwt.SigningMethodRS256
		v.publicKey = key
	default:
		return nil, fmt.Errorf("jwt verifier: unsupported signing method: %s", cfg.SigningMethod)
	}

	return v, nil
}

func (v *JWTVerifier) key(*jwt.Token) (any, error) {
	if v.publicKey != nil {
		return v.publicKey, nil
	}
	return v.secret, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{v.method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(token, &claims, v.key, opts...); err != nil {
		return "", fmt.Errorf("%w: %w", quire.ErrUnauthenticated, err)
	}

	if len(v.audience) > 0 && !slices.ContainsFunc(v.audience, func(a string) bool { return slices.Contains(claims.Audience, a) }) {
		return "", fmt.Errorf("%w: invalid audience", quire.ErrUnauthenticated)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", quire.ErrUnauthenticated)
	}

	return claims.Subject, nil
}
