package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rpupo63/builders-showcase-backend/config"
	"github.com/rpupo63/builders-showcase-backend/errs"
)

// IdentityProvider resolves a session token issued by the external identity
// provider to the provider's user id. Sign-in itself happens elsewhere.
type IdentityProvider interface {
	UserID(ctx context.Context, token string) (string, error)
}

// JWTIdentityProvider verifies the provider's session JWTs locally, either
// with a shared HMAC secret or with the provider's RSA public key.
type JWTIdentityProvider struct {
	keyFunc jwt.Keyfunc
	methods []string
	issuer  string
}

// NewJWTIdentityProvider reads AUTH_JWT_PUBLIC_KEY (PEM, RS256) or
// AUTH_JWT_SECRET (HS256), and optionally AUTH_JWT_ISSUER.
func NewJWTIdentityProvider(cfg map[string]string) (*JWTIdentityProvider, error) {
	issuer := config.GetString(cfg, "AUTH_JWT_ISSUER", "")

	if pem := config.GetString(cfg, "AUTH_JWT_PUBLIC_KEY", ""); pem != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(strings.ReplaceAll(pem, `\n`, "\n")))
		if err != nil {
			return nil, fmt.Errorf("parse AUTH_JWT_PUBLIC_KEY: %w", err)
		}
		return &JWTIdentityProvider{
			keyFunc: func(*jwt.Token) (interface{}, error) { return key, nil },
			methods: []string{jwt.SigningMethodRS256.Alg()},
			issuer:  issuer,
		}, nil
	}

	if secret := config.GetString(cfg, "AUTH_JWT_SECRET", ""); secret != "" {
		return NewHMACIdentityProvider([]byte(secret), issuer), nil
	}

	return nil, errors.New("either AUTH_JWT_PUBLIC_KEY or AUTH_JWT_SECRET must be set")
}

func NewHMACIdentityProvider(secret []byte, issuer string) *JWTIdentityProvider {
	return &JWTIdentityProvider{
		keyFunc: func(*jwt.Token) (interface{}, error) { return secret, nil },
		methods: []string{jwt.SigningMethodHS256.Alg()},
		issuer:  issuer,
	}
}

// UserID returns the subject of a valid, unexpired token.
func (p *JWTIdentityProvider) UserID(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", errs.NewMissingTokenError()
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(p.methods),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, p.keyFunc, opts...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errs.NewExpiredTokenError()
		}
		return "", errs.NewInvalidTokenError(err)
	}

	if claims.Subject == "" {
		return "", errs.NewInvalidTokenError(errors.New("token has no subject"))
	}
	return claims.Subject, nil
}
