package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/greentech-platform/api/internal/config"
	"github.com/greentech-platform/api/internal/domain"
)

// Claims holds the JWT payload. The subject registered claim carries the
// user id; nothing else is embedded, so tokens stay fully stateless.
type Claims struct {
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a process-wide shared secret.
// Access and refresh tokens are two independent signing operations with
// different TTLs, never derived from one another.
type Provider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not configured")
	}
	return &Provider{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}, nil
}

// SignAccess mints a short-lived access token for the given user id.
func (p *Provider) SignAccess(userID string) (string, error) {
	return p.sign(userID, p.accessTTL)
}

// SignRefresh mints a long-lived refresh token for the given user id.
func (p *Provider) SignRefresh(userID string) (string, error) {
	return p.sign(userID, p.refreshTTL)
}

func (p *Provider) sign(subject string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Parse verifies the signature and expiry of a presented token and returns
// its claims. Expiration is checked against the current time on every call,
// never cached from an earlier parse.
func (p *Provider) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, classify(err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrMalformedToken
	}
	return claims, nil
}

// ParseSubject verifies the token and returns its subject (the user ID).
func (p *Provider) ParseSubject(tokenStr string) (string, error) {
	claims, err := p.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsValid is the non-throwing boolean form of Parse.
func (p *Provider) IsValid(tokenStr string) bool {
	_, err := p.Parse(tokenStr)
	return err == nil
}

// IsValidFor additionally requires the token's subject to equal the expected
// one, rejecting a token re-presented for a different identity.
func (p *Provider) IsValidFor(tokenStr, subject string) bool {
	claims, err := p.Parse(tokenStr)
	return err == nil && claims.Subject == subject
}

// classify maps jwt library failures onto the domain token taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
}
