// Package jwtauth issues and verifies the bearer tokens identifying players
// of the standalone server.
package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ErrInvalidToken is returned for tokens that fail signature, issuer or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Authority signs HS256 access tokens whose subject is the username.
type Authority struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// New returns an Authority. A non-positive ttl issues tokens valid for one day.
func New(secret, issuer string, ttl time.Duration) (*Authority, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authority{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs an access token for username.
func (a *Authority) Issue(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	now := a.now()
	claims := jwt.MapClaims{
		"iss": a.issuer,
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(a.ttl).Unix(),
		"typ": "access",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Username verifies raw and returns the username it was issued for.
func (a *Authority) Username(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if !claims.VerifyIssuer(a.issuer, a.issuer != "") {
		return "", fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return sub, nil
}
