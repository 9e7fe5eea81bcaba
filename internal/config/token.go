package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the token is valid, but expired.
	ErrTokenExpired = errors.New("token expired")

	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload of an auth token, the subject is the user ID.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken returns a signed token for the given user, valid for d.
func (c *Config) IssueToken(userID, name string, d time.Duration) (string, error) {
	key, err := c.signingKey()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// CheckToken ensures the given token is properly signed and not expired.
func (c *Config) CheckToken(str string) (Claims, error) {
	key, err := c.signingKey()
	if err != nil {
		return Claims{}, err
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(str, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})

	// Keep this first, this error must be returned _only_ if the token is valid.
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Claims{}, ErrTokenExpired
	}
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return claims, nil
}

func (c *Config) signingKey() ([]byte, error) {
	if len(c.TokenKey) < 32 {
		return nil, errors.New("token key must be ≥ 32 chars")
	}

	return []byte(c.TokenKey), nil
}
