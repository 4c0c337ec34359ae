// Package auth signs and verifies the bearer tokens that guard the API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail verification
var ErrInvalidToken = errors.New("invalid token")

// TokenService signs and validates HS256 tokens with a shared secret
type TokenService struct {
	secretKey []byte
	tokenTTL  time.Duration
}

// NewTokenService creates a TokenService with the given secret key and token TTL
func NewTokenService(secretKey string, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}
}

// GenerateToken signs a token for subject, optionally limited to resources.
// An empty resource list grants every resource.
func (s *TokenService) GenerateToken(subject string, resources []string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	if len(resources) > 0 {
		claims["resources"] = resources
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Claims are the verified contents of a token
type Claims struct {
	Subject   string
	Resources []string
}

// Allows reports whether the claims grant access to resource
func (c Claims) Allows(resource string) bool {
	if len(c.Resources) == 0 {
		return true
	}
	for _, r := range c.Resources {
		if r == resource {
			return true
		}
	}
	return false
}

// ValidateToken verifies the signature and expiry of tokenString
func (s *TokenService) ValidateToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	subject, err := mapClaims.GetSubject()
	if err != nil || subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	claims := Claims{Subject: subject}
	if raw, ok := mapClaims["resources"].([]interface{}); ok {
		for _, r := range raw {
			if name, ok := r.(string); ok {
				claims.Resources = append(claims.Resources, name)
			}
		}
	}
	return claims, nil
}
