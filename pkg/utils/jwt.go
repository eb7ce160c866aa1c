package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the identity proven by a bearer token. Roles are never read
// from a token; they are looked up by email on every request.
type TokenClaims struct {
	Email string
	Name  string
}

var ErrInvalidToken = errors.New("invalid token")

func GenerateToken(email, name, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email": strings.ToLower(email),
		"name":  name,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// JWTVerifier validates HS256 tokens issued by GenerateToken.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, raw string) (TokenClaims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return TokenClaims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}
	if _, hasExp := claims["exp"]; !hasExp {
		return TokenClaims{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return TokenClaims{}, ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	return TokenClaims{Email: email, Name: name}, nil
}
