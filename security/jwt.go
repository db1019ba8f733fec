package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("token invalid")

// MakeAuthToken issues the session cookie token for a logged in user
func MakeAuthToken(userID, secret string, ttl time.Duration) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"type":    "auth",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return t.SignedString([]byte(secret))
}

// MakePendingToken issues the short lived cookie that carries the
// email address currently going through a verification or password
// reset flow. The purpose is baked into the token so a verification
// cookie can't be replayed against the reset endpoints.
func MakePendingToken(email, purpose, secret string, ttl time.Duration) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   email,
		"type":    "pending",
		"purpose": purpose,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return t.SignedString([]byte(secret))
}

func parseToken(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// UserIDFromAuthToken validates an auth token and extracts the user ID
func UserIDFromAuthToken(tokenStr, secret string) (string, error) {
	claims, err := parseToken(tokenStr, secret)
	if err != nil {
		return "", err
	}

	if typ, _ := claims["type"].(string); typ != "auth" {
		return "", ErrTokenInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrTokenInvalid
	}

	return userID, nil
}

// EmailFromPendingToken validates a pending token and extracts the
// email, rejecting tokens issued for a different purpose
func EmailFromPendingToken(tokenStr, purpose, secret string) (string, error) {
	claims, err := parseToken(tokenStr, secret)
	if err != nil {
		return "", err
	}

	if typ, _ := claims["type"].(string); typ != "pending" {
		return "", ErrTokenInvalid
	}

	if p, _ := claims["purpose"].(string); p != purpose {
		return "", ErrTokenInvalid
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrTokenInvalid
	}

	return email, nil
}
