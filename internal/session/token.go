package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"nutrivision-go/internal/apperr"
)

// TokenCodec signs session ids into HS256 bearer tokens. Tokens carry no
// expiry; the server-side session decides whether they are still good.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret}
}

func (c *TokenCodec) Encode(sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:       sessionID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})
	s, err := token.SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}
	return s, nil
}

// Decode returns the session id, or apperr.ErrUnauthenticated for any
// malformed, tampered or foreign token.
func (c *TokenCodec) Decode(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return "", apperr.ErrUnauthenticated
	}
	return claims.ID, nil
}
