// Package auth holds the request-scoped identity and the pure role checks
// the HTTP layer applies to it.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

// Principal is the authenticated caller of one request.
type Principal struct {
	UserID   uint
	Username string
	Role     string
}

func (p Principal) IsDoctor() bool { return p.Role == models.RoleDoctor }

// Allows reports whether p holds one of roles.
func Allows(p Principal, roles ...string) bool {
	return slices.Contains(roles, p.Role)
}

func ValidRole(role string) bool {
	return Allows(Principal{Role: role}, models.RoleDoctor, models.RoleFrontDesk, models.RoleAdmin)
}

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Username string `json:"usr"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

func (i *TokenIssuer) Issue(user *models.User, now time.Time) (string, error) {
	c := claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(i.secret)
}

func (i *TokenIssuer) Parse(raw string) (Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	var id uint
	if _, err := fmt.Sscan(c.Subject, &id); err != nil || id == 0 {
		return Principal{}, ErrInvalidToken
	}
	if !ValidRole(c.Role) {
		return Principal{}, ErrInvalidToken
	}

	return Principal{UserID: id, Username: c.Username, Role: c.Role}, nil
}
