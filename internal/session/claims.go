package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned by Inspect for an empty token.
var ErrNoSession = errors.New("not signed in")

// Claims is the display information carried by a session token. It is read
// without verifying the signature and must never drive an authorization
// decision; the server re-checks every request.
type Claims struct {
	Subject        string
	Name           string
	Email          string
	Role           string
	DepartmentID   *int64
	DepartmentName string
	ExpiresAt      time.Time
}

// Expired reports whether the token's exp claim is before now. Tokens
// without exp never expire client-side.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect decodes the token's claims without verifying it.
func Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("decoding session token: %w", err)
	}

	c := &Claims{
		Name:           stringClaim(mc, "name"),
		Email:          stringClaim(mc, "email"),
		Role:           stringClaim(mc, "role"),
		DepartmentName: stringClaim(mc, "department_name"),
	}
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if v, ok := mc["department_id"].(float64); ok {
		id := int64(v)
		c.DepartmentID = &id
	}
	return c, nil
}

func stringClaim(mc jwt.MapClaims, key string) string {
	s, _ := mc[key].(string)
	return s
}
