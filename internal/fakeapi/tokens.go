package fakeapi

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"docrepo/internal/domain"
)

// DefaultTokenTTL is the access token lifetime.
const DefaultTokenTTL = 60 * time.Minute

// Claims is the access token payload. The display fields mirror what the
// client decodes for its session summary.
type Claims struct {
	jwt.RegisteredClaims
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	DepartmentID   *int64  `json:"department_id"`
	DepartmentName *string `json:"department_name"`
}

// TokenIssuer signs and validates HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. A zero ttl uses DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue signs a token for u.
func (t *TokenIssuer) Issue(u *domain.User) (string, error) {
	now := t.now()
	role := domain.RoleEmployee
	if u.Role != nil && *u.Role != "" {
		role = *u.Role
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			ID:        uuid.New().String(),
		},
		Name:           u.Name,
		Email:          u.Email,
		Role:           role,
		DepartmentID:   u.DepartmentID,
		DepartmentName: u.DepartmentName,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// UserID validates the token and returns its subject.
func (t *TokenIssuer) UserID(token string) (int64, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return 0, fmt.Errorf("parsing token: %w", err)
	}
	if !parsed.Valid {
		return 0, ErrUnauthorized
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token subject %q: %w", claims.Subject, ErrUnauthorized)
	}
	return id, nil
}
