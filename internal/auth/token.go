// Package auth verifies viewer identity tokens for the governance read
// path. Tokens are minted by the external auth service and verified here
// with a shared HS256 secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opspulse/workmon/internal/domain"
)

// Claims is the token payload carrying the viewer's org placement.
type Claims struct {
	Role           string `json:"role"`
	DepartmentID   string `json:"departmentId,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
	jwt.RegisteredClaims
}

// ErrEmptySecret rejects verifier construction without a signing secret.
var ErrEmptySecret = errors.New("token secret must not be empty")

// Verifier validates tokens and maps claims onto a domain requester.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the shared secret.
func NewVerifier(secret []byte) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &Verifier{secret: secret}, nil
}

// ParseRequester verifies the token signature and expiry and returns the
// viewer identity. Unknown roles and missing subjects are rejected.
func (v *Verifier) ParseRequester(tokenString string) (domain.Requester, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return domain.Requester{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return domain.Requester{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return domain.Requester{}, errors.New("token missing subject")
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.Requester{}, fmt.Errorf("unknown role %q", claims.Role)
	}

	return domain.Requester{
		ID:             claims.Subject,
		Role:           role,
		DepartmentID:   claims.DepartmentID,
		OrganizationID: claims.OrganizationID,
	}, nil
}

// Mint issues a signed token for a requester. Used by ops tooling and
// tests; production tokens come from the auth service.
func (v *Verifier) Mint(req domain.Requester, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:           string(req.Role),
		DepartmentID:   req.DepartmentID,
		OrganizationID: req.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
