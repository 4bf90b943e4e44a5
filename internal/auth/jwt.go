// Package auth is the authentication collaborator for the guarded surface.
// It verifies bearer tokens and places the resulting principal in the
// request context. Everything downstream (role gating, org scoping,
// auditing) consumes the principal and never touches credentials.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskplane/taskplane/internal/models"
)

const issuer = "taskplane"

// Claims are the JWT claims carried by an access token: the user id in the
// subject plus role and organization.
type Claims struct {
	Role  string `json:"role"`
	OrgID string `json:"org_id"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier issues and verifies HS256 access tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the given signing secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// IssueToken creates a signed access token for the given principal.
func (v *Verifier) IssueToken(p models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role:  string(p.Role),
		OrgID: p.OrgID.String(),
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// VerifyToken verifies a token string and converts its claims into a
// principal. Any failure (bad signature, expiry, malformed ids, unknown
// role) rejects the token.
func (v *Verifier) VerifyToken(tokenString string) (*models.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	orgID, err := uuid.Parse(claims.OrgID)
	if err != nil {
		return nil, fmt.Errorf("invalid org_id: %w", err)
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}

	return &models.Principal{
		UserID: userID,
		Email:  claims.Email,
		Role:   role,
		OrgID:  orgID,
	}, nil
}
