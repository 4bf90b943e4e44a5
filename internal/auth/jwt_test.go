package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taskplane/taskplane/internal/models"
)

var testSecret = []byte("test-secret-test-secret-test-sec")

func testPrincipal() models.Principal {
	return models.Principal{
		UserID: uuid.Must(uuid.NewV7()),
		Email:  "admin@test",
		Role:   models.RoleAdmin,
		OrgID:  uuid.Must(uuid.NewV7()),
	}
}

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret)
	p := testPrincipal()

	tokenString, err := v.IssueToken(p, time.Hour)
	require.NoError(t, err)

	got, err := v.VerifyToken(tokenString)
	require.NoError(t, err)
	require.Equal(t, p.UserID, got.UserID)
	require.Equal(t, p.Email, got.Email)
	require.Equal(t, p.Role, got.Role)
	require.Equal(t, p.OrgID, got.OrgID)
}

func TestVerifier_ExpiredToken(t *testing.T) {
	v := NewVerifier(testSecret)

	tokenString, err := v.IssueToken(testPrincipal(), -time.Minute)
	require.NoError(t, err)

	_, err = v.VerifyToken(tokenString)
	require.Error(t, err)
}

func TestVerifier_WrongSecret(t *testing.T) {
	issuerVerifier := NewVerifier(testSecret)

	tokenString, err := issuerVerifier.IssueToken(testPrincipal(), time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier([]byte("another-secret-another-secret-ab")).VerifyToken(tokenString)
	require.Error(t, err)
}

func TestVerifier_RejectsUnsignedToken(t *testing.T) {
	p := testPrincipal()
	claims := &Claims{
		Role:  string(p.Role),
		OrgID: p.OrgID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    issuer,
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewVerifier(testSecret).VerifyToken(tokenString)
	require.Error(t, err)
}

func TestVerifier_RejectsBadClaims(t *testing.T) {
	v := NewVerifier(testSecret)
	p := testPrincipal()

	sign := func(t *testing.T, claims *Claims) string {
		t.Helper()
		tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)
		return tokenString
	}

	base := func() *Claims {
		return &Claims{
			Role:  string(p.Role),
			OrgID: p.OrgID.String(),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   p.UserID.String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    issuer,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Claims)
	}{
		{name: "unknown role", mutate: func(c *Claims) { c.Role = "SUPERUSER" }},
		{name: "empty role", mutate: func(c *Claims) { c.Role = "" }},
		{name: "malformed subject", mutate: func(c *Claims) { c.Subject = "not-a-uuid" }},
		{name: "malformed org id", mutate: func(c *Claims) { c.OrgID = "not-a-uuid" }},
		{name: "wrong issuer", mutate: func(c *Claims) { c.Issuer = "someone-else" }},
		{name: "missing expiry", mutate: func(c *Claims) { c.ExpiresAt = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := base()
			tt.mutate(claims)

			_, err := v.VerifyToken(sign(t, claims))
			require.Error(t, err)
		})
	}
}
