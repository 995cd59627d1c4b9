package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "test-issuer")

func Test_GenerateAccessToken(t *testing.T) {
	subject := uuid.NewString()
	issued, err := jwtService.GenerateAccessToken(id.RoleBank, subject, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.JTI)

	claims, err := jwtService.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, "bank", claims.Role)
	assert.Equal(t, issued.JTI, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(id.RoleUser, uuid.NewString(), -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(issued.Token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateToken_WrongKeyOrIssuer(t *testing.T) {
	other := NewJWTService("other-key", "test-issuer")
	issued, err := other.GenerateAccessToken(id.RoleUser, uuid.NewString(), time.Hour)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(issued.Token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	foreign := NewJWTService("test-signing-key", "someone-else")
	issued, err = foreign.GenerateAccessToken(id.RoleUser, uuid.NewString(), time.Hour)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(issued.Token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             "bank",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-issuer", Subject: uuid.NewString()},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(raw)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_MiddlewareAdapter(t *testing.T) {
	subject := uuid.NewString()
	issued, err := jwtService.GenerateAccessToken(id.RoleUser, subject, time.Hour)
	require.NoError(t, err)

	claims, err := NewMiddlewareAdapter(jwtService).ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, issued.JTI, claims.JTI)
}
