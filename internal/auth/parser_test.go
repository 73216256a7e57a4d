package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	p := NewParser("secret")
	userID := uuid.New()

	raw, err := p.Sign(Claims{
		UserID: userID,
		Role:   "DISPATCHER",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	claims, err := p.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "DISPATCHER", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, err := NewParser("one").Sign(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewParser("two").Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	p := NewParser("secret")
	raw, err := p.Sign(Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	require.NoError(t, err)

	_, err = p.Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingUser(t *testing.T) {
	p := NewParser("secret")
	raw, err := p.Sign(Claims{Role: "ADMIN"})
	require.NoError(t, err)

	_, err = p.Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}
