package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arielmz/skycast-be/internal/models"
)

func testUser() models.User {
	return models.User{
		ID:        "user-1",
		Email:     "appleseed@mail.com",
		FirstName: "Johnny",
		LastName:  "Appleseed",
	}
}

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret-one", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Johnny Appleseed", claims.Name)
	assert.Equal(t, "appleseed@mail.com", claims.Email)
	assert.NotNil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("secret-one", -time.Minute)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTamperedToken(t *testing.T) {
	issuer := NewTokenIssuer("secret-one", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	// Flip one byte of the signature.
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	_, err = issuer.Verify(string(tampered))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-one", time.Hour)
	other := NewTokenIssuer("secret-two", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformedToken(t *testing.T) {
	issuer := NewTokenIssuer("secret-one", time.Hour)

	for _, tokenStr := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.Verify(tokenStr)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tokenStr)
	}
}
