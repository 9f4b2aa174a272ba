package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestIdentityTokenRoundTrip(t *testing.T) {
	token, err := GenerateIdentityToken("provider|user123", "Jane", testSecret, "pixxel", time.Hour)
	require.NoError(t, err)

	claims, err := VerifyIdentityToken(token, testSecret, "pixxel")
	require.NoError(t, err)
	assert.Equal(t, "provider|user123", claims.Subject)
	assert.Equal(t, "Jane", claims.Name)
}

func TestVerifyIdentityToken_WrongSecret(t *testing.T) {
	token, err := GenerateIdentityToken("provider|user123", "Jane", testSecret, "", time.Hour)
	require.NoError(t, err)

	_, err = VerifyIdentityToken(token, "other-secret", "")
	assert.Error(t, err)
}

func TestVerifyIdentityToken_Expired(t *testing.T) {
	token, err := GenerateIdentityToken("provider|user123", "", testSecret, "", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyIdentityToken(token, testSecret, "")
	assert.Error(t, err)
}

func TestVerifyIdentityToken_WrongIssuer(t *testing.T) {
	token, err := GenerateIdentityToken("provider|user123", "", testSecret, "someone-else", time.Hour)
	require.NoError(t, err)

	_, err = VerifyIdentityToken(token, testSecret, "pixxel")
	assert.Error(t, err)

	// Empty expected issuer disables the check.
	_, err = VerifyIdentityToken(token, testSecret, "")
	assert.NoError(t, err)
}

func TestVerifyIdentityToken_MissingSubject(t *testing.T) {
	token, err := GenerateIdentityToken("", "Jane", testSecret, "", time.Hour)
	require.NoError(t, err)

	_, err = VerifyIdentityToken(token, testSecret, "")
	assert.Error(t, err)
}

func TestVerifyIdentityToken_Garbage(t *testing.T) {
	_, err := VerifyIdentityToken("not-a-jwt", testSecret, "")
	assert.Error(t, err)
}
