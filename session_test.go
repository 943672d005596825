package authflow_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-authflow"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSessionClaims(t *testing.T) {
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	expires := issued.Add(24 * time.Hour)

	token := signedToken(t, jwt.MapClaims{
		"uid":  "c6f4b3a0-5e2d-4a6b-9c1e-2f8a7d9b4c3e",
		"sub":  "subject-ignored-when-uid-present",
		"name": "Ada Lovelace",
		"iss":  "auth-service",
		"aud":  []string{"web"},
		"iat":  issued.Unix(),
		"exp":  expires.Unix(),
	})

	session, err := authflow.DecodeSessionClaims(token)
	require.NoError(t, err)

	assert.Equal(t, "c6f4b3a0-5e2d-4a6b-9c1e-2f8a7d9b4c3e", session.GetUserID())
	assert.Equal(t, "Ada Lovelace", session.DisplayName())
	assert.Equal(t, "auth-service", session.GetIssuer())
	assert.Equal(t, []string{"web"}, session.GetAudience())

	require.NotNil(t, session.GetIssuedAt())
	assert.Equal(t, issued.Unix(), session.GetIssuedAt().Unix())
	require.NotNil(t, session.ExpirationDate)
	assert.Equal(t, expires.Unix(), session.ExpirationDate.Unix())

	id, err := session.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, "c6f4b3a0-5e2d-4a6b-9c1e-2f8a7d9b4c3e", id.String())
}

func TestDecodeSessionClaimsSubjectFallback(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub":  "usr_42",
		"name": "Ada Lovelace",
	})

	session, err := authflow.DecodeSessionClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_42", session.GetUserID())

	// non-uuid identifiers fail the uuid accessor, nothing else
	_, err = session.GetUserUUID()
	assert.Error(t, err)
}

func TestDecodeSessionClaimsWithoutName(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "usr_42"})

	session, err := authflow.DecodeSessionClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "", session.DisplayName())
	assert.Nil(t, session.GetData())
}

func TestDecodeSessionClaimsRejectsGarbage(t *testing.T) {
	_, err := authflow.DecodeSessionClaims("")
	assert.ErrorIs(t, err, authflow.ErrUnableToParseToken)

	_, err = authflow.DecodeSessionClaims("not.a.token")
	assert.ErrorIs(t, err, authflow.ErrUnableToParseToken)

	_, err = authflow.DecodeSessionClaims("stillnotatoken")
	assert.ErrorIs(t, err, authflow.ErrUnableToParseToken)
}

func TestSessionObjectDisplayNameNilSafe(t *testing.T) {
	var session *authflow.SessionObject
	assert.Equal(t, "", session.DisplayName())

	assert.Equal(t, "", (&authflow.SessionObject{}).DisplayName())
	assert.Equal(t, "", (&authflow.SessionObject{Data: map[string]any{"name": 42}}).DisplayName())
}
