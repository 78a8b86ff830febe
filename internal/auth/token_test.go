package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("alice", "admin")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenRejections(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := issuer.Verify("not-a-token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewTokenIssuer([]byte("different-secret"), time.Hour)
		token, err := other.Issue("alice", "admin")
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		shortLived := NewTokenIssuer([]byte("test-secret"), time.Nanosecond)
		token, err := shortLived.Issue("alice", "admin")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		_, err = shortLived.Verify(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
