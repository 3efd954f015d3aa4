package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	signed, err := m.Issue(42, "Voter")
	require.NoError(t, err)

	claims, err := m.Parse(signed)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "Voter", claims.Role)
}

func TestParseExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	signed, err := m.Issue(42, "Voter")
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseWrongSecret(t *testing.T) {
	signed, err := NewManager("test-secret", time.Hour).Issue(42, "Voter")
	require.NoError(t, err)

	_, err = NewManager("other-secret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Parse(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestParseRejectsUnsignedToken(t *testing.T) {
	// Header {"alg":"none","typ":"JWT"} with an arbitrary subject.
	const unsigned = "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiI0MiJ9."

	_, err := NewManager("test-secret", time.Hour).Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
