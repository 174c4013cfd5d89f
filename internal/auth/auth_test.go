package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	mgr := NewJWTManager(strings.Repeat("s", 32), 24*time.Hour)
	id := uuid.New()

	token, expires, err := mgr.Issue(id, "a@b.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expires, 5*time.Second)

	claims, err := mgr.Verify(token)
	require.NoError(t, err)

	got, err := claims.CitizenID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	t.Parallel()

	mgr := NewJWTManager(strings.Repeat("s", 32), time.Hour)
	token, _, err := mgr.Issue(uuid.New(), "a@b.com")
	require.NoError(t, err)

	sigStart := strings.LastIndex(token, ".") + 1
	for i := sigStart; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := mgr.Verify(tampered)
		assert.ErrorIs(t, err, ErrInvalidToken, "position %d", i)
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	t.Parallel()

	issuer := NewJWTManager(strings.Repeat("s", 32), time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := issuer.Issue(uuid.New(), "a@b.com")
	require.NoError(t, err)

	mgr := NewJWTManager(strings.Repeat("s", 32), time.Hour)
	_, err = mgr.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTManager(strings.Repeat("x", 32), time.Hour)
	foreign, _, err := other.Issue(uuid.New(), "a@b.com")
	require.NoError(t, err)
	_, err = mgr.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = mgr.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotContains(t, hash, "secret1")
	assert.False(t, NeedsRehash(hash))

	ok, err := Verify("secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("secret2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyAcceptsLegacyBcrypt(t *testing.T) {
	t.Parallel()

	legacy, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, NeedsRehash(string(legacy)))

	ok, err := Verify("secret1", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("wrong", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}
