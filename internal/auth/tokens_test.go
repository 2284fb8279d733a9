package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890"

func newTestIssuer() *Issuer {
	return NewIssuer(testSecret, "quill-test", 5*time.Minute, 24*time.Hour)
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := newTestIssuer()
	pair, err := iss.IssuePair(42, "writer")
	require.NoError(t, err)

	access, err := iss.Parse(pair.Access, AccessToken)
	require.NoError(t, err)
	id, err := access.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "writer", access.Username)

	refresh, err := iss.Parse(pair.Refresh, RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, access.ID, refresh.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), refresh.Expiry(), time.Minute)
}

func TestIssuer_WrongType(t *testing.T) {
	iss := newTestIssuer()
	pair, err := iss.IssuePair(1, "u")
	require.NoError(t, err)

	_, err = iss.Parse(pair.Access, RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = iss.Parse(pair.Refresh, AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestIssuer_Expired(t *testing.T) {
	iss := newTestIssuer()
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := iss.IssueAccess(1, "u")
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Parse(token, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsForeignTokens(t *testing.T) {
	iss := newTestIssuer()

	other := NewIssuer("another-secret-0000000000000000000000", "quill-test", time.Minute, time.Hour)
	foreign, err := other.IssueAccess(1, "u")
	require.NoError(t, err)
	_, err = iss.Parse(foreign, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewIssuer(testSecret, "someone-else", time.Minute, time.Hour)
	token, err := wrongIssuer.IssueAccess(1, "u")
	require.NoError(t, err)
	_, err = iss.Parse(token, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Parse(unsigned, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not-a-jwt", AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_EmptySecret(t *testing.T) {
	iss := NewIssuer("", "quill-test", time.Minute, time.Hour)
	_, err := iss.IssueAccess(1, "u")
	assert.Error(t, err)
}
