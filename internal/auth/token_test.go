package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T, now func() time.Time) *Issuer {
	t.Helper()
	iss, err := NewIssuer("taskhub-test",
		[]byte("access-secret"), []byte("refresh-secret"),
		15*time.Minute, 7*24*time.Hour,
		WithIssuerClock(now))
	require.NoError(t, err)
	return iss
}

func TestIssueAndVerifyAccess(t *testing.T) {
	iss := newTestIssuer(t, time.Now)

	token, exp, err := iss.IssueAccess("user-1", "alice")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := iss.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "access", claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenFamiliesDoNotCrossVerify(t *testing.T) {
	iss := newTestIssuer(t, time.Now)

	access, _, err := iss.IssueAccess("user-1", "alice")
	require.NoError(t, err)
	refresh, _, err := iss.IssueRefresh("user-1")
	require.NoError(t, err)

	_, err = iss.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = iss.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	clock := time.Now
	iss := newTestIssuer(t, clock)

	token, _, err := iss.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	late := newTestIssuer(t, func() time.Time { return time.Now().Add(16 * time.Minute) })
	_, err = late.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	iss := newTestIssuer(t, time.Now)

	token, _, err := iss.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	other, err := NewIssuer("taskhub-test",
		[]byte("different-secret"), []byte("refresh-secret"),
		15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	_, err = other.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.VerifyAccess("")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = iss.VerifyAccess("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSingleUseTokenDigest(t *testing.T) {
	raw, digest, err := NewSingleUseToken()
	require.NoError(t, err)
	assert.Len(t, raw, 40)
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, DigestToken(raw))

	raw2, digest2, err := NewSingleUseToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
	assert.NotEqual(t, digest, digest2)
}

func TestDigestEqual(t *testing.T) {
	d := DigestToken("value")
	assert.True(t, DigestEqual(d, DigestToken("value")))
	assert.False(t, DigestEqual(d, DigestToken("other")))
	assert.False(t, DigestEqual("", ""))
	assert.False(t, DigestEqual(d, d[:10]))
}
