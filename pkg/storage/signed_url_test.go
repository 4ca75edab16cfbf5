package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerSignAndVerify(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("cert-1", "certificates/u1/q1.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	grant, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "cert-1", grant.ResourceID)
	require.Equal(t, "certificates/u1/q1.pdf", grant.Path)
	require.WithinDuration(t, expiresAt, grant.ExpiresAt, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	issued := time.Now()
	signer.now = func() time.Time { return issued }
	token, _, err := signer.Sign("cert-1", "a.pdf")
	require.NoError(t, err)

	signer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = signer.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Sign("cert-1", "a.pdf")
	require.NoError(t, err)

	_, err = NewSignedURLSigner("other", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrTokenSignature)

	_, err = signer.Verify("cert-2" + token[len("cert-1"):])
	require.ErrorIs(t, err, ErrTokenSignature)

	_, err = signer.Verify("garbage")
	require.ErrorIs(t, err, ErrTokenMalformed)

	_, _, err = NewSignedURLSigner("", time.Hour).Sign("cert-1", "a.pdf")
	require.Error(t, err)
}
