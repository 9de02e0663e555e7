package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTer_IssueAndParse(t *testing.T) {
	j := &JWTer{Secret: []byte("k"), Issuer: "animal-shelter", TTL: time.Hour}
	tok, err := j.Issue("u-1", "admin")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UID)
	assert.Equal(t, "admin", c.Role)
}

func TestJWTer_RejectsForeignIssuerAndExpired(t *testing.T) {
	a := &JWTer{Secret: []byte("k"), Issuer: "a", TTL: time.Hour}
	b := &JWTer{Secret: []byte("k"), Issuer: "b", TTL: time.Hour}
	tok, err := a.Issue("u-1", "admin")
	require.NoError(t, err)
	_, err = b.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := &JWTer{Secret: []byte("other"), Issuer: "a", TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = a.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	expired := &JWTer{Secret: []byte("k"), Issuer: "a", TTL: -2 * time.Minute}
	tok, err = expired.Issue("u-1", "admin")
	require.NoError(t, err)
	_, err = a.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTer_LeewayAndUniqueIDs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	j := &JWTer{Secret: []byte("k"), Issuer: "a", TTL: time.Minute, Now: func() time.Time { return now }}
	t1, err := j.Issue("u-1", "admin")
	require.NoError(t, err)
	t2, err := j.Issue("u-1", "admin")
	require.NoError(t, err)

	c1, err := j.Parse(t1)
	require.NoError(t, err)
	c2, err := j.Parse(t2)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
	assert.Equal(t, "u-1", c1.Subject)

	// 过期 30s 仍在 60s 容忍内，过期 2 分钟则拒绝
	now = now.Add(90 * time.Second)
	_, err = j.Parse(t1)
	assert.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = j.Parse(t1)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTer_RequiresSecret(t *testing.T) {
	_, err := (&JWTer{Issuer: "a", TTL: time.Hour}).Issue("u-1", "admin")
	assert.Error(t, err)
}

func TestTOTP_EnrollAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tp := &TOTP{Issuer: "Animal Shelter", Now: func() time.Time { return now }}

	en, err := tp.Enroll("admin" + "@" + "shelter.test")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(en.URL, "otpauth://totp/"))

	code, err := totp.GenerateCode(en.Secret, now)
	require.NoError(t, err)
	assert.True(t, tp.Verify(en.Secret, code))

	old, err := totp.GenerateCode(en.Secret, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.False(t, tp.Verify(en.Secret, old))
	assert.False(t, tp.Verify("", code))
	assert.False(t, tp.Verify(en.Secret, ""))
}
