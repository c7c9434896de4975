package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests"

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestIssueThenVerify(t *testing.T) {
	clock := newClock()
	tm := NewTokenManager(testSecret, time.Hour, WithClock(clock.Now))

	token, expiresAt, err := tm.Issue("ada@nexiq.example")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, clock.now.Add(time.Hour), expiresAt)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@nexiq.example", claims.Email)
	assert.Equal(t, "ada@nexiq.example", claims.Subject)
	assert.Equal(t, clock.now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyExpired(t *testing.T) {
	clock := newClock()
	tm := NewTokenManager(testSecret, 5*time.Hour, WithClock(clock.Now))

	token, _, err := tm.Issue("ada@nexiq.example")
	require.NoError(t, err)

	clock.Advance(5*time.Hour - time.Second)
	_, err = tm.Verify(token)
	require.NoError(t, err, "token must still be valid just before expiry")

	clock.Advance(2 * time.Second)
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	clock := newClock()
	issuer := NewTokenManager("secret-one", time.Hour, WithClock(clock.Now))
	verifier := NewTokenManager("secret-two", time.Hour, WithClock(clock.Now))

	token, _, err := issuer.Issue("ada@nexiq.example")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	clock.Advance(2 * time.Hour)
	_, err = verifier.Verify(token)
	require.Error(t, err)
	assert.True(t, err == ErrTokenInvalid || err == ErrTokenExpired)
}

func TestVerifyMalformed(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c", "Bearer"} {
		_, err := tm.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenInvalid, "input %q", raw)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	token, _, err := tm.Issue("ada@nexiq.example")
	require.NoError(t, err)

	other, _, err := tm.Issue("eve@nexiq.example")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = tm.Verify(forged)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		Email: "ada@nexiq.example",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewTokenManager(testSecret, time.Hour).Verify(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRequiresEmailAndExpiry(t *testing.T) {
	noEmail, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Email: "ada@nexiq.example"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tm := NewTokenManager(testSecret, time.Hour)
	_, err = tm.Verify(noEmail)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = tm.Verify(noExpiry)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokensIssuedAtDifferentInstants(t *testing.T) {
	clock := newClock()
	tm := NewTokenManager(testSecret, time.Hour, WithClock(clock.Now))

	first, firstExp, err := tm.Issue("ada@nexiq.example")
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	second, secondExp, err := tm.Issue("ada@nexiq.example")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 10*time.Minute, secondExp.Sub(firstExp))

	_, err = tm.Verify(first)
	assert.NoError(t, err)
	_, err = tm.Verify(second)
	assert.NoError(t, err)

	// past the first expiry only the second token survives
	clock.Advance(55 * time.Minute)
	_, err = tm.Verify(first)
	assert.ErrorIs(t, err, ErrTokenExpired)
	_, err = tm.Verify(second)
	assert.NoError(t, err)
}

func TestNewTokenManagerDefaultTTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, NewTokenManager(testSecret, 0).TTL())
	assert.Equal(t, 5*time.Hour, NewTokenManager(testSecret, 5*time.Hour).TTL())
}
