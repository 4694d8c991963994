package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	t.Run("ValidCredentials", func(t *testing.T) {
		user, err := Authenticate("egarcia@despacho.app", "despacho2024")
		require.NoError(t, err)
		assert.Equal(t, "lic-garcia", user.UID)
		assert.Equal(t, "Lic. Elena García", user.Name)
	})

	t.Run("EmailCaseInsensitive", func(t *testing.T) {
		user, err := Authenticate("EGarcia@Despacho.App", "despacho2024")
		require.NoError(t, err)
		assert.Equal(t, "lic-garcia", user.UID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := Authenticate("egarcia@despacho.app", "incorrecta")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := Authenticate("nadie@despacho.app", "despacho2024")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGenerateSessionToken(t *testing.T) {
	first, err := GenerateSessionToken()
	require.NoError(t, err)
	second, err := GenerateSessionToken()
	require.NoError(t, err)

	assert.Len(t, first, SessionTokenLength*2)
	assert.NotEqual(t, first, second)
}

func TestSessionService(t *testing.T) {
	svc := NewSessionService()
	user := &User{UID: "lic-garcia", Name: "Lic. Elena García", Email: "egarcia@despacho.app"}

	t.Run("CreateAndValidate", func(t *testing.T) {
		session, err := svc.Create(user)
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.True(t, session.ExpiresAt.After(time.Now()))

		got, err := svc.Validate(session.Token)
		require.NoError(t, err)
		assert.Equal(t, "lic-garcia", got.User.UID)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		_, err := svc.Validate("no-such-token")
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("ExpiredTokenRejectedAndDropped", func(t *testing.T) {
		session, err := svc.Create(user)
		require.NoError(t, err)

		svc.mu.Lock()
		svc.sessions[session.Token].ExpiresAt = time.Now().Add(-time.Minute)
		svc.mu.Unlock()

		_, err = svc.Validate(session.Token)
		assert.ErrorIs(t, err, ErrSessionExpired)
		_, err = svc.Validate(session.Token)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("Destroy", func(t *testing.T) {
		session, err := svc.Create(user)
		require.NoError(t, err)

		svc.Destroy(session.Token)
		_, err = svc.Validate(session.Token)
		assert.ErrorIs(t, err, ErrSessionExpired)

		// Destroying again is a no-op
		svc.Destroy(session.Token)
	})

	t.Run("CleanupExpired", func(t *testing.T) {
		fresh := NewSessionService()
		live, err := fresh.Create(user)
		require.NoError(t, err)
		stale, err := fresh.Create(user)
		require.NoError(t, err)

		fresh.mu.Lock()
		fresh.sessions[stale.Token].ExpiresAt = time.Now().Add(-time.Hour)
		fresh.mu.Unlock()

		assert.Equal(t, 1, fresh.CleanupExpired())
		_, err = fresh.Validate(live.Token)
		assert.NoError(t, err)
	})
}
