// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authpanel/internal/platform/apperr"
	"github.com/taibuivan/authpanel/internal/platform/logging"
	"github.com/taibuivan/authpanel/internal/platform/sec"
)

type serviceFixture struct {
	service  *Service
	users    *memoryUserRepository
	mailer   *recordingMailer
	cooldown *stubCooldown
	now      time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	fixture := &serviceFixture{
		users:    newMemoryUserRepository(),
		mailer:   &recordingMailer{},
		cooldown: &stubCooldown{acquired: true},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	fixture.service = NewService(fixture.users, fixture.cooldown, stubTokenProvider{}, fixture.mailer,
		"https://panel.example.com/", logging.Discard())
	fixture.service.now = func() time.Time { return fixture.now }
	return fixture
}

func (fixture *serviceFixture) register(t *testing.T, name, email, password string) *User {
	t.Helper()
	user, err := fixture.service.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	return user
}

var tokenPattern = regexp.MustCompile(`token=([0-9a-f]+)`)

// issueResetToken runs the forgot-password flow and extracts the raw token from the email.
func (fixture *serviceFixture) issueResetToken(t *testing.T, email string) string {
	t.Helper()
	require.NoError(t, fixture.service.RequestPasswordReset(context.Background(), email))

	sent := fixture.mailer.sent()
	require.NotEmpty(t, sent)
	match := tokenPattern.FindStringSubmatch(sent[len(sent)-1].Text)
	require.Len(t, match, 2)
	return match[1]
}

func TestService_Register(t *testing.T) {
	fixture := newServiceFixture(t)

	user := fixture.register(t, "  Alice  ", "A@X.com", "secret1")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("secret1", user.PasswordHash))
	assert.False(t, user.HasResetToken())
}

func TestService_Register_Duplicate(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.register(t, "Alice", "a@x.com", "secret1")

	// Case and width variants normalise to the stored address.
	_, err := fixture.service.Register(context.Background(), RegisterInput{Name: "Eve", Email: "Ａ@X.COM", Password: "secret2"})

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
	assert.Equal(t, MessageDuplicateEmail, err.Error())
	assert.Len(t, fixture.users.byID, 1)
}

func TestService_Register_StoreFailure(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.users.failAll = errStoreDown

	_, err := fixture.service.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})

	assert.ErrorIs(t, err, errStoreDown)
	assert.False(t, apperr.IsAppError(err))
}

func TestService_Login(t *testing.T) {
	fixture := newServiceFixture(t)
	user := fixture.register(t, "Alice", "a@x.com", "secret1")

	t.Run("Success", func(t *testing.T) {
		result, err := fixture.service.Login(context.Background(), LoginInput{Email: " A@x.com ", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "token-for-"+user.ID+"-Alice", result.Token)
		assert.Equal(t, user.ID, result.User.ID)
	})

	t.Run("UnknownAndWrongPasswordAreIdentical", func(t *testing.T) {
		_, unknownErr := fixture.service.Login(context.Background(), LoginInput{Email: "nobody@x.com", Password: "secret1"})
		_, wrongErr := fixture.service.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "wrong"})

		require.Error(t, unknownErr)
		require.Error(t, wrongErr)
		assert.Equal(t, unknownErr, wrongErr)
		assert.Equal(t, MessageInvalidCredential, unknownErr.Error())
		assert.True(t, apperr.HasCode(unknownErr, "UNAUTHORIZED"))
	})

	t.Run("StoreFailureIsInternal", func(t *testing.T) {
		broken := newServiceFixture(t)
		broken.users.failAll = errStoreDown
		_, err := broken.service.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret1"})
		assert.ErrorIs(t, err, errStoreDown)
	})
}

func TestService_RequestPasswordReset(t *testing.T) {
	t.Run("KnownEmail", func(t *testing.T) {
		fixture := newServiceFixture(t)
		fixture.register(t, "Alice", "a@x.com", "secret1")

		token := fixture.issueResetToken(t, "A@x.com")

		stored := fixture.users.get("a@x.com")
		require.True(t, stored.HasResetToken())
		assert.Equal(t, sec.HashToken(token), *stored.ResetTokenHash, "only the hash is stored")
		assert.Equal(t, fixture.now.Add(ResetTokenTTL), *stored.ResetExpiresAt)

		message := fixture.mailer.sent()[0]
		assert.Equal(t, "a@x.com", message.To)
		assert.Contains(t, message.Text, "https://panel.example.com/reset-password?"+url.Values{"token": {token}}.Encode())
	})

	t.Run("UnknownEmailHasNoSideEffect", func(t *testing.T) {
		fixture := newServiceFixture(t)
		fixture.register(t, "Alice", "a@x.com", "secret1")

		require.NoError(t, fixture.service.RequestPasswordReset(context.Background(), "nobody@x.com"))

		assert.Empty(t, fixture.mailer.sent())
		assert.False(t, fixture.users.get("a@x.com").HasResetToken())
		assert.Zero(t, fixture.cooldown.calls)
	})

	t.Run("MailFailureIsNotReturned", func(t *testing.T) {
		fixture := newServiceFixture(t)
		fixture.register(t, "Alice", "a@x.com", "secret1")
		fixture.mailer.err = assert.AnError

		assert.NoError(t, fixture.service.RequestPasswordReset(context.Background(), "a@x.com"))
		assert.Len(t, fixture.mailer.sent(), 1)
	})

	t.Run("CooldownActiveSkipsSideEffect", func(t *testing.T) {
		fixture := newServiceFixture(t)
		fixture.register(t, "Alice", "a@x.com", "secret1")
		fixture.cooldown.acquired = false

		require.NoError(t, fixture.service.RequestPasswordReset(context.Background(), "a@x.com"))

		assert.Empty(t, fixture.mailer.sent())
		assert.False(t, fixture.users.get("a@x.com").HasResetToken())
	})

	t.Run("CooldownFailureFailsOpen", func(t *testing.T) {
		fixture := newServiceFixture(t)
		fixture.register(t, "Alice", "a@x.com", "secret1")
		fixture.cooldown.err = assert.AnError

		require.NoError(t, fixture.service.RequestPasswordReset(context.Background(), "a@x.com"))
		assert.Len(t, fixture.mailer.sent(), 1)
	})

	t.Run("LookupFailure", func(t *testing.T) {
		fixture := newServiceFixture(t)
		fixture.users.failAll = errStoreDown

		assert.ErrorIs(t, fixture.service.RequestPasswordReset(context.Background(), "a@x.com"), errStoreDown)
		assert.Zero(t, fixture.cooldown.calls)
	})

	t.Run("TokenSaveFailureLooksLikeSuccessAndReleasesCooldown", func(t *testing.T) {
		fixture := newServiceFixture(t)
		fixture.register(t, "Alice", "a@x.com", "secret1")
		fixture.users.failSetReset = errStoreDown

		require.NoError(t, fixture.service.RequestPasswordReset(context.Background(), "a@x.com"))

		assert.Empty(t, fixture.mailer.sent())
		assert.Equal(t, []string{"a@x.com"}, fixture.cooldown.released)

		// The address can retry immediately once the store recovers.
		fixture.users.failSetReset = nil
		token := fixture.issueResetToken(t, "a@x.com")
		assert.NotEmpty(t, token)
	})

	t.Run("MailFailureKeepsCooldown", func(t *testing.T) {
		fixture := newServiceFixture(t)
		fixture.register(t, "Alice", "a@x.com", "secret1")
		fixture.mailer.err = assert.AnError

		require.NoError(t, fixture.service.RequestPasswordReset(context.Background(), "a@x.com"))
		assert.Empty(t, fixture.cooldown.released)
	})
}

func TestService_VerifyResetToken(t *testing.T) {
	fixture := newServiceFixture(t)
	user := fixture.register(t, "Alice", "a@x.com", "secret1")
	token := fixture.issueResetToken(t, "a@x.com")

	got, err := fixture.service.VerifyResetToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	for name, candidate := range map[string]string{"Empty": "", "Unknown": "deadbeef"} {
		t.Run(name, func(t *testing.T) {
			_, err := fixture.service.VerifyResetToken(context.Background(), candidate)
			assert.True(t, apperr.HasCode(err, "INVALID_TOKEN"))
		})
	}

	t.Run("ExpiredAtBoundary", func(t *testing.T) {
		fixture.now = fixture.now.Add(ResetTokenTTL)
		_, err := fixture.service.VerifyResetToken(context.Background(), token)
		assert.True(t, apperr.HasCode(err, "INVALID_TOKEN"))
	})
}

func TestService_ResetPassword(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.register(t, "Alice", "a@x.com", "secret1")
	token := fixture.issueResetToken(t, "a@x.com")

	require.NoError(t, fixture.service.ResetPassword(context.Background(), token, "newsecret"))

	stored := fixture.users.get("a@x.com")
	assert.False(t, stored.HasResetToken())

	_, err := fixture.service.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret1"})
	assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"), "old password must stop working")
	_, err = fixture.service.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "newsecret"})
	assert.NoError(t, err)

	// Single use.
	err = fixture.service.ResetPassword(context.Background(), token, "another1")
	assert.True(t, apperr.HasCode(err, "INVALID_TOKEN"))
}

func TestService_ResetPassword_Expired(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.register(t, "Alice", "a@x.com", "secret1")
	token := fixture.issueResetToken(t, "a@x.com")

	fixture.now = fixture.now.Add(ResetTokenTTL + time.Second)

	err := fixture.service.ResetPassword(context.Background(), token, "newsecret")
	assert.True(t, apperr.HasCode(err, "INVALID_TOKEN"))
	assert.True(t, sec.CheckPasswordHash("secret1", fixture.users.get("a@x.com").PasswordHash))
}

func TestService_ResetPassword_NewTokenReplacesOld(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.register(t, "Alice", "a@x.com", "secret1")
	first := fixture.issueResetToken(t, "a@x.com")
	second := fixture.issueResetToken(t, "a@x.com")

	assert.True(t, apperr.HasCode(fixture.service.ResetPassword(context.Background(), first, "newsecret"), "INVALID_TOKEN"))
	assert.NoError(t, fixture.service.ResetPassword(context.Background(), second, "newsecret"))
}
