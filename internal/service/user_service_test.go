package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/mocks"
	"github.com/jwhitt/flashstack/internal/service/auth"
	"github.com/jwhitt/flashstack/internal/store"
)

// userFixture wires a UserService over fresh in-memory data with a
// low-cost bcrypt hasher.
func userFixture(t *testing.T) (*UserService, *mocks.Data) {
	t.Helper()

	data := mocks.NewData()
	svc, err := NewUserService(
		mocks.NewTxDB(),
		data.UserStore(),
		data.TopicStore(),
		auth.NewBcryptHasher(4),
		auth.NewBcryptVerifier(),
		nil,
	)
	require.NoError(t, err)

	return svc, data
}

func TestUserServiceRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates user with default topic", func(t *testing.T) {
		t.Parallel()
		svc, data := userFixture(t)

		user, err := svc.Register(context.Background(), "alice", "secret-password")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Empty(t, user.Password)
		assert.NotEmpty(t, user.HashedPassword)
		assert.NotEqual(t, "secret-password", user.HashedPassword)

		topics, err := data.TopicStore().ListByUser(context.Background(), user.ID)
		require.NoError(t, err)
		require.Len(t, topics, 1)
		assert.Equal(t, domain.DefaultTopicName, topics[0].Name)
		assert.Nil(t, topics[0].ParentID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		svc, _ := userFixture(t)

		_, err := svc.Register(context.Background(), "alice", "secret-password")
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "alice", "another-password")
		assert.ErrorIs(t, err, store.ErrUsernameExists)
	})

	t.Run("short password rejected", func(t *testing.T) {
		t.Parallel()
		svc, _ := userFixture(t)

		_, err := svc.Register(context.Background(), "bob", "short")
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("empty username rejected", func(t *testing.T) {
		t.Parallel()
		svc, _ := userFixture(t)

		_, err := svc.Register(context.Background(), "", "secret-password")
		assert.ErrorIs(t, err, domain.ErrEmptyUsername)
	})
}

func TestUserServiceAuthenticate(t *testing.T) {
	t.Parallel()
	svc, _ := userFixture(t)

	registered, err := svc.Register(context.Background(), "alice", "secret-password")
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "alice", "secret-password")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "alice", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "nobody", "secret-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserServiceUpdateProfile(t *testing.T) {
	t.Parallel()
	svc, _ := userFixture(t)

	user, err := svc.Register(context.Background(), "alice", "secret-password")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "bob", "secret-password")
	require.NoError(t, err)

	t.Run("rename", func(t *testing.T) {
		updated, err := svc.UpdateProfile(context.Background(), user.ID, "alice2")
		require.NoError(t, err)
		assert.Equal(t, "alice2", updated.Username)

		_, err = svc.Authenticate(context.Background(), "alice2", "secret-password")
		assert.NoError(t, err)
	})

	t.Run("taken username", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), user.ID, "bob")
		assert.ErrorIs(t, err, store.ErrUsernameExists)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), uuid.New(), "ghost")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestUserServiceUpdatePassword(t *testing.T) {
	t.Parallel()
	svc, _ := userFixture(t)

	user, err := svc.Register(context.Background(), "alice", "secret-password")
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.UpdatePassword(context.Background(), user.ID, "wrong", "new-long-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("short new password", func(t *testing.T) {
		err := svc.UpdatePassword(context.Background(), user.ID, "secret-password", "short")
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("successful change", func(t *testing.T) {
		err := svc.UpdatePassword(context.Background(), user.ID, "secret-password", "new-long-password")
		require.NoError(t, err)

		_, err = svc.Authenticate(context.Background(), "alice", "new-long-password")
		assert.NoError(t, err)
		_, err = svc.Authenticate(context.Background(), "alice", "secret-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserServiceUpdateTitle(t *testing.T) {
	t.Parallel()
	svc, _ := userFixture(t)

	user, err := svc.Register(context.Background(), "alice", "secret-password")
	require.NoError(t, err)

	updated, err := svc.UpdateTitle(context.Background(), user.ID, "Alice's Deck")
	require.NoError(t, err)
	assert.Equal(t, "Alice's Deck", updated.Title)

	_, err = svc.UpdateTitle(context.Background(), user.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
