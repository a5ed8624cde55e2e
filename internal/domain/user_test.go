package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhitt/flashstack/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "valid user",
			username: "alice",
			password: "correct-horse-battery",
			wantErr:  nil,
		},
		{
			name:     "empty username",
			username: "",
			password: "correct-horse-battery",
			wantErr:  domain.ErrEmptyUsername,
		},
		{
			name:     "whitespace username",
			username: "   ",
			password: "correct-horse-battery",
			wantErr:  domain.ErrEmptyUsername,
		},
		{
			name:     "username too long",
			username: strings.Repeat("a", 151),
			password: "correct-horse-battery",
			wantErr:  domain.ErrUsernameTooLong,
		},
		{
			name:     "password too short",
			username: "alice",
			password: "short",
			wantErr:  domain.ErrPasswordTooShort,
		},
		{
			name:     "password too long",
			username: "alice",
			password: strings.Repeat("x", 73),
			wantErr:  domain.ErrPasswordTooLong,
		},
		{
			name:     "empty password",
			username: "alice",
			password: "",
			wantErr:  domain.ErrEmptyPassword,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := domain.NewUser(tt.username, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.NotEqual(t, "", user.ID.String())
			assert.Equal(t, tt.username, user.Username)
			assert.Equal(t, domain.DefaultTopicName, user.Title)
			assert.False(t, user.CreatedAt.IsZero())
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	// A user loaded from the store has no plaintext password, only a hash.
	user, err := domain.NewUser("bob", "correct-horse-battery")
	require.NoError(t, err)

	user.Password = ""
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), domain.ErrEmptyPassword)
}
