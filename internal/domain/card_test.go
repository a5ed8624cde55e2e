package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhitt/flashstack/internal/domain"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	topicID := uuid.New()

	tests := []struct {
		name    string
		userID  uuid.UUID
		topicID uuid.UUID
		front   string
		back    string
		wantErr error
	}{
		{
			name:    "valid card",
			userID:  userID,
			topicID: topicID,
			front:   "2+2",
			back:    "4",
			wantErr: nil,
		},
		{
			name:    "empty user ID",
			userID:  uuid.Nil,
			topicID: topicID,
			front:   "2+2",
			back:    "4",
			wantErr: domain.ErrCardUserIDEmpty,
		},
		{
			name:    "empty topic ID",
			userID:  userID,
			topicID: uuid.Nil,
			front:   "2+2",
			back:    "4",
			wantErr: domain.ErrCardTopicIDEmpty,
		},
		{
			name:    "empty front",
			userID:  userID,
			topicID: topicID,
			front:   "",
			back:    "4",
			wantErr: domain.ErrCardFrontEmpty,
		},
		{
			name:    "whitespace front",
			userID:  userID,
			topicID: topicID,
			front:   "   ",
			back:    "4",
			wantErr: domain.ErrCardFrontEmpty,
		},
		{
			name:    "empty back",
			userID:  userID,
			topicID: topicID,
			front:   "2+2",
			back:    "",
			wantErr: domain.ErrCardBackEmpty,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			card, err := domain.NewCard(tt.userID, tt.topicID, tt.front, tt.back)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, card)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.front, card.Front)
			assert.Equal(t, tt.back, card.Back)
		})
	}
}

func TestNewCardTrimsSides(t *testing.T) {
	t.Parallel()

	card, err := domain.NewCard(uuid.New(), uuid.New(), "  2+2 ", " 4  ")
	require.NoError(t, err)
	assert.Equal(t, "2+2", card.Front)
	assert.Equal(t, "4", card.Back)
}

func TestCardUpdate(t *testing.T) {
	t.Parallel()

	card, err := domain.NewCard(uuid.New(), uuid.New(), "2+2", "4")
	require.NoError(t, err)

	newFront := "  3+3  "
	newTopic := uuid.New()
	require.NoError(t, card.Update(&newFront, nil, &newTopic))
	assert.Equal(t, "3+3", card.Front)
	assert.Equal(t, "4", card.Back)
	assert.Equal(t, newTopic, card.TopicID)

	// Invalid update leaves the card unchanged.
	empty := ""
	assert.ErrorIs(t, card.Update(nil, &empty, nil), domain.ErrCardBackEmpty)
	assert.Equal(t, "4", card.Back)
}
