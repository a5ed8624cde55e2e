package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/mocks"
	"github.com/jwhitt/flashstack/internal/store"
)

// cardFixture wires a CardService (and its TopicService) over fresh
// in-memory data.
func cardFixture(t *testing.T) (*CardService, *TopicService, *mocks.Data, uuid.UUID) {
	t.Helper()

	data := mocks.NewData()
	db := mocks.NewTxDB()

	topicSvc, err := NewTopicService(db, data.TopicStore(), nil)
	require.NoError(t, err)

	cardSvc, err := NewCardService(db, data.CardStore(), data.TopicStore(), topicSvc, nil)
	require.NoError(t, err)

	return cardSvc, topicSvc, data, uuid.New()
}

func TestCardServiceCreate(t *testing.T) {
	t.Parallel()

	t.Run("valid card", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		topic := mustCreateTopic(t, topics, userID, "Biology", nil)

		card, err := cards.Create(context.Background(), userID, topic.ID, "What is a cell?", "The basic unit of life")
		require.NoError(t, err)
		assert.Equal(t, topic.ID, card.TopicID)
		assert.Equal(t, "What is a cell?", card.Front)
	})

	t.Run("unknown topic", func(t *testing.T) {
		t.Parallel()
		cards, _, _, userID := cardFixture(t)

		_, err := cards.Create(context.Background(), userID, uuid.New(), "q", "a")
		assert.ErrorIs(t, err, store.ErrTopicNotFound)
	})

	t.Run("foreign topic looks missing", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		foreign := mustCreateTopic(t, topics, uuid.New(), "Theirs", nil)

		_, err := cards.Create(context.Background(), userID, foreign.ID, "q", "a")
		assert.ErrorIs(t, err, store.ErrTopicNotFound)
	})

	t.Run("empty front rejected", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		topic := mustCreateTopic(t, topics, userID, "Biology", nil)
		_, err := cards.Create(context.Background(), userID, topic.ID, "  ", "a")
		assert.ErrorIs(t, err, domain.ErrCardFrontEmpty)
	})
}

func TestCardServiceUpdate(t *testing.T) {
	t.Parallel()

	t.Run("edit text", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		topic := mustCreateTopic(t, topics, userID, "Biology", nil)
		card, err := cards.Create(context.Background(), userID, topic.ID, "q", "a")
		require.NoError(t, err)

		newFront := "revised question"
		updated, err := cards.Update(context.Background(), userID, card.ID, CardUpdate{Front: &newFront})
		require.NoError(t, err)
		assert.Equal(t, "revised question", updated.Front)
		assert.Equal(t, "a", updated.Back)
	})

	t.Run("move to another topic", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		src := mustCreateTopic(t, topics, userID, "Src", nil)
		dst := mustCreateTopic(t, topics, userID, "Dst", nil)
		card, err := cards.Create(context.Background(), userID, src.ID, "q", "a")
		require.NoError(t, err)

		updated, err := cards.Update(context.Background(), userID, card.ID, CardUpdate{TopicID: &dst.ID})
		require.NoError(t, err)
		assert.Equal(t, dst.ID, updated.TopicID)
	})

	t.Run("move to foreign topic rejected", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		src := mustCreateTopic(t, topics, userID, "Src", nil)
		foreign := mustCreateTopic(t, topics, uuid.New(), "Theirs", nil)
		card, err := cards.Create(context.Background(), userID, src.ID, "q", "a")
		require.NoError(t, err)

		_, err = cards.Update(context.Background(), userID, card.ID, CardUpdate{TopicID: &foreign.ID})
		assert.ErrorIs(t, err, store.ErrTopicNotFound)
	})

	t.Run("unknown card", func(t *testing.T) {
		t.Parallel()
		cards, _, _, userID := cardFixture(t)

		front := "x"
		_, err := cards.Update(context.Background(), userID, uuid.New(), CardUpdate{Front: &front})
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func TestCardServiceDelete(t *testing.T) {
	t.Parallel()
	cards, topics, _, userID := cardFixture(t)

	topic := mustCreateTopic(t, topics, userID, "Biology", nil)
	card, err := cards.Create(context.Background(), userID, topic.ID, "q", "a")
	require.NoError(t, err)

	require.NoError(t, cards.Delete(context.Background(), userID, card.ID))
	assert.ErrorIs(t, cards.Delete(context.Background(), userID, card.ID), store.ErrCardNotFound)
}

func TestCardServiceListForStudy(t *testing.T) {
	t.Parallel()

	t.Run("recursive aggregates the subtree", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		root := mustCreateTopic(t, topics, userID, "root", nil)
		childA := mustCreateTopic(t, topics, userID, "a", &root.ID)
		childB := mustCreateTopic(t, topics, userID, "b", &root.ID)
		sibling := mustCreateTopic(t, topics, userID, "sibling", nil)

		_, err := cards.Create(context.Background(), userID, childA.ID, "qa", "aa")
		require.NoError(t, err)
		_, err = cards.Create(context.Background(), userID, childB.ID, "qb", "ab")
		require.NoError(t, err)
		_, err = cards.Create(context.Background(), userID, sibling.ID, "qs", "as")
		require.NoError(t, err)

		session, err := cards.ListForStudy(context.Background(), userID, root.ID, true)
		require.NoError(t, err)
		require.Len(t, session, 2)
		for _, c := range session {
			assert.NotEqual(t, sibling.ID, c.TopicID)
		}
	})

	t.Run("non-recursive scopes to the topic itself", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		root := mustCreateTopic(t, topics, userID, "root", nil)
		child := mustCreateTopic(t, topics, userID, "child", &root.ID)

		_, err := cards.Create(context.Background(), userID, root.ID, "qr", "ar")
		require.NoError(t, err)
		_, err = cards.Create(context.Background(), userID, child.ID, "qc", "ac")
		require.NoError(t, err)

		session, err := cards.ListForStudy(context.Background(), userID, root.ID, false)
		require.NoError(t, err)
		require.Len(t, session, 1)
		assert.Equal(t, root.ID, session[0].TopicID)
	})

	t.Run("stable creation order", func(t *testing.T) {
		t.Parallel()
		cards, topics, data, userID := cardFixture(t)

		topic := mustCreateTopic(t, topics, userID, "ordered", nil)

		base := time.Now().Add(-time.Hour)
		var want []uuid.UUID
		for i := 0; i < 5; i++ {
			card, err := domain.NewCard(userID, topic.ID, "q", "a")
			require.NoError(t, err)
			card.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, data.CardStore().Create(context.Background(), card))
			want = append(want, card.ID)
		}

		for i := 0; i < 3; i++ {
			session, err := cards.ListForStudy(context.Background(), userID, topic.ID, true)
			require.NoError(t, err)
			require.Len(t, session, 5)
			for j, c := range session {
				assert.Equal(t, want[j], c.ID)
			}
		}
	})

	t.Run("empty topic yields empty session", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		topic := mustCreateTopic(t, topics, userID, "empty", nil)

		session, err := cards.ListForStudy(context.Background(), userID, topic.ID, true)
		require.NoError(t, err)
		assert.Empty(t, session)
	})

	t.Run("unknown topic", func(t *testing.T) {
		t.Parallel()
		cards, _, _, userID := cardFixture(t)

		_, err := cards.ListForStudy(context.Background(), userID, uuid.New(), true)
		assert.ErrorIs(t, err, store.ErrTopicNotFound)
	})
}
