package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/store"
)

func TestCardServiceImport(t *testing.T) {
	t.Parallel()

	t.Run("creates topic and card", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		result, err := cards.Import(context.Background(), userID, []ImportEntry{
			{Topic: "Math", Front: "2+2", Back: "4"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		assert.Empty(t, result.Failures)

		topic, err := topics.List(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, topic, 1)
		assert.Equal(t, "Math", topic[0].Name)
	})

	t.Run("re-import reuses the topic", func(t *testing.T) {
		t.Parallel()
		cards, topics, data, userID := cardFixture(t)

		entry := ImportEntry{Topic: "Math", Front: "2+2", Back: "4"}
		for i := 0; i < 2; i++ {
			result, err := cards.Import(context.Background(), userID, []ImportEntry{entry}, nil)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Imported)
		}

		all, err := topics.List(context.Background(), userID)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		stored, err := data.CardStore().ListByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	t.Run("category nests under the topic", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		result, err := cards.Import(context.Background(), userID, []ImportEntry{
			{Topic: "Math", Category: "Algebra", Front: "x+x", Back: "2x"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)

		all, err := topics.List(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, all, 2)

		byName := make(map[string]*domain.Topic, len(all))
		for _, topic := range all {
			byName[topic.Name] = topic
		}
		require.Contains(t, byName, "Math")
		require.Contains(t, byName, "Algebra")
		require.NotNil(t, byName["Algebra"].ParentID)
		assert.Equal(t, byName["Math"].ID, *byName["Algebra"].ParentID)
	})

	t.Run("prompt and completion aliases", func(t *testing.T) {
		t.Parallel()
		cards, _, data, userID := cardFixture(t)

		result, err := cards.Import(context.Background(), userID, []ImportEntry{
			{Topic: "Tuning", Prompt: "capital of France?", Completion: "Paris"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)

		stored, err := data.CardStore().ListByUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "capital of France?", stored[0].Front)
		assert.Equal(t, "Paris", stored[0].Back)
	})

	t.Run("missing topic falls back to default", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		result, err := cards.Import(context.Background(), userID, []ImportEntry{
			{Front: "loose card", Back: "lands somewhere"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)

		def, err := topics.List(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, def, 1)
		assert.Equal(t, domain.DefaultTopicName, def[0].Name)
	})

	t.Run("forced topic overrides entry names", func(t *testing.T) {
		t.Parallel()
		cards, topics, data, userID := cardFixture(t)

		target := mustCreateTopic(t, topics, userID, "Inbox", nil)

		result, err := cards.Import(context.Background(), userID, []ImportEntry{
			{Topic: "Ignored", Front: "q", Back: "a"},
		}, &target.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)

		all, err := topics.List(context.Background(), userID)
		require.NoError(t, err)
		assert.Len(t, all, 1) // no "Ignored" topic was created

		stored, err := data.CardStore().ListByUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, target.ID, stored[0].TopicID)
	})

	t.Run("unknown forced topic fails the whole import", func(t *testing.T) {
		t.Parallel()
		cards, _, _, userID := cardFixture(t)

		missing := uuid.New()
		_, err := cards.Import(context.Background(), userID, []ImportEntry{
			{Front: "q", Back: "a"},
		}, &missing)
		assert.ErrorIs(t, err, store.ErrTopicNotFound)
	})

	t.Run("bad entries are reported and the rest land", func(t *testing.T) {
		t.Parallel()
		cards, _, data, userID := cardFixture(t)

		result, err := cards.Import(context.Background(), userID, []ImportEntry{
			{Topic: "Math", Front: "2+2", Back: "4"},
			{Topic: "Math", Front: "", Back: "orphan answer"},
			{Topic: "Math", Front: "3+3", Back: "6"},
			{Topic: "Math", Front: "no answer", Back: "  "},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Imported)
		require.Len(t, result.Failures, 2)
		assert.Equal(t, 1, result.Failures[0].Index)
		assert.Equal(t, 3, result.Failures[1].Index)
		assert.NotEmpty(t, result.Failures[0].Reason)

		stored, err := data.CardStore().ListByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})
}

func TestCardServiceExport(t *testing.T) {
	t.Parallel()

	t.Run("round trips through import format", func(t *testing.T) {
		t.Parallel()
		cards, _, _, userID := cardFixture(t)

		_, err := cards.Import(context.Background(), userID, []ImportEntry{
			{Topic: "Math", Category: "Algebra", Front: "x+x", Back: "2x"},
			{Topic: "History", Front: "1066?", Back: "Hastings"},
		}, nil)
		require.NoError(t, err)

		entries, err := cards.Export(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		byFront := make(map[string]ExportEntry, len(entries))
		for _, e := range entries {
			byFront[e.Front] = e
		}

		algebra := byFront["x+x"]
		assert.Equal(t, "Math", algebra.Topic)
		assert.Equal(t, "Algebra", algebra.Category)

		history := byFront["1066?"]
		assert.Equal(t, "History", history.Topic)
		assert.Empty(t, history.Category)
	})

	t.Run("empty account exports empty list", func(t *testing.T) {
		t.Parallel()
		cards, _, _, userID := cardFixture(t)

		entries, err := cards.Export(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("deep nesting exports the chain root", func(t *testing.T) {
		t.Parallel()
		cards, topics, _, userID := cardFixture(t)

		root := mustCreateTopic(t, topics, userID, "Science", nil)
		mid := mustCreateTopic(t, topics, userID, "Biology", &root.ID)
		leaf := mustCreateTopic(t, topics, userID, "Genetics", &mid.ID)

		_, err := cards.Create(context.Background(), userID, leaf.ID, "DNA?", "deoxyribonucleic acid")
		require.NoError(t, err)

		entries, err := cards.Export(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Science", entries[0].Topic)
		assert.Equal(t, "Genetics", entries[0].Category)
	})
}
