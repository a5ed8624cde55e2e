package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/platform/logger"
	"github.com/jwhitt/flashstack/internal/store"
)

// ImportEntry is one element of a bulk import payload. Topic names a
// root-level topic; Category, if present, names a child topic nested
// under it. Prompt/Completion are accepted as aliases of Front/Back
// for compatibility with fine-tuning style exports.
type ImportEntry struct {
	Topic      string `json:"topic,omitempty"`
	Category   string `json:"category,omitempty"`
	Front      string `json:"front,omitempty"`
	Back       string `json:"back,omitempty"`
	Prompt     string `json:"prompt,omitempty"`
	Completion string `json:"completion,omitempty"`
}

// ImportFailure reports a single entry that could not be imported.
type ImportFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a bulk import: how many cards were created
// and which entries failed. Import is best-effort per entry, so both
// can be non-zero at once.
type ImportResult struct {
	Imported int             `json:"imported"`
	Failures []ImportFailure `json:"failures,omitempty"`
}

// ExportEntry is one element of an export payload, shaped to be
// re-importable as an ImportEntry.
type ExportEntry struct {
	Topic    string `json:"topic,omitempty"`
	Category string `json:"category,omitempty"`
	Front    string `json:"front"`
	Back     string `json:"back"`
}

// front returns the entry's front text, falling back to the prompt alias.
func (e ImportEntry) front() string {
	if e.Front != "" {
		return e.Front
	}
	return e.Prompt
}

// back returns the entry's back text, falling back to the completion alias.
func (e ImportEntry) back() string {
	if e.Back != "" {
		return e.Back
	}
	return e.Completion
}

// Import creates cards from entries for the user. Each entry resolves
// its topic as follows: a non-nil forcedTopicID wins; otherwise the
// entry's topic name (and category child, if present) is found or
// created at the root level; entries naming no topic land in the
// default topic, which is created if the user deleted it.
//
// Each entry runs in its own transaction: a bad entry is reported in
// the result with its index and reason and the rest proceed.
func (s *CardService) Import(
	ctx context.Context,
	userID uuid.UUID,
	entries []ImportEntry,
	forcedTopicID *uuid.UUID,
) (*ImportResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if forcedTopicID != nil {
		if _, err := s.topicStore.GetByID(ctx, userID, *forcedTopicID); err != nil {
			return nil, fmt.Errorf("resolve forced topic: %w", err)
		}
	}

	result := &ImportResult{}
	for i, entry := range entries {
		if err := s.importEntry(ctx, userID, entry, forcedTopicID); err != nil {
			result.Failures = append(result.Failures, ImportFailure{
				Index:  i,
				Reason: err.Error(),
			})
			continue
		}
		result.Imported++
	}

	log.Info("import finished",
		slog.String("user_id", userID.String()),
		slog.Int("imported", result.Imported),
		slog.Int("failed", len(result.Failures)))

	return result, nil
}

func (s *CardService) importEntry(
	ctx context.Context,
	userID uuid.UUID,
	entry ImportEntry,
	forcedTopicID *uuid.UUID,
) error {
	front := strings.TrimSpace(entry.front())
	back := strings.TrimSpace(entry.back())
	if front == "" {
		return domain.ErrCardFrontEmpty
	}
	if back == "" {
		return domain.ErrCardBackEmpty
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTopics := s.topicStore.WithTx(tx)
		txCards := s.cardStore.WithTx(tx)

		topicID, err := s.resolveImportTopic(ctx, txTopics, userID, entry, forcedTopicID)
		if err != nil {
			return err
		}

		card, err := domain.NewCard(userID, topicID, front, back)
		if err != nil {
			return err
		}
		return txCards.Create(ctx, card)
	})
}

// resolveImportTopic picks the topic an imported card lands in.
// Topic lookup is idempotent: re-importing an entry reuses the topic
// it created the first time.
func (s *CardService) resolveImportTopic(
	ctx context.Context,
	topics store.TopicStore,
	userID uuid.UUID,
	entry ImportEntry,
	forcedTopicID *uuid.UUID,
) (uuid.UUID, error) {
	if forcedTopicID != nil {
		return *forcedTopicID, nil
	}

	name := strings.TrimSpace(entry.Topic)
	if name == "" {
		// Fall back to the default topic, recreating it if needed.
		def, err := s.findOrCreateTopic(ctx, topics, userID, domain.DefaultTopicName, nil)
		if err != nil {
			return uuid.Nil, err
		}
		return def.ID, nil
	}

	topic, err := s.findOrCreateTopic(ctx, topics, userID, name, nil)
	if err != nil {
		return uuid.Nil, err
	}

	category := strings.TrimSpace(entry.Category)
	if category == "" {
		return topic.ID, nil
	}

	child, err := s.findOrCreateTopic(ctx, topics, userID, category, &topic.ID)
	if err != nil {
		return uuid.Nil, err
	}
	return child.ID, nil
}

func (s *CardService) findOrCreateTopic(
	ctx context.Context,
	topics store.TopicStore,
	userID uuid.UUID,
	name string,
	parentID *uuid.UUID,
) (*domain.Topic, error) {
	existing, err := topics.FindByName(ctx, userID, name, parentID)
	if err == nil {
		return existing, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, err
	}

	topic, err := domain.NewTopic(userID, name, parentID, newTopicPosition)
	if err != nil {
		return nil, err
	}
	if err := topics.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// Export returns all of the user's cards in import format. A card in a
// root-level topic exports that topic's name; a card in a nested topic
// exports its parent chain's root as the topic and the immediate topic
// as the category, so exporting and re-importing reproduces the same
// two-level placement the import format can express.
func (s *CardService) Export(ctx context.Context, userID uuid.UUID) ([]ExportEntry, error) {
	cards, err := s.cardStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	topics, err := s.topicStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Topic, len(topics))
	for _, t := range topics {
		byID[t.ID] = t
	}

	entries := make([]ExportEntry, 0, len(cards))
	for _, card := range cards {
		entry := ExportEntry{Front: card.Front, Back: card.Back}

		if topic, ok := byID[card.TopicID]; ok {
			if topic.ParentID == nil {
				entry.Topic = topic.Name
			} else if parent, ok := byID[*topic.ParentID]; ok {
				entry.Topic = rootName(byID, parent, len(topics))
				entry.Category = topic.Name
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// rootName walks up from the given topic to the root of its chain.
// The walk is bounded by the topic count.
func rootName(byID map[uuid.UUID]*domain.Topic, topic *domain.Topic, bound int) string {
	curr := topic
	for i := 0; i < bound && curr.ParentID != nil; i++ {
		parent, ok := byID[*curr.ParentID]
		if !ok {
			break
		}
		curr = parent
	}
	return curr.Name
}
