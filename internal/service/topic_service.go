package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/platform/logger"
	"github.com/jwhitt/flashstack/internal/store"
)

// newTopicPosition sorts freshly created topics after explicitly
// ordered siblings until the client reorders them.
const newTopicPosition = 999

// ReorderItem is one entry of a bulk reorder request: a topic, its new
// sibling position, and optionally a new parent (SetParent true with a
// nil ParentID moves the topic to the root level).
type ReorderItem struct {
	ID        uuid.UUID
	Position  int
	SetParent bool
	ParentID  *uuid.UUID
}

// TopicService implements the topic tree operations: creation, rename,
// move, reorder, cascade delete, and subtree collection.
type TopicService struct {
	db         *sql.DB
	topicStore store.TopicStore
	logger     *slog.Logger
}

// NewTopicService creates a new TopicService.
// Returns an error if any required dependency is nil.
func NewTopicService(db *sql.DB, topicStore store.TopicStore, log *slog.Logger) (*TopicService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if topicStore == nil {
		return nil, domain.NewValidationError("topicStore", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}
	return &TopicService{
		db:         db,
		topicStore: topicStore,
		logger:     log.With(slog.String("component", "topic_service")),
	}, nil
}

// List returns all of the user's topics ordered by position.
func (s *TopicService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Topic, error) {
	return s.topicStore.ListByUser(ctx, userID)
}

// Get returns a single topic owned by the user.
func (s *TopicService) Get(ctx context.Context, userID, topicID uuid.UUID) (*domain.Topic, error) {
	return s.topicStore.GetByID(ctx, userID, topicID)
}

// Create creates a new topic for the user. A non-nil parentID must
// reference a topic owned by the same user; store lookups are
// owner-scoped, so a foreign parent surfaces as ErrTopicNotFound.
func (s *TopicService) Create(
	ctx context.Context,
	userID uuid.UUID,
	name string,
	parentID *uuid.UUID,
) (*domain.Topic, error) {
	if parentID != nil {
		if _, err := s.topicStore.GetByID(ctx, userID, *parentID); err != nil {
			return nil, fmt.Errorf("resolve parent: %w", err)
		}
	}

	topic, err := domain.NewTopic(userID, name, parentID, newTopicPosition)
	if err != nil {
		return nil, err
	}

	if err := s.topicStore.Create(ctx, topic); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("topic created",
		slog.String("topic_id", topic.ID.String()),
		slog.String("user_id", userID.String()))

	return topic, nil
}

// Rename changes a topic's name.
func (s *TopicService) Rename(
	ctx context.Context,
	userID, topicID uuid.UUID,
	name string,
) (*domain.Topic, error) {
	topic, err := s.topicStore.GetByID(ctx, userID, topicID)
	if err != nil {
		return nil, err
	}

	if err := topic.Rename(name); err != nil {
		return nil, err
	}

	if err := s.topicStore.Update(ctx, topic); err != nil {
		return nil, err
	}

	return topic, nil
}

// Move reassigns a topic's parent. A nil newParentID moves the topic
// to the root level. Fails with domain.ErrTopicCycle when the new
// parent is the topic itself or one of its descendants.
func (s *TopicService) Move(
	ctx context.Context,
	userID, topicID uuid.UUID,
	newParentID *uuid.UUID,
) (*domain.Topic, error) {
	topic, err := s.topicStore.GetByID(ctx, userID, topicID)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		topics, err := s.topicStore.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		parents, exists := parentIndex(topics)
		if !exists[*newParentID] {
			return nil, fmt.Errorf("resolve parent: %w", store.ErrTopicNotFound)
		}
		if err := checkNoCycle(parents, topicID, *newParentID); err != nil {
			return nil, err
		}
	}

	if err := topic.SetParent(newParentID); err != nil {
		return nil, err
	}

	if err := s.topicStore.Update(ctx, topic); err != nil {
		return nil, err
	}

	return topic, nil
}

// Reorder applies a bulk position/parent update in a single
// transaction, as produced by the client after a drag-and-drop. Every
// parent change passes the same cycle check as Move, evaluated against
// the tree as reshaped by the preceding items.
func (s *TopicService) Reorder(ctx context.Context, userID uuid.UUID, items []ReorderItem) error {
	if len(items) == 0 {
		return nil
	}

	topics, err := s.topicStore.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	parents, exists := parentIndex(topics)
	byID := make(map[uuid.UUID]*domain.Topic, len(topics))
	for _, t := range topics {
		byID[t.ID] = t
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.topicStore.WithTx(tx)

		for i, item := range items {
			topic, ok := byID[item.ID]
			if !ok {
				return fmt.Errorf("reorder item %d: %w", i, store.ErrTopicNotFound)
			}

			if item.SetParent {
				if item.ParentID != nil {
					if !exists[*item.ParentID] {
						return fmt.Errorf("reorder item %d: resolve parent: %w", i, store.ErrTopicNotFound)
					}
					if err := checkNoCycle(parents, item.ID, *item.ParentID); err != nil {
						return fmt.Errorf("reorder item %d: %w", i, err)
					}
				}
				if err := topic.SetParent(item.ParentID); err != nil {
					return fmt.Errorf("reorder item %d: %w", i, err)
				}
				// Later items are checked against the updated shape.
				parents[item.ID] = item.ParentID
			}

			topic.Position = item.Position
			if err := txStore.Update(ctx, topic); err != nil {
				return fmt.Errorf("reorder item %d: %w", i, err)
			}
		}

		return nil
	})
}

// Delete removes a topic, all of its descendant topics, and their
// cards (cascade policy). The whole subtree goes in one transaction.
func (s *TopicService) Delete(ctx context.Context, userID, topicID uuid.UUID) error {
	subtree, err := s.Descendants(ctx, userID, topicID)
	if err != nil {
		return err
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("deleting topic subtree",
		slog.String("topic_id", topicID.String()),
		slog.Int("subtree_size", len(subtree)))

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.topicStore.WithTx(tx).DeleteSubtree(ctx, userID, subtree)
	})
}

// Descendants returns the ids of the subtree rooted at topicID,
// including topicID itself. The adjacency index is built from a single
// owner-wide query and walked iteratively, so arbitrarily deep trees
// cost one query and no recursion.
func (s *TopicService) Descendants(ctx context.Context, userID, topicID uuid.UUID) ([]uuid.UUID, error) {
	topics, err := s.topicStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	children := make(map[uuid.UUID][]uuid.UUID, len(topics))
	found := false
	for _, t := range topics {
		if t.ID == topicID {
			found = true
		}
		if t.ParentID != nil {
			children[*t.ParentID] = append(children[*t.ParentID], t.ID)
		}
	}
	if !found {
		return nil, store.ErrTopicNotFound
	}

	// Track visited ids so a parent cycle in corrupt data cannot loop
	// the walk forever.
	visited := map[uuid.UUID]bool{topicID: true}
	scope := []uuid.UUID{topicID}
	stack := []uuid.UUID{topicID}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, kid := range children[curr] {
			if visited[kid] {
				continue
			}
			visited[kid] = true
			scope = append(scope, kid)
			stack = append(stack, kid)
		}
	}

	return scope, nil
}

// parentIndex builds an id -> parent map and an existence set over the
// user's topics.
func parentIndex(topics []*domain.Topic) (map[uuid.UUID]*uuid.UUID, map[uuid.UUID]bool) {
	parents := make(map[uuid.UUID]*uuid.UUID, len(topics))
	exists := make(map[uuid.UUID]bool, len(topics))
	for _, t := range topics {
		parents[t.ID] = t.ParentID
		exists[t.ID] = true
	}
	return parents, exists
}

// checkNoCycle walks the ancestor chain upward from newParentID. If it
// reaches topicID the move would make the topic its own ancestor. The
// walk is bounded by the map size as a guard against corrupt data.
func checkNoCycle(parents map[uuid.UUID]*uuid.UUID, topicID, newParentID uuid.UUID) error {
	if newParentID == topicID {
		return fmt.Errorf("topic %s: %w", topicID, domain.ErrTopicCycle)
	}

	curr := newParentID
	for range parents {
		parent, ok := parents[curr]
		if !ok || parent == nil {
			return nil
		}
		if *parent == topicID {
			return fmt.Errorf("topic %s: %w", topicID, domain.ErrTopicCycle)
		}
		curr = *parent
	}

	// Ran out of steps: the existing chain never terminated, which
	// itself means a cycle is present.
	return fmt.Errorf("topic %s: %w", topicID, domain.ErrTopicCycle)
}
