package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jwhitt/flashstack/internal/domain"
)

// TopicStore defines the interface for topic data persistence.
// All lookups are scoped to an owner: a topic that exists but belongs
// to another user behaves exactly like a missing topic.
type TopicStore interface {
	// Create saves a new topic to the store.
	Create(ctx context.Context, topic *domain.Topic) error

	// GetByID retrieves a topic by ID, scoped to the owner.
	// Returns ErrTopicNotFound if absent or owned by someone else.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Topic, error)

	// FindByName retrieves an owner's topic by exact name and parent.
	// A nil parentID matches root-level topics.
	// Returns ErrTopicNotFound when no such topic exists.
	FindByName(ctx context.Context, userID uuid.UUID, name string, parentID *uuid.UUID) (*domain.Topic, error)

	// ListByUser returns all of an owner's topics ordered by position
	// then creation time. The full list is the arena the service layer
	// builds its adjacency index over.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Topic, error)

	// Update persists name, parent, and position changes.
	// Returns ErrTopicNotFound if absent or owned by someone else.
	Update(ctx context.Context, topic *domain.Topic) error

	// DeleteSubtree removes the given topics and, through the schema's
	// cascade, their cards. The caller supplies the full subtree id set.
	DeleteSubtree(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error

	// WithTx returns a new TopicStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TopicStore
}
