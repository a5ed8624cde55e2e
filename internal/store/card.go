package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jwhitt/flashstack/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card to the store.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by ID, scoped to the owner.
	// Returns ErrCardNotFound if absent or owned by someone else.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Card, error)

	// ListByTopics returns the owner's cards whose topic is in topicIDs,
	// ordered by creation time then ID so a study session sees a stable
	// sequence.
	ListByTopics(ctx context.Context, userID uuid.UUID, topicIDs []uuid.UUID) ([]*domain.Card, error)

	// ListByUser returns all of the owner's cards, ordered as above.
	// Used by export.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error)

	// Update persists front, back, and topic changes.
	// Returns ErrCardNotFound if absent or owned by someone else.
	Update(ctx context.Context, card *domain.Card) error

	// Delete removes a card.
	// Returns ErrCardNotFound if absent or owned by someone else.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) CardStore
}
