package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/store"
)

// CardStore implements the store.CardStore interface using a
// PostgreSQL database as the storage backend.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a new PostgreSQL implementation of the
// CardStore interface. If logger is nil, the default logger is used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{db: tx, logger: s.logger}
}

// Create implements store.CardStore.Create
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (id, user_id, topic_id, front, back, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		card.ID, card.UserID, card.TopicID, card.Front, card.Back,
		card.CreatedAt, card.UpdatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrTopicNotFound, err)
		}
		return MapError(err)
	}

	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *CardStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Card, error) {
	query := `
		SELECT id, user_id, topic_id, front, back, created_at, updated_at
		FROM cards
		WHERE id = $1 AND user_id = $2`

	return s.scanCard(s.db.QueryRowContext(ctx, query, id, userID))
}

// ListByTopics implements store.CardStore.ListByTopics
func (s *CardStore) ListByTopics(
	ctx context.Context,
	userID uuid.UUID,
	topicIDs []uuid.UUID,
) ([]*domain.Card, error) {
	if len(topicIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, user_id, topic_id, front, back, created_at, updated_at
		FROM cards
		WHERE user_id = $1 AND topic_id = ANY($2::uuid[])
		ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, userID, uuidStrings(topicIDs))
	if err != nil {
		return nil, MapError(err)
	}
	return s.collectCards(rows)
}

// ListByUser implements store.CardStore.ListByUser
func (s *CardStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	query := `
		SELECT id, user_id, topic_id, front, back, created_at, updated_at
		FROM cards
		WHERE user_id = $1
		ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	return s.collectCards(rows)
}

// Update implements store.CardStore.Update
func (s *CardStore) Update(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE cards
		SET topic_id = $3, front = $4, back = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query,
		card.ID, card.UserID, card.TopicID, card.Front, card.Back, card.UpdatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrTopicNotFound, err)
		}
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "card"); err != nil {
		return store.ErrCardNotFound
	}

	return nil
}

// Delete implements store.CardStore.Delete
func (s *CardStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM cards WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "card"); err != nil {
		return store.ErrCardNotFound
	}

	return nil
}

// collectCards drains a card result set, closing the rows.
func (s *CardStore) collectCards(rows *sql.Rows) ([]*domain.Card, error) {
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var cards []*domain.Card
	for rows.Next() {
		var card domain.Card
		err := rows.Scan(
			&card.ID,
			&card.UserID,
			&card.TopicID,
			&card.Front,
			&card.Back,
			&card.CreatedAt,
			&card.UpdatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, &card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return cards, nil
}

// scanCard scans a single card row into a domain.Card.
func (s *CardStore) scanCard(row *sql.Row) (*domain.Card, error) {
	var card domain.Card
	err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.TopicID,
		&card.Front,
		&card.Back,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, MapError(err)
	}
	return &card, nil
}

// uuidStrings renders ids as text for a $n::uuid[] parameter.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
