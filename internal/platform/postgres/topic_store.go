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

// TopicStore implements the store.TopicStore interface using a
// PostgreSQL database as the storage backend. Every query is scoped by
// user_id so an unowned topic is indistinguishable from a missing one.
type TopicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTopicStore creates a new PostgreSQL implementation of the
// TopicStore interface. If logger is nil, the default logger is used.
func NewTopicStore(db store.DBTX, logger *slog.Logger) *TopicStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TopicStore{
		db:     db,
		logger: logger.With(slog.String("component", "topic_store")),
	}
}

// Ensure TopicStore implements store.TopicStore interface
var _ store.TopicStore = (*TopicStore)(nil)

// WithTx implements store.TopicStore.WithTx
func (s *TopicStore) WithTx(tx *sql.Tx) store.TopicStore {
	return &TopicStore{db: tx, logger: s.logger}
}

// Create implements store.TopicStore.Create
func (s *TopicStore) Create(ctx context.Context, topic *domain.Topic) error {
	if err := topic.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO topics (id, user_id, name, parent_id, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		topic.ID, topic.UserID, topic.Name, topic.ParentID, topic.Position,
		topic.CreatedAt, topic.UpdatedAt)
	if err != nil {
		// The parent FK failing means the parent id does not exist.
		// Foreign-owner parents are caught by the service layer's
		// owner-scoped lookup before the insert.
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: parent: %v", store.ErrTopicNotFound, err)
		}
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TopicStore.GetByID
func (s *TopicStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Topic, error) {
	query := `
		SELECT id, user_id, name, parent_id, position, created_at, updated_at
		FROM topics
		WHERE id = $1 AND user_id = $2`

	return s.scanTopic(s.db.QueryRowContext(ctx, query, id, userID))
}

// FindByName implements store.TopicStore.FindByName
func (s *TopicStore) FindByName(
	ctx context.Context,
	userID uuid.UUID,
	name string,
	parentID *uuid.UUID,
) (*domain.Topic, error) {
	// Two statements instead of COALESCE tricks: NULL never equals NULL.
	if parentID == nil {
		query := `
			SELECT id, user_id, name, parent_id, position, created_at, updated_at
			FROM topics
			WHERE user_id = $1 AND name = $2 AND parent_id IS NULL
			ORDER BY created_at
			LIMIT 1`
		return s.scanTopic(s.db.QueryRowContext(ctx, query, userID, name))
	}

	query := `
		SELECT id, user_id, name, parent_id, position, created_at, updated_at
		FROM topics
		WHERE user_id = $1 AND name = $2 AND parent_id = $3
		ORDER BY created_at
		LIMIT 1`
	return s.scanTopic(s.db.QueryRowContext(ctx, query, userID, name, *parentID))
}

// ListByUser implements store.TopicStore.ListByUser
func (s *TopicStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Topic, error) {
	query := `
		SELECT id, user_id, name, parent_id, position, created_at, updated_at
		FROM topics
		WHERE user_id = $1
		ORDER BY position, created_at`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var topics []*domain.Topic
	for rows.Next() {
		var topic domain.Topic
		var parentID uuid.NullUUID
		err := rows.Scan(
			&topic.ID,
			&topic.UserID,
			&topic.Name,
			&parentID,
			&topic.Position,
			&topic.CreatedAt,
			&topic.UpdatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		if parentID.Valid {
			topic.ParentID = &parentID.UUID
		}
		topics = append(topics, &topic)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return topics, nil
}

// Update implements store.TopicStore.Update
func (s *TopicStore) Update(ctx context.Context, topic *domain.Topic) error {
	if err := topic.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE topics
		SET name = $3, parent_id = $4, position = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query,
		topic.ID, topic.UserID, topic.Name, topic.ParentID, topic.Position,
		topic.UpdatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: parent: %v", store.ErrTopicNotFound, err)
		}
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "topic"); err != nil {
		return store.ErrTopicNotFound
	}

	return nil
}

// DeleteSubtree implements store.TopicStore.DeleteSubtree
// Cards are removed by the cards.topic_id ON DELETE CASCADE constraint,
// and child topic rows in ids are deleted explicitly alongside their
// ancestors, so the whole subtree goes in one statement.
func (s *TopicStore) DeleteSubtree(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return store.ErrTopicNotFound
	}

	query := `DELETE FROM topics WHERE user_id = $1 AND id = ANY($2::uuid[])`

	result, err := s.db.ExecContext(ctx, query, userID, uuidStrings(ids))
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "topic"); err != nil {
		return store.ErrTopicNotFound
	}

	return nil
}

// scanTopic scans a single topic row into a domain.Topic.
func (s *TopicStore) scanTopic(row *sql.Row) (*domain.Topic, error) {
	var topic domain.Topic
	var parentID uuid.NullUUID
	err := row.Scan(
		&topic.ID,
		&topic.UserID,
		&topic.Name,
		&parentID,
		&topic.Position,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTopicNotFound
		}
		return nil, MapError(err)
	}
	if parentID.Valid {
		topic.ParentID = &parentID.UUID
	}
	return &topic, nil
}
