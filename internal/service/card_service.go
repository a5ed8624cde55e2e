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

// CardUpdate carries the optional fields of a card update; nil
// pointers leave the corresponding field unchanged.
type CardUpdate struct {
	Front   *string
	Back    *string
	TopicID *uuid.UUID
}

// CardService implements card operations: CRUD, recursive study
// aggregation, bulk import, and export.
type CardService struct {
	db         *sql.DB
	cardStore  store.CardStore
	topicStore store.TopicStore
	topics     *TopicService
	logger     *slog.Logger
}

// NewCardService creates a new CardService.
// Returns an error if any required dependency is nil.
func NewCardService(
	db *sql.DB,
	cardStore store.CardStore,
	topicStore store.TopicStore,
	topics *TopicService,
	log *slog.Logger,
) (*CardService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if cardStore == nil {
		return nil, domain.NewValidationError("cardStore", "cannot be nil", domain.ErrValidation)
	}
	if topicStore == nil {
		return nil, domain.NewValidationError("topicStore", "cannot be nil", domain.ErrValidation)
	}
	if topics == nil {
		return nil, domain.NewValidationError("topics", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}
	return &CardService{
		db:         db,
		cardStore:  cardStore,
		topicStore: topicStore,
		topics:     topics,
		logger:     log.With(slog.String("component", "card_service")),
	}, nil
}

// Create creates a new card under the given topic. The topic must be
// owned by the user.
func (s *CardService) Create(
	ctx context.Context,
	userID, topicID uuid.UUID,
	front, back string,
) (*domain.Card, error) {
	if _, err := s.topicStore.GetByID(ctx, userID, topicID); err != nil {
		return nil, fmt.Errorf("resolve topic: %w", err)
	}

	card, err := domain.NewCard(userID, topicID, front, back)
	if err != nil {
		return nil, err
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("topic_id", topicID.String()))

	return card, nil
}

// Update applies the given changes to a card. Moving the card to a new
// topic validates that the topic is owned by the user.
func (s *CardService) Update(
	ctx context.Context,
	userID, cardID uuid.UUID,
	upd CardUpdate,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if upd.TopicID != nil {
		if _, err := s.topicStore.GetByID(ctx, userID, *upd.TopicID); err != nil {
			return nil, fmt.Errorf("resolve topic: %w", err)
		}
	}

	if err := card.Update(upd.Front, upd.Back, upd.TopicID); err != nil {
		return nil, err
	}

	if err := s.cardStore.Update(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// Delete removes a single card.
func (s *CardService) Delete(ctx context.Context, userID, cardID uuid.UUID) error {
	if err := s.cardStore.Delete(ctx, userID, cardID); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("card deleted",
		slog.String("card_id", cardID.String()))

	return nil
}

// ListForStudy returns the cards for a study session on the given
// topic. With recursive set, the whole subtree's cards are aggregated;
// otherwise only the topic's own cards. The order is stable across
// fetches of the same session (creation order).
func (s *CardService) ListForStudy(
	ctx context.Context,
	userID, topicID uuid.UUID,
	recursive bool,
) ([]*domain.Card, error) {
	var scope []uuid.UUID
	if recursive {
		subtree, err := s.topics.Descendants(ctx, userID, topicID)
		if err != nil {
			return nil, err
		}
		scope = subtree
	} else {
		if _, err := s.topicStore.GetByID(ctx, userID, topicID); err != nil {
			return nil, err
		}
		scope = []uuid.UUID{topicID}
	}

	return s.cardStore.ListByTopics(ctx, userID, scope)
}
