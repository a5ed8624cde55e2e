package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card validation errors
var (
	ErrCardIDEmpty      = errors.New("card ID cannot be empty")
	ErrCardUserIDEmpty  = errors.New("card user ID cannot be empty")
	ErrCardTopicIDEmpty = errors.New("card topic ID cannot be empty")
	ErrCardFrontEmpty   = errors.New("card front cannot be empty")
	ErrCardBackEmpty    = errors.New("card back cannot be empty")
)

// Card is a front/back question-answer pair belonging to exactly one
// topic. The owner is carried redundantly for cheap ownership checks.
type Card struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TopicID   uuid.UUID `json:"topic_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCard creates a new Card under the given topic.
// Returns an error if validation fails.
func NewCard(userID, topicID uuid.UUID, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:        uuid.New(),
		UserID:    userID,
		TopicID:   topicID,
		Front:     strings.TrimSpace(front),
		Back:      strings.TrimSpace(back),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if c.TopicID == uuid.Nil {
		return ErrCardTopicIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	return nil
}

// Update applies the given fields and bumps the update timestamp.
// Nil pointers leave the corresponding field unchanged.
func (c *Card) Update(front, back *string, topicID *uuid.UUID) error {
	orig := *c
	if front != nil {
		c.Front = strings.TrimSpace(*front)
	}
	if back != nil {
		c.Back = strings.TrimSpace(*back)
	}
	if topicID != nil {
		c.TopicID = *topicID
	}

	if err := c.Validate(); err != nil {
		*c = orig
		return err
	}

	c.UpdatedAt = time.Now().UTC()
	return nil
}
