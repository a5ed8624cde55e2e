package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Topic validation errors
var (
	ErrTopicIDEmpty     = errors.New("topic ID cannot be empty")
	ErrTopicUserIDEmpty = errors.New("topic user ID cannot be empty")
	ErrTopicNameEmpty   = errors.New("topic name cannot be empty")
	ErrTopicNameTooLong = errors.New("topic name must be at most 150 characters")
	ErrTopicOwnParent   = errors.New("topic cannot be its own parent")
)

// Topic is a named node in a user's topic tree. A nil ParentID makes
// the topic a root. Cards attach to exactly one topic; studying a
// topic recursively aggregates the cards of its whole subtree.
type Topic struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Position  int        `json:"position"` // Sort order among siblings
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewTopic creates a new Topic owned by userID. parentID may be nil
// for a root-level topic. Returns an error if validation fails.
func NewTopic(userID uuid.UUID, name string, parentID *uuid.UUID, position int) (*Topic, error) {
	now := time.Now().UTC()
	topic := &Topic{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		ParentID:  parentID,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := topic.Validate(); err != nil {
		return nil, err
	}

	return topic, nil
}

// Validate checks if the Topic has valid data. Cycle detection needs
// the rest of the tree and lives in the topic service, not here.
func (t *Topic) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTopicIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTopicUserIDEmpty
	}

	if t.Name == "" {
		return ErrTopicNameEmpty
	}
	if len(t.Name) > 150 {
		return ErrTopicNameTooLong
	}

	if t.ParentID != nil && *t.ParentID == t.ID {
		return ErrTopicOwnParent
	}

	return nil
}

// Rename updates the topic's name and bumps the update timestamp.
func (t *Topic) Rename(name string) error {
	orig := t.Name
	t.Name = strings.TrimSpace(name)
	if err := t.Validate(); err != nil {
		t.Name = orig
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// SetParent reassigns the topic's parent. A nil parent moves the topic
// to the root level.
func (t *Topic) SetParent(parentID *uuid.UUID) error {
	orig := t.ParentID
	t.ParentID = parentID
	if err := t.Validate(); err != nil {
		t.ParentID = orig
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}
