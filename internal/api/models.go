package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwhitt/flashstack/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT used for API authorization.
	AccessToken string `json:"token"`

	// RefreshToken is the JWT used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TopicResponse represents a topic in API responses.
type TopicResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Position  int        `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewTopicResponse converts a domain topic to its API representation.
func NewTopicResponse(t *domain.Topic) TopicResponse {
	return TopicResponse{
		ID:        t.ID,
		Name:      t.Name,
		ParentID:  t.ParentID,
		Position:  t.Position,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// CreateTopicRequest defines the payload for topic creation.
type CreateTopicRequest struct {
	Name     string     `json:"name" validate:"required,max=150"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// UpdateTopicRequest defines the payload for renaming and/or moving a
// topic. Omitted fields are left unchanged; ParentID distinguishes
// "absent" from "null" (move to root) via SetParent.
type UpdateTopicRequest struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	SetParent bool       `json:"set_parent,omitempty"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
}

// ReorderTopicsRequest is the bulk position/parent update sent after a
// drag-and-drop. Items apply in order within one transaction.
type ReorderTopicsRequest struct {
	Items []ReorderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReorderItemRequest is one item of a ReorderTopicsRequest.
type ReorderItemRequest struct {
	ID        uuid.UUID  `json:"id"        validate:"required"`
	Position  int        `json:"position"`
	SetParent bool       `json:"set_parent,omitempty"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
}

// CardResponse represents a card in API responses.
type CardResponse struct {
	ID        uuid.UUID `json:"id"`
	TopicID   uuid.UUID `json:"topic_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCardResponse converts a domain card to its API representation.
func NewCardResponse(c *domain.Card) CardResponse {
	return CardResponse{
		ID:        c.ID,
		TopicID:   c.TopicID,
		Front:     c.Front,
		Back:      c.Back,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CreateCardRequest defines the payload for card creation.
type CreateCardRequest struct {
	TopicID uuid.UUID `json:"topic_id" validate:"required"`
	Front   string    `json:"front"    validate:"required"`
	Back    string    `json:"back"     validate:"required"`
}

// UpdateCardRequest defines the payload for card updates. Omitted
// fields are left unchanged.
type UpdateCardRequest struct {
	Front   *string    `json:"front,omitempty" validate:"omitempty,min=1"`
	Back    *string    `json:"back,omitempty"  validate:"omitempty,min=1"`
	TopicID *uuid.UUID `json:"topic_id,omitempty"`
}

// UpdateTitleRequest defines the payload for the display title update.
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,max=150"`
}

// UpdateProfileRequest defines the payload for the username update.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,max=150"`
}

// UpdatePasswordRequest defines the payload for the password change.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

// UserResponse represents the authenticated user's account data.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Title    string    `json:"title"`
}

// NewUserResponse converts a domain user to its API representation.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Title:    u.Title,
	}
}
