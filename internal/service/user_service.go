package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/platform/logger"
	"github.com/jwhitt/flashstack/internal/service/auth"
	"github.com/jwhitt/flashstack/internal/store"
)

// UserService implements registration, credential checks, and account
// updates.
type UserService struct {
	db         *sql.DB
	userStore  store.UserStore
	topicStore store.TopicStore
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	logger     *slog.Logger
}

// NewUserService creates a new UserService.
// Returns an error if any required dependency is nil.
func NewUserService(
	db *sql.DB,
	userStore store.UserStore,
	topicStore store.TopicStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	log *slog.Logger,
) (*UserService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if topicStore == nil {
		return nil, domain.NewValidationError("topicStore", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		db:         db,
		userStore:  userStore,
		topicStore: topicStore,
		hasher:     hasher,
		verifier:   verifier,
		logger:     log.With(slog.String("component", "user_service")),
	}, nil
}

// Register creates a new user with a hashed password and the default
// "My Flashcards" topic, both in one transaction: a failed user insert
// leaves no topic row behind.
// Returns store.ErrUsernameExists when the username is taken.
func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := domain.NewUser(username, password)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.userStore.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}

		defaultTopic, err := domain.NewTopic(user.ID, domain.DefaultTopicName, nil, 0)
		if err != nil {
			return err
		}
		return s.topicStore.WithTx(tx).Create(ctx, defaultTopic)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user registered",
		slog.String("user_id", user.ID.String()))

	return user, nil
}

// Authenticate checks a username/password pair and returns the user on
// success. Both an unknown username and a wrong password surface as
// ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Get returns the user with the given ID.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userStore.GetByID(ctx, userID)
}

// UpdateProfile changes the user's username.
// Returns store.ErrUsernameExists when the new username is taken.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, username string) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Username = username
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdatePassword changes the user's password after verifying the
// current one. A wrong current password fails with
// ErrInvalidCredentials.
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.verifier.Compare(user.HashedPassword, current); err != nil {
		return ErrInvalidCredentials
	}

	// Run the new password through domain validation before hashing.
	user.Password = newPassword
	if err := user.Validate(); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	return s.userStore.Update(ctx, user)
}

// UpdateTitle changes the user's display title.
func (s *UserService) UpdateTitle(ctx context.Context, userID uuid.UUID, title string) (*domain.User, error) {
	if title == "" {
		return nil, domain.NewValidationError("title", "cannot be empty", domain.ErrValidation)
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Title = title
	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
