package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwhitt/flashstack/internal/config"
	"github.com/jwhitt/flashstack/internal/platform/postgres"
	"github.com/jwhitt/flashstack/internal/service"
	"github.com/jwhitt/flashstack/internal/service/auth"
	"github.com/jwhitt/flashstack/internal/store"
)

// application holds the shared dependencies wired at startup.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore  store.UserStore
	topicStore store.TopicStore
	cardStore  store.CardStore

	jwtService   auth.JWTService
	userService  *service.UserService
	topicService *service.TopicService
	cardService  *service.CardService
}

// newApplication connects to the database and wires the stores,
// services, and handlers together.
func newApplication(cfg *config.Config, log *slog.Logger) (*application, error) {
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	userStore := postgres.NewUserStore(db, log)
	topicStore := postgres.NewTopicStore(db, log)
	cardStore := postgres.NewCardStore(db, log)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("create JWT service: %w", err)
	}

	userService, err := service.NewUserService(
		db,
		userStore,
		topicStore,
		auth.NewBcryptHasher(bcrypt.DefaultCost),
		auth.NewBcryptVerifier(),
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("create user service: %w", err)
	}

	topicService, err := service.NewTopicService(db, topicStore, log)
	if err != nil {
		return nil, fmt.Errorf("create topic service: %w", err)
	}

	cardService, err := service.NewCardService(db, cardStore, topicStore, topicService, log)
	if err != nil {
		return nil, fmt.Errorf("create card service: %w", err)
	}

	return &application{
		config:       cfg,
		logger:       log,
		db:           db,
		userStore:    userStore,
		topicStore:   topicStore,
		cardStore:    cardStore,
		jwtService:   jwtService,
		userService:  userService,
		topicService: topicService,
		cardService:  cardService,
	}, nil
}

// openDatabase opens and verifies the Postgres connection through the
// pgx stdlib driver.
func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// cleanup releases the application's resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}
