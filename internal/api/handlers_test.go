package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jwhitt/flashstack/internal/api/shared"
	"github.com/jwhitt/flashstack/internal/config"
	"github.com/jwhitt/flashstack/internal/mocks"
	"github.com/jwhitt/flashstack/internal/service"
	"github.com/jwhitt/flashstack/internal/service/auth"
)

// testEnv bundles the services, handlers, and router used by the
// handler tests. Stores are in-memory and transactions are no-ops.
type testEnv struct {
	router      chi.Router
	data        *mocks.Data
	userService *service.UserService
	topics      *service.TopicService
	cards       *service.CardService
	jwt         *mocks.MockJWTService
	userID      uuid.UUID
}

// newTestEnv wires the full API surface the way the server's router
// does, with a stand-in auth middleware that injects env.userID.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	data := mocks.NewData()
	db := mocks.NewTxDB()

	userService, err := service.NewUserService(
		db,
		data.UserStore(),
		data.TopicStore(),
		auth.NewBcryptHasher(4),
		auth.NewBcryptVerifier(),
		nil,
	)
	require.NoError(t, err)

	topicService, err := service.NewTopicService(db, data.TopicStore(), nil)
	require.NoError(t, err)

	cardService, err := service.NewCardService(db, data.CardStore(), data.TopicStore(), topicService, nil)
	require.NoError(t, err)

	env := &testEnv{
		data:        data,
		userService: userService,
		topics:      topicService,
		cards:       cardService,
		jwt: &mocks.MockJWTService{
			Token:        "test-access-token",
			RefreshToken: "test-refresh-token",
		},
		userID: uuid.New(),
	}

	authCfg := &config.AuthConfig{
		JWTSecret:                   strings.Repeat("s", 32),
		TokenLifetimeMinutes:        30,
		RefreshTokenLifetimeMinutes: 10080,
	}

	authHandler := NewAuthHandler(userService, env.jwt, authCfg, nil)
	topicHandler := NewTopicHandler(topicService, cardService, nil)
	cardHandler := NewCardHandler(cardService, nil)
	accountHandler := NewAccountHandler(userService, nil)

	r := chi.NewRouter()
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/refresh", authHandler.RefreshToken)

	r.Group(func(r chi.Router) {
		r.Use(env.fakeAuth)
		r.Get("/api/topics", topicHandler.List)
		r.Post("/api/topics", topicHandler.Create)
		r.Put("/api/topics/reorder", topicHandler.Reorder)
		r.Put("/api/topics/{id}", topicHandler.Update)
		r.Delete("/api/topics/{id}", topicHandler.Delete)
		r.Get("/api/topics/{id}/cards", topicHandler.StudyCards)
		r.Post("/api/cards", cardHandler.Create)
		r.Put("/api/cards/{id}", cardHandler.Update)
		r.Delete("/api/cards/{id}", cardHandler.Delete)
		r.Post("/api/cards/import", cardHandler.Import)
		r.Get("/api/cards/export", cardHandler.Export)
		r.Get("/api/account", accountHandler.Get)
		r.Put("/api/account/title", accountHandler.UpdateTitle)
		r.Put("/api/account/profile", accountHandler.UpdateProfile)
		r.Put("/api/account/password", accountHandler.UpdatePassword)
	})

	env.router = r
	return env
}

// fakeAuth injects the test user the way the JWT middleware does.
func (env *testEnv) fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, env.userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// do executes a request against the test router and returns the
// recorder.
func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}
