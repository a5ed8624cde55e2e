package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhitt/flashstack/internal/service"
)

func TestCardHandlerCreate(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		topic := createTopicViaAPI(t, env, "Biology", nil)

		rec := env.do(http.MethodPost, "/api/cards",
			fmt.Sprintf(`{"topic_id":%q,"front":"What is a cell?","back":"The basic unit of life"}`, topic.ID))
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp CardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, topic.ID, resp.TopicID)
		assert.Equal(t, "What is a cell?", resp.Front)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/api/cards", `{"front":"q"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown topic", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/api/cards",
			fmt.Sprintf(`{"topic_id":%q,"front":"q","back":"a"}`, uuid.New()))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCardHandlerUpdate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	topic := createTopicViaAPI(t, env, "Biology", nil)
	card, err := env.cards.Create(context.Background(), env.userID, topic.ID, "q", "a")
	require.NoError(t, err)

	t.Run("edit front", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/api/cards/"+card.ID.String(),
			`{"front":"revised"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "revised", resp.Front)
		assert.Equal(t, "a", resp.Back)
	})

	t.Run("empty update rejected", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/api/cards/"+card.ID.String(), `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown card", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/api/cards/"+uuid.NewString(), `{"front":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCardHandlerDelete(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	topic := createTopicViaAPI(t, env, "Biology", nil)
	card, err := env.cards.Create(context.Background(), env.userID, topic.ID, "q", "a")
	require.NoError(t, err)

	require.Equal(t, http.StatusNoContent,
		env.do(http.MethodDelete, "/api/cards/"+card.ID.String(), "").Code)
	assert.Equal(t, http.StatusNotFound,
		env.do(http.MethodDelete, "/api/cards/"+card.ID.String(), "").Code)
}

func TestCardHandlerImport(t *testing.T) {
	t.Parallel()

	t.Run("json body", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/api/cards/import",
			`{"entries":[{"topic":"Math","front":"2+2","back":"4"},{"topic":"Math","front":"","back":"x"}]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var result service.ImportResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Imported)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, 1, result.Failures[0].Index)
	})

	t.Run("json body with bare array", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/api/cards/import",
			`[{"topic":"Math","front":"2+2","back":"4"}]`)
		require.Equal(t, http.StatusOK, rec.Code)

		var result service.ImportResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Imported)
		assert.Empty(t, result.Failures)
	})

	t.Run("multipart file with bare array", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "cards.json")
		require.NoError(t, err)
		_, err = part.Write([]byte(`[{"topic":"Math","front":"2+2","back":"4"}]`))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/cards/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var result service.ImportResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Imported)
	})

	t.Run("multipart file with forced topic", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		target := createTopicViaAPI(t, env, "Inbox", nil)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("topic_id", target.ID.String()))
		part, err := mw.CreateFormFile("file", "cards.json")
		require.NoError(t, err)
		_, err = part.Write([]byte(`{"entries":[{"front":"q","back":"a"}]}`))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/cards/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		cards, err := env.data.CardStore().ListByUser(context.Background(), env.userID)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, target.ID, cards[0].TopicID)
	})

	t.Run("empty payload", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/api/cards/import", `{"entries":[]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "cards.json")
		require.NoError(t, err)
		_, err = part.Write([]byte(`not json at all`))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/cards/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCardHandlerExport(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/cards/import",
		`{"entries":[{"topic":"Math","category":"Algebra","front":"x+x","back":"2x"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := env.do(http.MethodGet, "/api/cards/export", "")
	require.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, out.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, out.Header().Get("Content-Type"), "application/json")

	var entries []service.ExportEntry
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Math", entries[0].Topic)
	assert.Equal(t, "Algebra", entries[0].Category)
	assert.Equal(t, "x+x", entries[0].Front)
}
