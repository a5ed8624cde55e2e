package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jwhitt/flashstack/internal/api/shared"
	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/platform/logger"
	"github.com/jwhitt/flashstack/internal/service"
)

// maxImportFileBytes caps the size of an uploaded import file.
const maxImportFileBytes = 8 << 20

// CardHandler handles the card endpoints, including bulk import and
// export.
type CardHandler struct {
	cardService *service.CardService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService *service.CardService, log *slog.Logger) *CardHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CardHandler{
		cardService: cardService,
		validator:   validator.New(),
		logger:      log.With(slog.String("component", "card_handler")),
	}
}

// Create creates a card under a topic the user owns.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found in request context")
		return
	}

	var req CreateCardRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Topic, front, and back are required")
		return
	}

	card, err := h.cardService.Create(r.Context(), userID, req.TopicID, req.Front, req.Back)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewCardResponse(card))
}

// Update edits a card's text and/or moves it to another topic.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card update")
		return
	}

	if req.Front == nil && req.Back == nil && req.TopicID == nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Nothing to update")
		return
	}

	card, err := h.cardService.Update(r.Context(), userID, cardID, service.CardUpdate{
		Front:   req.Front,
		Back:    req.Back,
		TopicID: req.TopicID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponse(card))
}

// Delete removes a single card.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.cardService.Delete(r.Context(), userID, cardID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Import bulk-creates cards from a JSON payload. The payload may
// arrive as a JSON body or as a multipart upload under the "file"
// field; both accept either an {"entries": [...]} object or a bare
// entry array. Import is best-effort per entry: failures come back
// with their index and reason, and valid entries still land.
func (h *CardHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found in request context")
		return
	}

	entries, topicID, err := h.readImportPayload(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if len(entries) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No entries to import")
		return
	}

	result, err := h.cardService.Import(r.Context(), userID, entries, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// readImportPayload extracts the import entries and optional forced
// topic from the request, handling both content types.
func (h *CardHandler) readImportPayload(
	r *http.Request,
) ([]service.ImportEntry, *uuid.UUID, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.readImportFile(r)
	}

	body := http.MaxBytesReader(nil, r.Body, maxImportFileBytes)
	return decodeImportEntries(json.NewDecoder(body))
}

// readImportFile reads the "file" multipart field and decodes it. The
// optional "topic_id" form field forces a target topic.
func (h *CardHandler) readImportFile(
	r *http.Request,
) ([]service.ImportEntry, *uuid.UUID, error) {
	if err := r.ParseMultipartForm(maxImportFileBytes); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart payload")
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("missing import file")
	}
	defer func() { _ = file.Close() }()

	entries, topicID, err := decodeImportEntries(json.NewDecoder(file))
	if err != nil {
		return nil, nil, err
	}

	// A topic_id form field wins over one embedded in the file.
	if raw := r.FormValue("topic_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid topic_id")
		}
		topicID = &id
	}

	return entries, topicID, nil
}

// decodeImportEntries accepts either a bare entry array or an
// {"entries": [...], "topic_id": ...} wrapper object. Both the JSON
// body and multipart file paths decode through here.
func decodeImportEntries(dec *json.Decoder) ([]service.ImportEntry, *uuid.UUID, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid import payload")
	}

	switch delim, _ := tok.(json.Delim); delim {
	case '[':
		var entries []service.ImportEntry
		for dec.More() {
			var e service.ImportEntry
			if err := dec.Decode(&e); err != nil {
				return nil, nil, fmt.Errorf("invalid import entry")
			}
			entries = append(entries, e)
		}
		return entries, nil, nil

	case '{':
		var entries []service.ImportEntry
		var topicID *uuid.UUID
		for dec.More() {
			key, err := dec.Token()
			if err != nil {
				return nil, nil, fmt.Errorf("invalid import payload")
			}
			switch key {
			case "entries":
				if err := dec.Decode(&entries); err != nil {
					return nil, nil, fmt.Errorf("invalid import entries")
				}
			case "topic_id":
				var id uuid.UUID
				if err := dec.Decode(&id); err != nil {
					return nil, nil, fmt.Errorf("invalid topic_id")
				}
				topicID = &id
			default:
				// Skip values of unknown keys.
				var skip json.RawMessage
				if err := dec.Decode(&skip); err != nil {
					return nil, nil, fmt.Errorf("invalid import payload")
				}
			}
		}
		return entries, topicID, nil

	default:
		return nil, nil, fmt.Errorf("invalid import payload")
	}
}

// Export streams the user's entire card collection as a downloadable
// JSON file shaped to be re-importable.
func (h *CardHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found in request context")
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)

	entries, err := h.cardService.Export(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	filename := fmt.Sprintf("flashcards-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(entries); err != nil {
		log.Error("failed to write export response", slog.String("error", err.Error()))
	}
}
