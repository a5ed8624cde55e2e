package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jwhitt/flashstack/internal/api/shared"
	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/service"
)

// TopicHandler handles the topic tree endpoints.
type TopicHandler struct {
	topicService *service.TopicService
	cardService  *service.CardService
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(
	topicService *service.TopicService,
	cardService *service.CardService,
	log *slog.Logger,
) *TopicHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TopicHandler{
		topicService: topicService,
		cardService:  cardService,
		validator:    validator.New(),
		logger:       log.With(slog.String("component", "topic_handler")),
	}
}

// List returns all of the user's topics, ordered for tree rendering.
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found in request context")
		return
	}

	topics, err := h.topicService.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := make([]TopicResponse, 0, len(topics))
	for _, t := range topics {
		resp = append(resp, NewTopicResponse(t))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Create creates a topic, optionally nested under a parent.
func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found in request context")
		return
	}

	var req CreateTopicRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Topic name is required")
		return
	}

	topic, err := h.topicService.Create(r.Context(), userID, req.Name, req.ParentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTopicResponse(topic))
}

// Update renames and/or moves a topic. The two changes are independent:
// a request may carry a new name, a new parent, or both.
func (h *TopicHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTopicRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid topic update")
		return
	}

	if req.Name == nil && !req.SetParent {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Nothing to update")
		return
	}

	topic, err := h.topicService.Get(r.Context(), userID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Name != nil {
		topic, err = h.topicService.Rename(r.Context(), userID, topicID, *req.Name)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	if req.SetParent {
		topic, err = h.topicService.Move(r.Context(), userID, topicID, req.ParentID)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTopicResponse(topic))
}

// Reorder applies a bulk position/parent update to the user's topics.
func (h *TopicHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found in request context")
		return
	}

	var req ReorderTopicsRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Reorder items are required")
		return
	}

	items := make([]service.ReorderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.ReorderItem{
			ID:        item.ID,
			Position:  item.Position,
			SetParent: item.SetParent,
			ParentID:  item.ParentID,
		})
	}

	if err := h.topicService.Reorder(r.Context(), userID, items); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a topic, its whole subtree, and every card in it.
func (h *TopicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.topicService.Delete(r.Context(), userID, topicID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StudyCards returns the cards for a study session on a topic. With
// ?recursive=true the subtree's cards are aggregated in a stable order.
func (h *TopicHandler) StudyCards(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	recursive := r.URL.Query().Get("recursive") == "true"

	cards, err := h.cardService.ListForStudy(r.Context(), userID, topicID, recursive)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		resp = append(resp, NewCardResponse(c))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
