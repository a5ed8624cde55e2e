package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jwhitt/flashstack/internal/api/shared"
	"github.com/jwhitt/flashstack/internal/domain"
	"github.com/jwhitt/flashstack/internal/service"
)

// AccountHandler handles updates to the authenticated user's account.
type AccountHandler struct {
	userService *service.UserService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(userService *service.UserService, log *slog.Logger) *AccountHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AccountHandler{
		userService: userService,
		validator:   validator.New(),
		logger:      log.With(slog.String("component", "account_handler")),
	}
}

// Get returns the authenticated user's account data.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found in request context")
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// UpdateTitle changes the display title shown above the topic tree.
func (h *AccountHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found in request context")
		return
	}

	var req UpdateTitleRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Title is required")
		return
	}

	user, err := h.userService.UpdateTitle(r.Context(), userID, req.Title)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// UpdateProfile changes the account's username.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found in request context")
		return
	}

	var req UpdateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Username is required")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req.Username)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// UpdatePassword changes the account password after verifying the
// current one.
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found in request context")
		return
	}

	var req UpdatePasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Current and new passwords are required")
		return
	}

	if err := h.userService.UpdatePassword(
		r.Context(), userID, req.CurrentPassword, req.NewPassword,
	); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
