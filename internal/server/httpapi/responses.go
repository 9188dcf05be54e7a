package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// Messages produced by the HTTP layer itself.
const (
	MsgNoSuchRoute    = "There is no such API route."
	MsgTokenRequired  = "Authorization token required"
	MsgNotAuthorized  = "Request is not authorized"
	MsgInvalidRequest = "Invalid request body"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	models.PublicUser
	Token string `json:"token"`
}

// UserNameResponse is returned by the authenticated account routes.
type UserNameResponse struct {
	UserName string `json:"username"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (a *API) respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error(r.Context(), "Failed to encode JSON response", "error", err)
	}
}

func (a *API) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	a.respondJSON(w, r, status, ErrorResponse{Error: message})
}

// respondServiceError maps a service error to 400 and its client message.
// Errors without a kind are logged and reported with the generic message.
func (a *API) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var e *common.Error
	if !errors.As(err, &e) && !errors.Is(err, common.ErrorNotFound) {
		a.logger.Error(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	}
	a.respondError(w, r, http.StatusBadRequest, common.Message(err))
}
