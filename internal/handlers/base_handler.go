package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/belphemur/haushaltsheld/internal/household"
	"github.com/belphemur/haushaltsheld/internal/logging"
	"github.com/belphemur/haushaltsheld/internal/session"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// HouseholdService is the household use case surface used by the handlers
type HouseholdService interface {
	RegisterUser(ctx context.Context, in household.RegisterUserInput) (household.User, error)
	CreateGroup(ctx context.Context, name, adminID string) (household.Group, error)
	JoinGroup(ctx context.Context, code, userID string) (household.Group, error)
	GetGroup(ctx context.Context, groupID string) (household.Group, error)
	ListMembers(ctx context.Context, groupID string) ([]household.User, error)
	CreateTask(ctx context.Context, in household.CreateTaskInput) (household.Task, error)
	ListTasks(ctx context.Context, filter household.TaskFilter) ([]household.Task, error)
	ToggleTask(ctx context.Context, taskID string) (household.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}

// SessionProvider hands out the calendar session of a group
type SessionProvider interface {
	Session(ctx context.Context, groupID string) (*session.Session, error)
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// BaseHandler contains common handler functionality
type BaseHandler struct {
	logger zerolog.Logger
}

// NewBaseHandler creates a common base handler
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{
		logger: logging.GetLogger("http"),
	}
}

// WriteJSON writes v with the given status
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes an error response for code
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, code string, detail string) {
	h.WriteJSON(w, status, ErrorResponse{
		Error:   code,
		Message: GetErrorMessage(code),
		Detail:  detail,
	})
}

// WriteServiceError translates a service error into a response.
// Server side failures are logged and their detail is not exposed.
func (h *BaseHandler) WriteServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("Request failed")
		h.WriteError(w, status, code, "")
		return
	}
	logger.Debug().Err(err).Str("code", code).Msg("Request rejected")
	h.WriteError(w, status, code, err.Error())
}

// DecodeJSON reads a JSON body into v, rejecting unknown fields
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty request body")
		}
		return err
	}
	return nil
}

// handlerLogger returns a request scoped logger
func (h *BaseHandler) handlerLogger(name string, r *http.Request) zerolog.Logger {
	return h.logger.With().
		Str("handler", name).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Logger()
}
