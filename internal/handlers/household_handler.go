package handlers

import (
	"net/http"

	"github.com/belphemur/haushaltsheld/internal/household"
)

// HouseholdHandler manages users and groups
type HouseholdHandler struct {
	*BaseHandler
	Service HouseholdService
}

// NewHouseholdHandler creates a new household handler
func NewHouseholdHandler(baseHandler *BaseHandler, service HouseholdService) *HouseholdHandler {
	return &HouseholdHandler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// RegisterRoutes registers user and group routes
func (h *HouseholdHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users", h.handleRegisterUser)
	mux.HandleFunc("POST /api/groups", h.handleCreateGroup)
	mux.HandleFunc("POST /api/groups/join", h.handleJoinGroup)
	mux.HandleFunc("GET /api/groups/{groupID}", h.handleGetGroup)
	mux.HandleFunc("GET /api/groups/{groupID}/members", h.handleListMembers)
}

// CreateGroupRequest is the body of POST /api/groups
type CreateGroupRequest struct {
	Name    string `json:"name"`
	AdminID string `json:"admin_id"`
}

// JoinGroupRequest is the body of POST /api/groups/join
type JoinGroupRequest struct {
	Code   string `json:"code"`
	UserID string `json:"user_id"`
}

func (h *HouseholdHandler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleRegisterUser", r)

	var req household.RegisterUserInput
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidJSON, err.Error())
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), req)
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, user)
}

func (h *HouseholdHandler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleCreateGroup", r)

	var req CreateGroupRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidJSON, err.Error())
		return
	}

	group, err := h.Service.CreateGroup(r.Context(), req.Name, req.AdminID)
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	logger.Info().Str("group_id", group.ID).Msg("Group created")
	h.WriteJSON(w, http.StatusCreated, group)
}

func (h *HouseholdHandler) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleJoinGroup", r)

	var req JoinGroupRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidJSON, err.Error())
		return
	}

	group, err := h.Service.JoinGroup(r.Context(), req.Code, req.UserID)
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, group)
}

func (h *HouseholdHandler) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleGetGroup", r)

	group, err := h.Service.GetGroup(r.Context(), r.PathValue("groupID"))
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, group)
}

func (h *HouseholdHandler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleListMembers", r)

	members, err := h.Service.ListMembers(r.Context(), r.PathValue("groupID"))
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	if members == nil {
		members = []household.User{}
	}
	h.WriteJSON(w, http.StatusOK, members)
}
