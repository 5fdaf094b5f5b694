package handlers

import (
	"net/http"
	"time"

	"github.com/belphemur/haushaltsheld/internal/calendar"
	"github.com/belphemur/haushaltsheld/internal/household"
)

// TaskHandler manages the tasks of a group
type TaskHandler struct {
	*BaseHandler
	Service  HouseholdService
	Location *time.Location
}

// NewTaskHandler creates a new task handler. Dates in requests are read in loc.
func NewTaskHandler(baseHandler *BaseHandler, service HouseholdService, loc *time.Location) *TaskHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskHandler{
		BaseHandler: baseHandler,
		Service:     service,
		Location:    loc,
	}
}

// RegisterRoutes registers task routes
func (h *TaskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/groups/{groupID}/tasks", h.handleListTasks)
	mux.HandleFunc("POST /api/groups/{groupID}/tasks", h.handleCreateTask)
	mux.HandleFunc("POST /api/tasks/{taskID}/toggle", h.handleToggleTask)
	mux.HandleFunc("DELETE /api/tasks/{taskID}", h.handleDeleteTask)
}

// CreateTaskRequest is the body of POST /api/groups/{groupID}/tasks
type CreateTaskRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	AssignedUserID string `json:"assigned_user_id"`
	Date           string `json:"date"` // YYYY-MM-DD
}

// handleListTasks lists a group's tasks. Optional query parameters:
// assignee, status, from and to (YYYY-MM-DD, to is exclusive).
func (h *TaskHandler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleListTasks", r)
	q := r.URL.Query()

	filter := household.TaskFilter{
		GroupID:    r.PathValue("groupID"),
		AssigneeID: q.Get("assignee"),
	}
	if s := q.Get("status"); s != "" {
		status, err := household.ParseStatus(s)
		if err != nil {
			h.WriteServiceError(w, logger, err)
			return
		}
		filter.Status = status
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		t, err := calendar.ParseDateKey(v, h.Location)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
			return
		}
		*dst = &t
	}

	if _, err := h.Service.GetGroup(r.Context(), filter.GroupID); err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	tasks, err := h.Service.ListTasks(r.Context(), filter)
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	if tasks == nil {
		tasks = []household.Task{}
	}
	h.WriteJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleCreateTask", r)

	var req CreateTaskRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidJSON, err.Error())
		return
	}
	due, err := calendar.ParseDateKey(req.Date, h.Location)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
		return
	}

	task, err := h.Service.CreateTask(r.Context(), household.CreateTaskInput{
		GroupID:        r.PathValue("groupID"),
		Title:          req.Title,
		Description:    req.Description,
		AssignedUserID: req.AssignedUserID,
		Date:           due,
	})
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleToggleTask", r)

	task, err := h.Service.ToggleTask(r.Context(), r.PathValue("taskID"))
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleDeleteTask", r)

	if err := h.Service.DeleteTask(r.Context(), r.PathValue("taskID")); err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
