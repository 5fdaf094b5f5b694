package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/belphemur/haushaltsheld/internal/calendar"
	"github.com/belphemur/haushaltsheld/internal/household"
	"github.com/belphemur/haushaltsheld/internal/icsexport"
	"github.com/belphemur/haushaltsheld/internal/session"
)

// CalendarHandler serves the month grid, the week strip and day details
type CalendarHandler struct {
	*BaseHandler
	Groups   HouseholdService
	Sessions SessionProvider
	Location *time.Location
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(baseHandler *BaseHandler, groups HouseholdService, sessions SessionProvider, loc *time.Location) *CalendarHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarHandler{
		BaseHandler: baseHandler,
		Groups:      groups,
		Sessions:    sessions,
		Location:    loc,
	}
}

// RegisterRoutes registers calendar routes
func (h *CalendarHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/groups/{groupID}/calendar/month", h.handleGetMonth)
	mux.HandleFunc("PUT /api/groups/{groupID}/calendar/month", h.handleSetMonth)
	mux.HandleFunc("POST /api/groups/{groupID}/calendar/month/adjust", h.handleAdjustMonth)
	mux.HandleFunc("GET /api/groups/{groupID}/calendar/week", h.handleGetWeek)
	mux.HandleFunc("PUT /api/groups/{groupID}/calendar/week", h.handleSetWeek)
	mux.HandleFunc("POST /api/groups/{groupID}/calendar/week/adjust", h.handleAdjustWeek)
	mux.HandleFunc("GET /api/groups/{groupID}/calendar/days/{date}", h.handleGetDay)
	mux.HandleFunc("GET /api/groups/{groupID}/colors", h.handleGetColors)
	mux.HandleFunc("GET /api/groups/{groupID}/calendar.ics", h.handleExportICS)
}

// MonthCellJSON is one cell of the month grid. Padding cells have an empty
// date and a zero day number.
type MonthCellJSON struct {
	Date       string   `json:"date"`
	DayNumber  int      `json:"day_number"`
	TaskColors []string `json:"task_colors"`
	IsToday    bool     `json:"is_today"`
	IsPadding  bool     `json:"is_padding"`
}

// MonthViewJSON is the month grid response
type MonthViewJSON struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Title    string          `json:"title"`
	DayNames []string        `json:"day_names"`
	Cells    []MonthCellJSON `json:"cells"`
}

// WeekItemJSON is one day of the week strip
type WeekItemJSON struct {
	Date       string   `json:"date"`
	DayName    string   `json:"day_name"`
	DayNumber  int      `json:"day_number"`
	TaskColors []string `json:"task_colors"`
	IsToday    bool     `json:"is_today"`
}

// WeekViewJSON is the week strip response
type WeekViewJSON struct {
	Start string         `json:"start"`
	End   string         `json:"end"`
	Title string         `json:"title"`
	Items []WeekItemJSON `json:"items"`
}

// DayJSON lists the tasks due on one day
type DayJSON struct {
	Date   string           `json:"date"`
	Colors []string         `json:"colors"`
	Tasks  []household.Task `json:"tasks"`
}

// SetMonthRequest is the body of PUT .../calendar/month. Month is 1-12.
type SetMonthRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// AdjustMonthRequest is the body of POST .../calendar/month/adjust
type AdjustMonthRequest struct {
	Delta int `json:"delta"`
}

// SetWeekRequest is the body of PUT .../calendar/week
type SetWeekRequest struct {
	Date string `json:"date"`
}

// AdjustWeekRequest is the body of POST .../calendar/week/adjust
type AdjustWeekRequest struct {
	Days int `json:"days"`
}

func colorStrings(colors []calendar.Color) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = string(c)
	}
	return out
}

func toMonthJSON(view session.MonthView) MonthViewJSON {
	cells := make([]MonthCellJSON, len(view.Cells))
	for i, c := range view.Cells {
		cells[i] = MonthCellJSON{
			Date:       string(c.Key()),
			DayNumber:  c.DayNumber,
			TaskColors: colorStrings(c.TaskColors),
			IsToday:    c.IsToday,
			IsPadding:  c.IsPadding(),
		}
	}
	return MonthViewJSON{
		Year:     view.Year,
		Month:    int(view.Month),
		Title:    view.Title,
		DayNames: view.DayNames[:],
		Cells:    cells,
	}
}

func toWeekJSON(view session.WeekView) WeekViewJSON {
	items := make([]WeekItemJSON, len(view.Items))
	for i, it := range view.Items {
		items[i] = WeekItemJSON{
			Date:       string(it.Key()),
			DayName:    it.DayName,
			DayNumber:  it.DayNumber,
			TaskColors: colorStrings(it.TaskColors),
			IsToday:    it.IsToday,
		}
	}
	return WeekViewJSON{
		Start: string(calendar.KeyOf(view.Start)),
		End:   string(calendar.KeyOf(view.End)),
		Title: view.Title,
		Items: items,
	}
}

// session resolves the group's session, writing the error response on failure
func (h *CalendarHandler) session(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*session.Session, bool) {
	groupID := r.PathValue("groupID")
	if _, err := h.Groups.GetGroup(r.Context(), groupID); err != nil {
		h.WriteServiceError(w, logger, err)
		return nil, false
	}
	s, err := h.Sessions.Session(r.Context(), groupID)
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return nil, false
	}
	return s, true
}

func (h *CalendarHandler) handleGetMonth(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleGetMonth", r)
	s, ok := h.session(w, r, logger)
	if !ok {
		return
	}
	view, err := s.MonthView()
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toMonthJSON(view))
}

func (h *CalendarHandler) handleSetMonth(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleSetMonth", r)
	var req SetMonthRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidJSON, err.Error())
		return
	}
	s, ok := h.session(w, r, logger)
	if !ok {
		return
	}
	view, err := s.SetDisplayedMonth(req.Year, time.Month(req.Month))
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toMonthJSON(view))
}

func (h *CalendarHandler) handleAdjustMonth(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleAdjustMonth", r)
	var req AdjustMonthRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidJSON, err.Error())
		return
	}
	s, ok := h.session(w, r, logger)
	if !ok {
		return
	}
	view, err := s.AdjustMonth(req.Delta)
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toMonthJSON(view))
}

func (h *CalendarHandler) handleGetWeek(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleGetWeek", r)
	s, ok := h.session(w, r, logger)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, toWeekJSON(s.WeekView()))
}

func (h *CalendarHandler) handleSetWeek(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleSetWeek", r)
	var req SetWeekRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidJSON, err.Error())
		return
	}
	date, err := calendar.ParseDateKey(req.Date, h.Location)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
		return
	}
	s, ok := h.session(w, r, logger)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, toWeekJSON(s.SetDisplayedWeek(date)))
}

func (h *CalendarHandler) handleAdjustWeek(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleAdjustWeek", r)
	var req AdjustWeekRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidJSON, err.Error())
		return
	}
	s, ok := h.session(w, r, logger)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, toWeekJSON(s.AdjustWeek(req.Days)))
}

func (h *CalendarHandler) handleGetDay(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleGetDay", r)
	date, err := calendar.ParseDateKey(r.PathValue("date"), h.Location)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
		return
	}
	s, ok := h.session(w, r, logger)
	if !ok {
		return
	}

	key := calendar.KeyOf(date)
	tasks := s.TasksOn(key)
	if tasks == nil {
		tasks = []household.Task{}
	}
	h.WriteJSON(w, http.StatusOK, DayJSON{
		Date:   string(key),
		Colors: colorStrings(s.Snapshot().ColorsOn(key, 0)),
		Tasks:  tasks,
	})
}

func (h *CalendarHandler) handleGetColors(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleGetColors", r)
	s, ok := h.session(w, r, logger)
	if !ok {
		return
	}
	colors := make(map[string]string, len(s.Colors()))
	for id, c := range s.Colors() {
		colors[id] = string(c)
	}
	h.WriteJSON(w, http.StatusOK, colors)
}

// handleExportICS serves every task of the group as an iCalendar feed
func (h *CalendarHandler) handleExportICS(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleExportICS", r)
	group, err := h.Groups.GetGroup(r.Context(), r.PathValue("groupID"))
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}
	tasks, err := h.Groups.ListTasks(r.Context(), household.TaskFilter{GroupID: group.ID})
	if err != nil {
		h.WriteServiceError(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", icsexport.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+group.ID+`.ics"`)
	if err := icsexport.Write(w, group, tasks, h.Location, time.Now()); err != nil {
		logger.Error().Err(err).Msg("Failed to write calendar feed")
	}
}
