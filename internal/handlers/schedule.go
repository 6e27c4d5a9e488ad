package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/internal/storage"
)

// ScheduleHandler manages per-weekday opening hours.
type ScheduleHandler struct {
	workingDays *storage.WorkingDayRepository
	identity    *storage.IdentityRepository
}

func NewScheduleHandler(workingDays *storage.WorkingDayRepository, identity *storage.IdentityRepository) *ScheduleHandler {
	return &ScheduleHandler{workingDays: workingDays, identity: identity}
}

type workingDayRequest struct {
	Day         string  `json:"day"`
	OpeningTime *string `json:"opening_time"`
	ClosingTime *string `json:"closing_time"`
}

type workingDayResponse struct {
	Day         string  `json:"day"`
	OpeningTime *string `json:"opening_time"`
	ClosingTime *string `json:"closing_time"`
}

// WorkingDays routes the public weekly listing and company-side upsert.
func (h *ScheduleHandler) WorkingDays(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPut:
		h.upsert(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ScheduleHandler) upsert(w http.ResponseWriter, r *http.Request) {
	c, ok := requireRole(w, r, model.RoleCompany)
	if !ok {
		return
	}
	companyID, found, err := h.identity.CompanyIDByAccount(r.Context(), c.AccountID)
	if err != nil {
		http.Error(w, "failed to resolve company", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "company profile required", http.StatusForbidden)
		return
	}

	var req workingDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	day, err := model.ParseWeekday(strings.TrimSpace(req.Day))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wd := model.WorkingDay{CompanyID: companyID, Day: day}
	if wd.OpeningTime, err = parseClockField(req.OpeningTime); err != nil {
		http.Error(w, "opening_time must be HH:MM", http.StatusBadRequest)
		return
	}
	if wd.ClosingTime, err = parseClockField(req.ClosingTime); err != nil {
		http.Error(w, "closing_time must be HH:MM", http.StatusBadRequest)
		return
	}
	if err := wd.ValidateWindow(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stored, err := h.workingDays.Upsert(r.Context(), &wd)
	if err != nil {
		http.Error(w, "failed to store working day", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toWorkingDayResponse(*stored))
}

// list returns all seven weekdays; weekdays without a stored row come back
// closed.
func (h *ScheduleHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("company_id")), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}

	week, err := h.workingDays.ListWeek(r.Context(), companyID)
	if err != nil {
		http.Error(w, "failed to list working days", http.StatusInternalServerError)
		return
	}
	out := make([]workingDayResponse, 0, len(week))
	for _, wd := range week {
		out = append(out, toWorkingDayResponse(wd))
	}
	writeJSON(w, http.StatusOK, out)
}

func parseClockField(raw *string) (*model.ClockTime, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	c, err := model.ParseClock(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func toWorkingDayResponse(wd model.WorkingDay) workingDayResponse {
	resp := workingDayResponse{Day: string(wd.Day)}
	if wd.OpeningTime != nil {
		s := wd.OpeningTime.String()
		resp.OpeningTime = &s
	}
	if wd.ClosingTime != nil {
		s := wd.ClosingTime.String()
		resp.ClosingTime = &s
	}
	return resp
}
