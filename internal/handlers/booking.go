package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rezervalabs/rezerva/internal/booking"
	"github.com/rezervalabs/rezerva/internal/model"
)

// BookingHandler is the HTTP face of the scheduling core.
type BookingHandler struct {
	core   *booking.Service
	logger *slog.Logger
}

func NewBookingHandler(core *booking.Service, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{core: core, logger: logger}
}

type createReservationRequest struct {
	ServiceID  int64  `json:"service_id"`
	EmployeeID int64  `json:"employee_id"`
	StartTime  string `json:"start_time"`
	Note       string `json:"note"`
}

type updateStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type reservationResponse struct {
	ID          int64   `json:"id"`
	ClientID    *int64  `json:"client_id"`
	CompanyID   int64   `json:"company_id"`
	ServiceID   int64   `json:"service_id"`
	EmployeeID  int64   `json:"employee_id"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Status      string  `json:"status"`
	Note        string  `json:"note,omitempty"`
	CreatedDate string  `json:"created_date"`
	UpdatedDate *string `json:"updated_date"`
}

// AvailableSlots is public: anyone may browse open slots. A valid query with
// nothing open returns an empty list; an unknown service or an employee off
// the roster returns 404.
func (h *BookingHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	employeeID, err1 := strconv.ParseInt(strings.TrimSpace(q.Get("employee_id")), 10, 64)
	serviceID, err2 := strconv.ParseInt(strings.TrimSpace(q.Get("service_id")), 10, 64)
	if err1 != nil || err2 != nil {
		http.Error(w, "employee_id and service_id required", http.StatusBadRequest)
		return
	}
	day, err := time.ParseInLocation(wireDate, strings.TrimSpace(q.Get("day")), time.Local)
	if err != nil {
		http.Error(w, "day must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	slots, err := h.core.AvailableSlots(r.Context(), employeeID, serviceID, day)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Format(wireTimestamp))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.ServiceID == 0 || req.EmployeeID == 0 {
		http.Error(w, "service_id and employee_id required", http.StatusBadRequest)
		return
	}
	start, err := time.ParseInLocation(wireTimestamp, strings.TrimSpace(req.StartTime), time.Local)
	if err != nil {
		http.Error(w, "start_time must be YYYY-MM-DDTHH:MM:SS", http.StatusBadRequest)
		return
	}

	rsv, err := h.core.CreateReservation(r.Context(), c.AccountID, c.Role, booking.CreateRequest{
		ServiceID:  req.ServiceID,
		EmployeeID: req.EmployeeID,
		StartTime:  start,
		Note:       strings.TrimSpace(req.Note),
	})
	if err != nil {
		writeCoreError(w, err)
		return
	}
	h.logger.Info("reservation created",
		"reservation_id", rsv.ID,
		"employee_id", rsv.EmployeeID,
		"start", rsv.StartTime.Format(wireTimestamp),
	)
	writeJSON(w, http.StatusCreated, toReservationResponse(*rsv))
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
	if err != nil {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	rsv, err := h.core.GetReservation(r.Context(), c.AccountID, c.Role, id)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(*rsv))
}

func (h *BookingHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, ok := requireRole(w, r, model.RoleUser)
	if !ok {
		return
	}
	list, err := h.core.ClientReservations(r.Context(), c.AccountID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeReservationList(w, list)
}

func (h *BookingHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, ok := requireRole(w, r, model.RoleCompany)
	if !ok {
		return
	}
	list, err := h.core.CompanyReservations(r.Context(), c.AccountID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeReservationList(w, list)
}

func (h *BookingHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, ok := requireRole(w, r, model.RoleCompany)
	if !ok {
		return
	}
	employeeID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("employee_id")), 10, 64)
	if err != nil {
		http.Error(w, "employee_id required", http.StatusBadRequest)
		return
	}
	list, err := h.core.EmployeeReservations(r.Context(), c.AccountID, employeeID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeReservationList(w, list)
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, ok := requireRole(w, r, model.RoleCompany)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		http.Error(w, "id and status required", http.StatusBadRequest)
		return
	}
	status, err := model.ParseStatus(strings.TrimSpace(req.Status))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rsv, err := h.core.UpdateStatus(r.Context(), c.AccountID, req.ID, status)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	h.logger.Info("reservation status updated", "reservation_id", rsv.ID, "status", string(rsv.Status))
	writeJSON(w, http.StatusOK, toReservationResponse(*rsv))
}

func writeReservationList(w http.ResponseWriter, list []model.Reservation) {
	out := make([]reservationResponse, 0, len(list))
	for _, rsv := range list {
		out = append(out, toReservationResponse(rsv))
	}
	writeJSON(w, http.StatusOK, out)
}

func toReservationResponse(rsv model.Reservation) reservationResponse {
	resp := reservationResponse{
		ID:          rsv.ID,
		ClientID:    rsv.ClientID,
		CompanyID:   rsv.CompanyID,
		ServiceID:   rsv.ServiceID,
		EmployeeID:  rsv.EmployeeID,
		StartTime:   rsv.StartTime.Format(wireTimestamp),
		EndTime:     rsv.EndTime.Format(wireTimestamp),
		Status:      string(rsv.Status),
		Note:        rsv.Note,
		CreatedDate: rsv.CreatedDate.Format(wireTimestamp),
	}
	if rsv.UpdatedDate != nil {
		s := rsv.UpdatedDate.Format(wireTimestamp)
		resp.UpdatedDate = &s
	}
	return resp
}
