package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/internal/storage"
)

type EmployeeHandler struct {
	employees *storage.EmployeeRepository
	identity  *storage.IdentityRepository
}

func NewEmployeeHandler(employees *storage.EmployeeRepository, identity *storage.IdentityRepository) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, identity: identity}
}

type employeeRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// Employees routes a company's own staff listing and creation.
func (h *EmployeeHandler) Employees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.resolveCompany(w, r)
	if !ok {
		return
	}
	employees, err := h.employees.ListByCompany(r.Context(), companyID)
	if err != nil {
		http.Error(w, "failed to list employees", http.StatusInternalServerError)
		return
	}
	out := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.resolveCompany(w, r)
	if !ok {
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		http.Error(w, "first_name and last_name required", http.StatusBadRequest)
		return
	}

	employee, err := h.employees.Create(r.Context(), &model.Employee{
		CompanyID:   companyID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       strings.TrimSpace(req.Email),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	})
	if err != nil {
		http.Error(w, "failed to create employee", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeResponse(*employee))
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	companyID, ok := h.resolveCompany(w, r)
	if !ok {
		return
	}

	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	deleted, err := h.employees.Delete(r.Context(), companyID, req.ID)
	if err != nil {
		if storage.IsForeignKeyViolation(err) {
			http.Error(w, "employee has reservations", http.StatusConflict)
			return
		}
		http.Error(w, "failed to delete employee", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "employee not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandler) resolveCompany(w http.ResponseWriter, r *http.Request) (int64, bool) {
	c, ok := requireRole(w, r, model.RoleCompany)
	if !ok {
		return 0, false
	}
	companyID, found, err := h.identity.CompanyIDByAccount(r.Context(), c.AccountID)
	if err != nil {
		http.Error(w, "failed to resolve company", http.StatusInternalServerError)
		return 0, false
	}
	if !found {
		http.Error(w, "company profile required", http.StatusForbidden)
		return 0, false
	}
	return companyID, true
}
