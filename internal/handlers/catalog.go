package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/internal/storage"
)

// CatalogHandler manages services and the service/employee roster.
type CatalogHandler struct {
	services      *storage.ServiceRepository
	subcategories *storage.SubcategoryRepository
	identity      *storage.IdentityRepository
}

func NewCatalogHandler(services *storage.ServiceRepository, subcategories *storage.SubcategoryRepository, identity *storage.IdentityRepository) *CatalogHandler {
	return &CatalogHandler{services: services, subcategories: subcategories, identity: identity}
}

type serviceRequest struct {
	ID              int64   `json:"id,omitempty"`
	SubcategoryID   int64   `json:"subcategory_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
}

type serviceResponse struct {
	ID              int64   `json:"id"`
	CompanyID       int64   `json:"company_id"`
	SubcategoryID   int64   `json:"subcategory_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
	IsActive        bool    `json:"is_active"`
}

type employeeResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type rosterRequest struct {
	ServiceID  int64 `json:"service_id"`
	EmployeeID int64 `json:"employee_id"`
}

// Services routes the public catalog listing and company-side creation.
func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listServices(w, r)
	case http.MethodPost:
		h.createService(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CatalogHandler) listServices(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("company_id")), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	var subcategoryID *int64
	if raw := strings.TrimSpace(r.URL.Query().Get("subcategory_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid subcategory_id", http.StatusBadRequest)
			return
		}
		subcategoryID = &id
	}

	services, err := h.services.ListByCompany(r.Context(), companyID, subcategoryID)
	if err != nil {
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	out := make([]serviceResponse, 0, len(services))
	for _, svc := range services {
		out = append(out, toServiceResponse(svc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) createService(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.resolveCompany(w, r)
	if !ok {
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if err := model.ValidateDuration(req.DurationMinutes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	owned, err := h.subcategories.Owned(r.Context(), companyID, req.SubcategoryID)
	if err != nil {
		http.Error(w, "failed to check subcategory", http.StatusInternalServerError)
		return
	}
	if !owned {
		http.Error(w, "subcategory not found", http.StatusBadRequest)
		return
	}

	svc, err := h.services.Create(r.Context(), &model.Service{
		CompanyID:       companyID,
		SubcategoryID:   req.SubcategoryID,
		Name:            req.Name,
		Description:     strings.TrimSpace(req.Description),
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		http.Error(w, "failed to create service", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toServiceResponse(*svc))
}

func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	companyID, ok := h.resolveCompany(w, r)
	if !ok {
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.ID == 0 || req.Name == "" {
		http.Error(w, "id and name required", http.StatusBadRequest)
		return
	}
	if err := model.ValidateDuration(req.DurationMinutes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	owned, err := h.subcategories.Owned(r.Context(), companyID, req.SubcategoryID)
	if err != nil {
		http.Error(w, "failed to check subcategory", http.StatusInternalServerError)
		return
	}
	if !owned {
		http.Error(w, "subcategory not found", http.StatusBadRequest)
		return
	}

	svc, found, err := h.services.Update(r.Context(), &model.Service{
		ID:              req.ID,
		CompanyID:       companyID,
		SubcategoryID:   req.SubcategoryID,
		Name:            req.Name,
		Description:     strings.TrimSpace(req.Description),
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		http.Error(w, "failed to update service", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toServiceResponse(*svc))
}

func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
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

	deleted, err := h.services.Delete(r.Context(), companyID, req.ID)
	if err != nil {
		if storage.IsForeignKeyViolation(err) {
			http.Error(w, "service has reservations", http.StatusConflict)
			return
		}
		http.Error(w, "failed to delete service", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServiceEmployees routes the public roster listing and company-side
// assignment.
func (h *CatalogHandler) ServiceEmployees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listRoster(w, r)
	case http.MethodPost:
		h.assignEmployee(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CatalogHandler) listRoster(w http.ResponseWriter, r *http.Request) {
	serviceID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("service_id")), 10, 64)
	if err != nil {
		http.Error(w, "service_id required", http.StatusBadRequest)
		return
	}
	employees, err := h.services.ListAssignedEmployees(r.Context(), serviceID)
	if err != nil {
		http.Error(w, "failed to list roster", http.StatusInternalServerError)
		return
	}
	out := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) assignEmployee(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.resolveCompany(w, r)
	if !ok {
		return
	}
	req, ok := decodeRosterRequest(w, r)
	if !ok {
		return
	}
	if err := h.services.AssignEmployee(r.Context(), companyID, req.ServiceID, req.EmployeeID); err != nil {
		writeRosterError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) RemoveEmployee(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	companyID, ok := h.resolveCompany(w, r)
	if !ok {
		return
	}
	req, ok := decodeRosterRequest(w, r)
	if !ok {
		return
	}
	if err := h.services.RemoveEmployee(r.Context(), companyID, req.ServiceID, req.EmployeeID); err != nil {
		writeRosterError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) resolveCompany(w http.ResponseWriter, r *http.Request) (int64, bool) {
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

func decodeRosterRequest(w http.ResponseWriter, r *http.Request) (rosterRequest, bool) {
	var req rosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ServiceID == 0 || req.EmployeeID == 0 {
		http.Error(w, "service_id and employee_id required", http.StatusBadRequest)
		return rosterRequest{}, false
	}
	return req, true
}

func writeRosterError(w http.ResponseWriter, err error) {
	switch {
	case storage.IsNotFound(err):
		http.Error(w, "service or employee not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrWrongOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "failed to update roster", http.StatusInternalServerError)
	}
}

func toServiceResponse(svc model.Service) serviceResponse {
	return serviceResponse{
		ID:              svc.ID,
		CompanyID:       svc.CompanyID,
		SubcategoryID:   svc.SubcategoryID,
		Name:            svc.Name,
		Description:     svc.Description,
		Price:           svc.Price,
		DurationMinutes: svc.DurationMinutes,
		IsActive:        svc.IsActive,
	}
}

func toEmployeeResponse(e model.Employee) employeeResponse {
	return employeeResponse{
		ID:          e.ID,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Email:       e.Email,
		PhoneNumber: e.PhoneNumber,
	}
}
