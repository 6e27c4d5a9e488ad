package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/internal/storage"
)

// DirectoryHandler serves client/company profiles and subcategories.
type DirectoryHandler struct {
	identity      *storage.IdentityRepository
	subcategories *storage.SubcategoryRepository
}

func NewDirectoryHandler(identity *storage.IdentityRepository, subcategories *storage.SubcategoryRepository) *DirectoryHandler {
	return &DirectoryHandler{identity: identity, subcategories: subcategories}
}

type createClientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type clientResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type createCompanyRequest struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Street      string `json:"street"`
	Description string `json:"description"`
}

type companyResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Street      string `json:"street"`
	Description string `json:"description"`
}

type subcategoryResponse struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
}

func (h *DirectoryHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, ok := requireRole(w, r, model.RoleUser)
	if !ok {
		return
	}

	var req createClientRequest
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

	client, err := h.identity.CreateClient(r.Context(), &model.Client{
		AccountID: c.AccountID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			http.Error(w, "client profile already exists", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create client profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, clientResponse{
		ID:        client.ID,
		FirstName: client.FirstName,
		LastName:  client.LastName,
	})
}

func (h *DirectoryHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, ok := requireRole(w, r, model.RoleCompany)
	if !ok {
		return
	}

	var req createCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	company, err := h.identity.CreateCompany(r.Context(), &model.Company{
		AccountID:   c.AccountID,
		Name:        req.Name,
		City:        strings.TrimSpace(req.City),
		PostalCode:  strings.TrimSpace(req.PostalCode),
		Street:      strings.TrimSpace(req.Street),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			http.Error(w, "company profile already exists", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create company profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toCompanyResponse(*company))
}

// Companies routes GET (public listing) and POST on the same path.
func (h *DirectoryHandler) Companies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		companies, err := h.identity.ListCompanies(r.Context())
		if err != nil {
			http.Error(w, "failed to list companies", http.StatusInternalServerError)
			return
		}
		out := make([]companyResponse, 0, len(companies))
		for _, c := range companies {
			out = append(out, toCompanyResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		h.CreateCompany(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DirectoryHandler) Subcategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listSubcategories(w, r)
	case http.MethodPost:
		h.createSubcategory(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DirectoryHandler) createSubcategory(w http.ResponseWriter, r *http.Request) {
	c, ok := requireRole(w, r, model.RoleCompany)
	if !ok {
		return
	}
	companyID, ok, err := h.identity.CompanyIDByAccount(r.Context(), c.AccountID)
	if err != nil {
		http.Error(w, "failed to resolve company", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "company profile required", http.StatusForbidden)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	sub, err := h.subcategories.Create(r.Context(), &model.Subcategory{
		CompanyID: companyID,
		Name:      req.Name,
	})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			http.Error(w, "subcategory already exists", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create subcategory", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, subcategoryResponse{ID: sub.ID, CompanyID: sub.CompanyID, Name: sub.Name})
}

func (h *DirectoryHandler) listSubcategories(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("company_id")), 10, 64)
	if err != nil {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return
	}
	subs, err := h.subcategories.ListByCompany(r.Context(), companyID)
	if err != nil {
		http.Error(w, "failed to list subcategories", http.StatusInternalServerError)
		return
	}
	out := make([]subcategoryResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, subcategoryResponse{ID: s.ID, CompanyID: s.CompanyID, Name: s.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func toCompanyResponse(c model.Company) companyResponse {
	return companyResponse{
		ID:          c.ID,
		Name:        c.Name,
		City:        c.City,
		PostalCode:  c.PostalCode,
		Street:      c.Street,
		Description: c.Description,
	}
}
