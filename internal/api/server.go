// Package api exposes the catalog store over JSON HTTP. The desktop
// front-end talks to these routes instead of issuing queries of its own.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mobiletools/catalog-cli/internal/model"
	"github.com/mobiletools/catalog-cli/internal/store"
)

// Server wires the catalog store to HTTP handlers.
type Server struct {
	store store.Store
}

func New(st store.Store) *Server {
	return &Server{store: st}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/companies", func(r chi.Router) {
		r.Get("/", s.handleListCompanies)
		r.Post("/", s.handleAddCompany)
		r.Put("/{id}", s.handleRenameCompany)
		r.Delete("/{id}", s.handleDeleteCompany)
	})

	r.Route("/models", func(r chi.Router) {
		r.Get("/", s.handleListModels)
		r.Post("/", s.handleAddModel)
		r.Get("/{id}", s.handleGetModel)
		r.Put("/{id}", s.handleUpdateModel)
		r.Delete("/{id}", s.handleDeleteModel)
		r.Get("/{id}/prices", s.handleListPrices)
		r.Post("/{id}/prices", s.handleUpsertPrice)
		r.Put("/{id}/prices", s.handleUpsertPrice)
	})

	r.Delete("/prices/{id}", s.handleDeletePrice)
	r.Get("/regions", s.handleListRegions)
	r.Get("/processors", s.handleListProcessors)
	r.Get("/stats", s.handleStats)
	r.Get("/search", s.handleSearch)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Companies ---

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.ListCompanies(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

type companyRequest struct {
	Name string `json:"company_name"`
}

func (s *Server) handleAddCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		badRequest(w, "company_name is required")
		return
	}
	id, err := s.store.AddCompany(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.Company{ID: id, Name: req.Name})
}

func (s *Server) handleRenameCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		badRequest(w, "company_name is required")
		return
	}
	if err := s.store.RenameCompany(r.Context(), id, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteCompany(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Models ---

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	var companyID *int64
	if v := r.URL.Query().Get("company_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(w, "company_id must be an integer")
			return
		}
		companyID = &id
	}
	models, err := s.store.ListModels(r.Context(), companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	device, err := s.store.GetModel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (s *Server) handleAddModel(w http.ResponseWriter, r *http.Request) {
	var in model.DeviceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if in.Name == "" || in.CompanyID == 0 {
		badRequest(w, "model_name and company_id are required")
		return
	}
	id, err := s.store.AddModel(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"model_id": id})
}

func (s *Server) handleUpdateModel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in model.DeviceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if in.Name == "" || in.CompanyID == 0 {
		badRequest(w, "model_name and company_id are required")
		return
	}
	if err := s.store.UpdateModel(r.Context(), id, in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteModel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		badRequest(w, "q is required")
		return
	}
	results, err := s.store.SearchModels(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// --- Prices ---

// priceItem is a price row with its display currency attached.
type priceItem struct {
	model.PriceListItem
	Currency model.Currency `json:"currency"`
}

func (s *Server) handleListPrices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	prices, err := s.store.ListModelPrices(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]priceItem, 0, len(prices))
	for _, p := range prices {
		items = append(items, priceItem{PriceListItem: p, Currency: model.CurrencyFor(p.RegionName)})
	}
	writeJSON(w, http.StatusOK, items)
}

type upsertPriceRequest struct {
	RegionID int64    `json:"region_id"`
	Amount   *float64 `json:"price"`
}

func (s *Server) handleUpsertPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req upsertPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RegionID == 0 || req.Amount == nil {
		badRequest(w, "region_id and price are required")
		return
	}
	if err := s.store.UpsertPrice(r.Context(), id, req.RegionID, *req.Amount); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeletePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeletePrice(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Reference data & analytics ---

func (s *Server) handleListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := s.store.ListRegions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regions)
}

func (s *Server) handleListProcessors(w http.ResponseWriter, r *http.Request) {
	procs, err := s.store.ListProcessors(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, procs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.PriceStatistics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- helpers ---

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "id must be an integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps store failures to status codes: missing rows to 404,
// constraint violations to 409, everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case store.IsConstraint(err):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("store operation failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
