package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/services"
)

// ManualEntryController handles manual trade entry requests
type ManualEntryController struct {
	services *services.Services
}

// NewManualEntryController creates a new manual entry controller
func NewManualEntryController(srvs *services.Services) *ManualEntryController {
	return &ManualEntryController{services: srvs}
}

// Create handles POST /api/manual-trade-entries
func (c *ManualEntryController) Create(w http.ResponseWriter, r *http.Request) {
	var entry models.ManualTradeEntry
	if err := decodeJSON(r, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := c.services.ManualEntries.Create(r.Context(), &entry)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// BulkCreate handles POST /api/manual-trade-entries/bulk
func (c *ManualEntryController) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var entries []models.ManualTradeEntry
	if err := decodeJSON(r, &entries); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := c.services.ManualEntries.BulkCreate(r.Context(), entries)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if created == nil {
		created = []models.ManualTradeEntry{}
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetAll handles GET /api/manual-trade-entries
func (c *ManualEntryController) GetAll(w http.ResponseWriter, r *http.Request) {
	entries, err := c.services.ManualEntries.GetAll(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.ManualTradeEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetByDate handles GET /api/manual-trade-entries/date/{date}
func (c *ManualEntryController) GetByDate(w http.ResponseWriter, r *http.Request) {
	entries, err := c.services.ManualEntries.GetByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.ManualTradeEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetByID handles GET /api/manual-trade-entries/{id}
func (c *ManualEntryController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid manual trade entry ID")
		return
	}

	entry, err := c.services.ManualEntries.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// Update handles PUT /api/manual-trade-entries/{id}
func (c *ManualEntryController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid manual trade entry ID")
		return
	}

	var entry models.ManualTradeEntry
	if err := decodeJSON(r, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := c.services.ManualEntries.Update(r.Context(), id, &entry)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/manual-trade-entries/{id}
func (c *ManualEntryController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid manual trade entry ID")
		return
	}

	if err := c.services.ManualEntries.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "manual trade entry deleted successfully",
		"id":      id,
	})
}
