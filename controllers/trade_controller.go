package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/services"
)

// TradeController handles trade entry requests
type TradeController struct {
	services *services.Services
}

// NewTradeController creates a new trade controller
func NewTradeController(srvs *services.Services) *TradeController {
	return &TradeController{services: srvs}
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// Create handles POST /api/trade-entries
func (c *TradeController) Create(w http.ResponseWriter, r *http.Request) {
	var entry models.TradeEntry
	if err := decodeJSON(r, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := c.services.Trades.Create(r.Context(), &entry)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetAll handles GET /api/trade-entries
func (c *TradeController) GetAll(w http.ResponseWriter, r *http.Request) {
	entries, err := c.services.Trades.GetAll(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.TradeEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetByDate handles GET /api/trade-entries/date/{date}
func (c *TradeController) GetByDate(w http.ResponseWriter, r *http.Request) {
	entries, err := c.services.Trades.GetByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.TradeEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetByID handles GET /api/trade-entries/{id}
func (c *TradeController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid trade entry ID")
		return
	}

	entry, err := c.services.Trades.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// Update handles PUT /api/trade-entries/{id}
func (c *TradeController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid trade entry ID")
		return
	}

	var entry models.TradeEntry
	if err := decodeJSON(r, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := c.services.Trades.Update(r.Context(), id, &entry)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/trade-entries/{id}
func (c *TradeController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid trade entry ID")
		return
	}

	if err := c.services.Trades.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "trade entry deleted successfully",
		"id":      id,
	})
}
