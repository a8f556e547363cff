package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/services"
)

// MasterController handles master data (lookup table) requests
type MasterController struct {
	services *services.Services
}

// NewMasterController creates a new master data controller
func NewMasterController(srvs *services.Services) *MasterController {
	return &MasterController{services: srvs}
}

// GetAll handles GET /api/masters
func (c *MasterController) GetAll(w http.ResponseWriter, r *http.Request) {
	masters, err := c.services.Masters.GetAll(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, masters)
}

// GetCategory handles GET /api/masters/{category}
func (c *MasterController) GetCategory(w http.ResponseWriter, r *http.Request) {
	values, err := c.services.Masters.GetCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if values == nil {
		values = []models.MasterValue{}
	}

	respondJSON(w, http.StatusOK, values)
}

type masterValueRequest struct {
	Name string `json:"name"`
}

// CreateValue handles POST /api/masters/{category}
func (c *MasterController) CreateValue(w http.ResponseWriter, r *http.Request) {
	var req masterValueRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	value, err := c.services.Masters.CreateValue(r.Context(), chi.URLParam(r, "category"), req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, value)
}

// DeleteValue handles DELETE /api/masters/{category}/{id}
func (c *MasterController) DeleteValue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid master value ID")
		return
	}

	category := chi.URLParam(r, "category")
	if err := c.services.Masters.DeleteValue(r.Context(), category, id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "master value deleted successfully from " + category,
		"id":      id,
	})
}
