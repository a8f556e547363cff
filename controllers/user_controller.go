package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/services"
)

// UserController handles the admin-only account management requests
type UserController struct {
	services *services.Services
}

// NewUserController creates a new user controller
func NewUserController(srvs *services.Services) *UserController {
	return &UserController{services: srvs}
}

type createUserRequest struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Create handles POST /api/users
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := c.services.Users.Create(r.Context(), req.Username, req.Password, req.Role, req.Permissions)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// GetAll handles GET /api/users
func (c *UserController) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := c.services.Users.GetAll(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	respondJSON(w, http.StatusOK, users)
}

// Delete handles DELETE /api/users/{username}
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		respondError(w, http.StatusBadRequest, "username is required")
		return
	}

	if err := c.services.Users.Delete(r.Context(), username); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":  "user deleted successfully",
		"username": username,
	})
}
