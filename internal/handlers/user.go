package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-store/internal/models"
	"chat-store/internal/repositories"
)

// UserHandler serves the contact directory.
type UserHandler struct {
	users repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// UpsertProfile stores or refreshes the caller's profile after signup or a
// profile edit in the identity provider.
func (h *UserHandler) UpsertProfile(c *gin.Context) {
	var req struct {
		DisplayName string  `json:"display_name" binding:"required"`
		Email       string  `json:"email" binding:"required"`
		PhotoURL    *string `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Upsert(c.Request.Context(), models.User{
		ID:          userIDFromContext(c),
		DisplayName: req.DisplayName,
		Email:       req.Email,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers returns every profile except the caller's.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListExcept(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser fetches one profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
