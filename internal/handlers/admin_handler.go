package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tycoon-backend/internal/auth"
	"tycoon-backend/internal/services"
)

type AdminHandler struct {
	userService *services.UserService
}

func NewAdminHandler(userService *services.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// SuperuserMiddleware restricts a route group to superusers
func (h *AdminHandler) SuperuserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tgID, ok := auth.GetTgID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		user, err := h.userService.GetByTgID(tgID)
		if err != nil || !user.IsSuperuser {
			c.JSON(http.StatusForbidden, gin.H{"error": "Superuser access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetStats returns user-base totals and growth windows
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.userService.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetUsers returns a page of users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	offset, limit := pagination(c)
	users, err := h.userService.ListUsers(offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"offset": offset,
		"limit":  limit,
	})
}

// DeleteUser removes a user row
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.userService.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
