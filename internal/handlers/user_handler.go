package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/joshua-takyi/entcal/internal/services"
)

// GetMe returns the caller's users row.
func GetMe(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := currentViewer(c)
		user, err := u.GetProfile(c.Request.Context(), viewer.UserID, viewer.AccessToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, ""))
	}
}

func UpdateMe(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var update models.ProfileUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request body: "+err.Error()))
			return
		}

		user, err := u.UpdateProfile(c.Request.Context(), currentViewer(c), update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, "profile updated"))
	}
}

func BecomeOrganizer(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := u.BecomeOrganizer(c.Request.Context(), currentViewer(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, "organizer access granted"))
	}
}

func ListUsers(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := u.ListUsers(c.Request.Context(), currentViewer(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(users, 1, len(users), len(users)))
	}
}

// UpdateUser lets an admin change another user's role or subscription tier.
func UpdateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		if _, err := uuid.Parse(id); err != nil {
			respondError(c, fmt.Errorf("%w: invalid user ID format", models.ErrInvalidInput))
			return
		}

		var update models.UserAdminUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request body: "+err.Error()))
			return
		}

		user, err := u.UpdateUser(c.Request.Context(), currentViewer(c), id, update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, "user updated"))
	}
}
