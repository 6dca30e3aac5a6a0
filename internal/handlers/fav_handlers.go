package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/services"
)

func AddToFavorites(fs *services.FavoritesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := strings.TrimSpace(c.Param("event_id"))
		if err := fs.Add(c.Request.Context(), currentViewer(c), eventID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"event_id": eventID}, "event added to favorites"))
	}
}

func RemoveFromFavorites(fs *services.FavoritesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := strings.TrimSpace(c.Param("event_id"))
		if err := fs.Remove(c.Request.Context(), currentViewer(c), eventID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"event_id": eventID}, "event removed from favorites"))
	}
}

func GetFavorites(fs *services.FavoritesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := fs.List(c.Request.Context(), currentViewer(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(view, ""))
	}
}
