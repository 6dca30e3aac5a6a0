package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/joshua-takyi/entcal/internal/services"
)

// GetPreferences returns the stored preferences with the interaction timing
// derived from them.
func GetPreferences(ps *services.PreferencesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		prefs, err := ps.Get(c.Request.Context(), currentViewer(c).UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(ps.View(prefs), ""))
	}
}

func UpdatePreferences(ps *services.PreferencesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var prefs models.Preferences
		if err := c.ShouldBindJSON(&prefs); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request body: "+err.Error()))
			return
		}

		saved, err := ps.Save(c.Request.Context(), currentViewer(c).UserID, prefs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(ps.View(saved), "preferences saved"))
	}
}
