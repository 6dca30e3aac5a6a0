package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/services"
)

const SessionHeader = "X-Session-ID"

// TrackView records a detail open. The session id is echoed back so the
// client can reuse a generated one.
func TrackView(vs *services.ViewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, recorded, err := vs.Track(c.Request.Context(), currentViewer(c), services.ViewRequest{
			EventID:   strings.TrimSpace(c.Param("id")),
			SessionID: strings.TrimSpace(c.GetHeader(SessionHeader)),
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header(SessionHeader, sessionID)
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{
			"session_id": sessionID,
			"recorded":   recorded,
		}, ""))
	}
}

func ViewStats(vs *services.ViewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := vs.Stats(c.Request.Context(), currentViewer(c), strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(stats, ""))
	}
}

func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
