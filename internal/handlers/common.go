package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/middleware"
	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/joshua-takyi/entcal/internal/services"
)

const viewerKey = "viewer"

// ResolveViewer turns the authenticated caller, if any, into a
// services.Viewer. Signed-in callers get their show_past_events preference.
func ResolveViewer(ps *services.PreferencesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var viewer services.Viewer
		if claims, ok := middleware.Claims(c); ok {
			viewer = services.Viewer{
				UserID:      claims.UserID,
				Role:        claims.GetSafeRole(),
				AccessToken: claims.AccessToken,
			}
			prefs, err := ps.Get(c.Request.Context(), claims.UserID)
			if err != nil {
				// ShowPast stays off
				_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			} else {
				viewer.ShowPast = prefs.ShowPastEvents
			}
		}
		c.Set(viewerKey, viewer)
		c.Next()
	}
}

func currentViewer(c *gin.Context) services.Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(services.Viewer); ok {
			return viewer
		}
	}
	if claims, ok := middleware.Claims(c); ok {
		return services.Viewer{UserID: claims.UserID, Role: claims.GetSafeRole(), AccessToken: claims.AccessToken}
	}
	return services.Viewer{}
}

// respondError maps service errors onto status codes. Unknown errors are
// attached to the context for ErrorHandler and answered generically.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrEventNotFound), errors.Is(err, models.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, helpers.ErrorResponse(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("internal server error"))
	}
}

// bindFilters reads the filter query parameters. Normalization happens in
// the service.
func bindFilters(c *gin.Context) (models.EventFilters, error) {
	var f models.EventFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		return models.EventFilters{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return f, nil
}

func bindStatuses(c *gin.Context) []models.EventStatus {
	values := splitValues(c.QueryArray("status"))
	statuses := make([]models.EventStatus, 0, len(values))
	for _, v := range values {
		statuses = append(statuses, models.EventStatus(strings.ToLower(v)))
	}
	return statuses
}

func splitValues(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// attachmentSink streams an export back as a file download.
type attachmentSink struct {
	c *gin.Context
}

func (s attachmentSink) Save(filename, contentType string, payload []byte) error {
	s.c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	s.c.Data(http.StatusOK, contentType+"; charset=utf-8", payload)
	return nil
}
