package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/joshua-takyi/entcal/internal/services"
)

func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters, err := bindFilters(c)
		if err != nil {
			respondError(c, err)
			return
		}

		viewer := currentViewer(c)
		var statuses []models.EventStatus
		if viewer.IsAdmin() {
			statuses = bindStatuses(c)
		}

		events, err := es.ListEvents(c.Request.Context(), viewer, filters, statuses...)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(events, 1, len(events), len(events)))
	}
}

func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, err := es.GetEvent(c.Request.Context(), currentViewer(c), strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(ev, ""))
	}
}

// ExportEventICS answers with the event as a .ics attachment.
func ExportEventICS(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		if err := es.ExportICS(c.Request.Context(), currentViewer(c), id, attachmentSink{c: c}); err != nil {
			respondError(c, err)
			return
		}
	}
}

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.EventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request body: "+err.Error()))
			return
		}

		ev, err := es.CreateEvent(c.Request.Context(), currentViewer(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(ev, "event submitted for review"))
	}
}

// ListManagedEvents lists the caller's own events, or every event for admins.
func ListManagedEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := es.ListManaged(c.Request.Context(), currentViewer(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(events, 1, len(events), len(events)))
	}
}

func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.EventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request body: "+err.Error()))
			return
		}

		ev, err := es.UpdateEvent(c.Request.Context(), currentViewer(c), strings.TrimSpace(c.Param("id")), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(ev, "event updated"))
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := es.DeleteEvent(c.Request.Context(), currentViewer(c), strings.TrimSpace(c.Param("id"))); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "event deleted"))
	}
}

func UpdateEventStatus(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var update models.StatusUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request body: "+err.Error()))
			return
		}

		ev, err := es.UpdateStatus(c.Request.Context(), currentViewer(c), strings.TrimSpace(c.Param("id")), update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(ev, "event status updated"))
	}
}

// ImportEvents reads the multipart "file" field as CSV.
func ImportEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("a CSV file is required in the \"file\" field"))
			return
		}
		file, err := header.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()

		result, err := es.ImportCSV(c.Request.Context(), currentViewer(c), file)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(result, "import finished"))
	}
}

func ListGenres(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		genres, err := es.ListGenres(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(genres, ""))
	}
}
