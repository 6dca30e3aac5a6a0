package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/entcal/internal/calendar"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/joshua-takyi/entcal/internal/services"
)

// WeekCalendar serves the seven days starting at ?anchor= (today by default).
func WeekCalendar(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		anchor, filters, ok := gridParams(c, es)
		if !ok {
			return
		}
		grid, err := es.WeekGrid(c.Request.Context(), currentViewer(c), anchor, filters)
		writeGrid(c, grid, err)
	}
}

func RollingCalendar(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		anchor, filters, ok := gridParams(c, es)
		if !ok {
			return
		}
		grid, err := es.RollingGrid(c.Request.Context(), currentViewer(c), anchor, filters)
		writeGrid(c, grid, err)
	}
}

// MonthCalendar takes ?year= and a 1-based ?month=, both defaulting to the
// current month.
func MonthCalendar(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		today := es.Today()
		year, month := today.Year(), int(today.Month())

		var err error
		if v := c.Query("year"); v != "" {
			if year, err = strconv.Atoi(v); err != nil {
				respondError(c, fmt.Errorf("%w: year must be a number", models.ErrInvalidInput))
				return
			}
		}
		if v := c.Query("month"); v != "" {
			if month, err = strconv.Atoi(v); err != nil {
				respondError(c, fmt.Errorf("%w: month must be a number", models.ErrInvalidInput))
				return
			}
		}

		filters, err := bindFilters(c)
		if err != nil {
			respondError(c, err)
			return
		}
		grid, err := es.MonthGrid(c.Request.Context(), currentViewer(c), year, time.Month(month), filters)
		writeGrid(c, grid, err)
	}
}

func gridParams(c *gin.Context, es *services.EventService) (time.Time, models.EventFilters, bool) {
	anchor := es.Today()
	if v := c.Query("anchor"); v != "" {
		parsed, err := time.ParseInLocation(models.DateLayout, v, es.Location())
		if err != nil {
			respondError(c, fmt.Errorf("%w: anchor must be YYYY-MM-DD", models.ErrInvalidInput))
			return time.Time{}, models.EventFilters{}, false
		}
		anchor = parsed
	}
	filters, err := bindFilters(c)
	if err != nil {
		respondError(c, err)
		return time.Time{}, models.EventFilters{}, false
	}
	return anchor, filters, true
}

func writeGrid(c *gin.Context, grid calendar.Grid, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, helpers.SuccessResponse(grid, grid.Title))
}
