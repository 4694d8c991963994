package handlers

import (
	"net/http"
	"strconv"
	"time"

	"despacho_app_go/store"

	"github.com/labstack/echo/v4"
)

// GetEvents returns the full derived calendar-event list
func (h *Handlers) GetEvents(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.AllEvents())
}

// GetTodayEvents returns events falling on the current calendar day
func (h *Handlers) GetTodayEvents(c echo.Context) error {
	today := time.Now().Format("2006-01-02")
	return c.JSON(http.StatusOK, store.FilterOn(h.Store.AllEvents(), today))
}

// GetUpcomingEvents returns events within the next N days (default 7),
// starting today.
func (h *Handlers) GetUpcomingEvents(c echo.Context) error {
	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "days must be a positive integer")
		}
		days = parsed
	}
	return c.JSON(http.StatusOK, store.FilterRange(h.Store.AllEvents(), time.Now(), days))
}

// GetUrgentTerms returns urgent tasks and deadlines sorted by date
func (h *Handlers) GetUrgentTerms(c echo.Context) error {
	return c.JSON(http.StatusOK, store.UrgentTerms(h.Store.AllEvents()))
}
