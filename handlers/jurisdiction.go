package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetStates returns the jurisdiction tree
func (h *Handlers) GetStates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.GetStates())
}

// GetState returns a single state
func (h *Handlers) GetState(c echo.Context) error {
	state := h.Store.GetState(c.Param("id"))
	if state == nil {
		return echo.NewHTTPError(http.StatusNotFound, "State not found")
	}
	return c.JSON(http.StatusOK, state)
}

// GetSubject returns a subject, searched across all states
func (h *Handlers) GetSubject(c echo.Context) error {
	subject := h.Store.GetSubject(c.Param("id"))
	if subject == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Subject not found")
	}
	return c.JSON(http.StatusOK, subject)
}

type addSubjectRequest struct {
	Name string `json:"name"`
}

// AddSubject appends a subject to a state
func (h *Handlers) AddSubject(c echo.Context) error {
	var req addSubjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
	}

	subject, err := h.Store.AddSubject(c.Param("id"), h.sanitize(req.Name))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, subject)
}
