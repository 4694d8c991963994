package handlers

import (
	"errors"
	"net/http"

	"despacho_app_go/models"
	"despacho_app_go/store"

	"github.com/labstack/echo/v4"
)

// GetCases returns all cases
func (h *Handlers) GetCases(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.GetCases())
}

// GetCase returns one case by id
func (h *Handlers) GetCase(c echo.Context) error {
	found := h.Store.GetCase(c.Param("id"))
	if found == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Case not found")
	}
	return c.JSON(http.StatusOK, found)
}

type createCaseRequest struct {
	SubjectID  string `json:"subjectId"`
	Actor      string `json:"actor"`
	Demandado  string `json:"demandado"`
	Expediente string `json:"expediente"`
	Juzgado    string `json:"juzgado"`
}

// CreateCase adds a case under a subject
func (h *Handlers) CreateCase(c echo.Context) error {
	var req createCaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.SubjectID == "" || req.Actor == "" || req.Demandado == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "subjectId, actor and demandado are required")
	}

	created, err := h.Store.AddCase(req.SubjectID, store.CaseInput{
		Actor:      h.sanitize(req.Actor),
		Demandado:  h.sanitize(req.Demandado),
		Expediente: h.sanitize(req.Expediente),
		Juzgado:    h.sanitize(req.Juzgado),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Subject not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create case")
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateCase shallow-merges fields into a case
func (h *Handlers) UpdateCase(c echo.Context) error {
	var req models.CaseUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Status != nil && !models.IsValidCaseStatus(*req.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	}

	req.Actor = h.sanitizePtr(req.Actor)
	req.Demandado = h.sanitizePtr(req.Demandado)
	req.Expediente = h.sanitizePtr(req.Expediente)
	req.Juzgado = h.sanitizePtr(req.Juzgado)

	if err := h.Store.UpdateCase(c.Param("id"), req); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update case")
	}
	return c.JSON(http.StatusOK, h.Store.GetCase(c.Param("id")))
}

// DeleteCase removes a case and its subject back-reference
func (h *Handlers) DeleteCase(c echo.Context) error {
	if err := h.Store.DeleteCase(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete case")
	}
	return c.NoContent(http.StatusNoContent)
}
