package handlers

import (
	"errors"
	"net/http"

	"despacho_app_go/services"
	"despacho_app_go/store"

	"github.com/labstack/echo/v4"
)

func (h *Handlers) GetPromotions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.GetPromotions())
}

// AddPromotion stages a freshly captured document. Classification runs
// in the background; clients follow the status over the websocket feed.
func (h *Handlers) AddPromotion(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	doc, err := services.DocumentFromMultipart(fileHeader)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read upload")
	}

	promotion, err := h.Store.AddPromotion(c.Request().Context(), doc, nil)
	if err != nil {
		if errors.Is(err, store.ErrDocumentTooLarge) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Document too large")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to stage document")
	}
	return c.JSON(http.StatusCreated, promotion)
}

// RetryPromotion re-runs a failed analysis
func (h *Handlers) RetryPromotion(c echo.Context) error {
	if err := h.Store.RetryPromotionAnalysis(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Promotion not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retry analysis")
	}
	return c.NoContent(http.StatusAccepted)
}

type movePromotionRequest struct {
	CaseID string `json:"caseId"`
}

// MovePromotion assigns a staged promotion to a case as a new image
func (h *Handlers) MovePromotion(c echo.Context) error {
	var req movePromotionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.CaseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "caseId is required")
	}

	image, err := h.Store.MovePromotionToCase(c.Param("id"), req.CaseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Promotion or case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to move promotion")
	}
	return c.JSON(http.StatusOK, image)
}

func (h *Handlers) DeletePromotion(c echo.Context) error {
	if err := h.Store.DeletePromotion(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Promotion not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete promotion")
	}
	return c.NoContent(http.StatusNoContent)
}
