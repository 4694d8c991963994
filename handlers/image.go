package handlers

import (
	"errors"
	"net/http"

	"despacho_app_go/services"
	"despacho_app_go/store"

	"github.com/labstack/echo/v4"
)

// UploadImage attaches a document to a case. The response carries the
// new image immediately; classification finishes in the background and
// is pushed over the websocket feed.
func (h *Handlers) UploadImage(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	doc, err := services.DocumentFromMultipart(fileHeader)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read upload")
	}

	result, err := h.Store.AddImageToCase(c.Request().Context(), c.Param("id"), doc, nil)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to attach document")
	}

	resp := map[string]interface{}{"image": result.Image}
	if result.UploadWarning != nil {
		resp["warning"] = "El documento se guardó localmente; la subida al almacenamiento falló"
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handlers) DeleteImage(c echo.Context) error {
	err := h.Store.DeleteImageFromCase(c.Param("id"), c.Param("imageId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Image not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete image")
	}
	return c.NoContent(http.StatusNoContent)
}

type bulkImageRequest struct {
	ImageIDs []string `json:"imageIds"`
}

// DeleteImages removes several images from a case in one operation
func (h *Handlers) DeleteImages(c echo.Context) error {
	var req bulkImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if len(req.ImageIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "imageIds is required")
	}

	if err := h.Store.DeleteImages(c.Param("id"), req.ImageIDs); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No matching images")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete images")
	}
	return c.NoContent(http.StatusNoContent)
}

// ReorderImages rearranges a case's images to the given id order
func (h *Handlers) ReorderImages(c echo.Context) error {
	var req bulkImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.Store.ReorderImages(c.Param("id"), req.ImageIDs); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to reorder images")
	}
	return c.JSON(http.StatusOK, h.Store.GetCase(c.Param("id")))
}
