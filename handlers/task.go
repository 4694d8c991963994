package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"despacho_app_go/middleware"
	"despacho_app_go/models"
	"despacho_app_go/services"
	"despacho_app_go/store"

	"github.com/labstack/echo/v4"
)

type addTaskRequest struct {
	Title  string `json:"title"`
	Date   string `json:"date"`
	Urgent bool   `json:"urgent"`
}

// AddTask appends a task to a case, signed by the current user
func (h *Handlers) AddTask(c echo.Context) error {
	var req addTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Title == "" || req.Date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and date are required")
	}

	task, err := h.Store.AddTask(c.Param("id"), store.TaskInput{
		Title:  h.sanitize(req.Title),
		Date:   req.Date,
		Urgent: req.Urgent,
		By:     currentSignature(c),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add task")
	}
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask partially updates a task. Completion is signed by the
// current user.
func (h *Handlers) UpdateTask(c echo.Context) error {
	var req models.TaskUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	req.Title = h.sanitizePtr(req.Title)
	if req.Completed != nil && *req.Completed && req.By == nil {
		sig := currentSignature(c)
		req.By = &sig
	}

	if err := h.Store.UpdateTask(c.Param("id"), c.Param("taskId"), req); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update task")
	}
	return c.JSON(http.StatusOK, h.Store.GetCase(c.Param("id")))
}

// ImportTasks accepts an Excel workbook and loads its rows: rows whose
// expediente matches a case become case tasks, the rest become
// dashboard tasks.
func (h *Handlers) ImportTasks(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to open upload")
	}
	defer src.Close()

	imported, rowErrs, err := services.ParseTaskWorkbook(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid workbook: %v", err))
	}

	matched, floating := 0, 0
	signature := currentSignature(c)
	for _, row := range imported {
		caseID := h.findCaseByExpediente(row.Expediente)
		if caseID == "" {
			h.Store.PushDashboardTask(models.DashboardTask{
				Title:  row.Title,
				Date:   row.Date,
				Urgent: row.Urgent,
			})
			floating++
			continue
		}
		if _, err := h.Store.AddTask(caseID, store.TaskInput{
			Title:  row.Title,
			Date:   row.Date,
			Urgent: row.Urgent,
			By:     signature,
		}); err == nil {
			matched++
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"matched":  matched,
		"floating": floating,
		"errors":   rowErrs.Rows,
	})
}

func (h *Handlers) findCaseByExpediente(expediente string) string {
	if expediente == "" {
		return ""
	}
	for _, existing := range h.Store.GetCases() {
		if existing.Expediente == expediente {
			return existing.ID
		}
	}
	return ""
}

func currentSignature(c echo.Context) models.Signature {
	if user := middleware.GetCurrentUser(c); user != nil {
		return models.Signature{Name: user.Name, UID: user.UID}
	}
	return models.Signature{}
}
