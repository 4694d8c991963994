package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"despacho_app_go/config"
	"despacho_app_go/middleware"
	"despacho_app_go/models"
	"despacho_app_go/services"
	"despacho_app_go/store"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Snapshot{}))

	s, err := store.New(store.Options{Local: services.NewLocalStore(db)})
	require.NoError(t, err)

	return New(s, services.NewSessionService(), &config.Config{})
}

// request builds an echo context for a handler invocation
func request(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestLogin(t *testing.T) {
	h := newTestHandlers(t)

	t.Run("ValidCredentials", func(t *testing.T) {
		c, rec := request(http.MethodPost, `{"email":"egarcia@despacho.app","password":"despacho2024"}`)
		require.NoError(t, h.Login(c))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "lic-garcia", resp["uid"])

		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		c, _ := request(http.MethodPost, `{"email":"egarcia@despacho.app","password":"mala"}`)
		err := h.Login(c)
		assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
	})
}

func TestLogout(t *testing.T) {
	h := newTestHandlers(t)

	user, err := services.Authenticate("egarcia@despacho.app", "despacho2024")
	require.NoError(t, err)
	session, err := h.Sessions.Create(user)
	require.NoError(t, err)

	c, rec := request(http.MethodPost, "")
	c.Request().AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: session.Token})
	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err = h.Sessions.Validate(session.Token)
	assert.ErrorIs(t, err, services.ErrSessionExpired)
}

func TestJurisdictionHandlers(t *testing.T) {
	h := newTestHandlers(t)

	t.Run("GetStates", func(t *testing.T) {
		c, rec := request(http.MethodGet, "")
		require.NoError(t, h.GetStates(c))

		var states []models.State
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &states))
		assert.Len(t, states, 3)
	})

	t.Run("GetStateNotFound", func(t *testing.T) {
		c, _ := request(http.MethodGet, "")
		c.SetParamNames("id")
		c.SetParamValues("nope")
		assert.Equal(t, http.StatusNotFound, httpStatus(t, h.GetState(c)))
	})

	t.Run("AddSubject", func(t *testing.T) {
		c, rec := request(http.MethodPost, `{"name":"Fiscal"}`)
		c.SetParamNames("id")
		c.SetParamValues("cdmx")
		require.NoError(t, h.AddSubject(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		var subject models.Subject
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subject))
		assert.Equal(t, "cdmx-fis", subject.ID)
	})

	t.Run("AddSubjectMissingName", func(t *testing.T) {
		c, _ := request(http.MethodPost, `{}`)
		c.SetParamNames("id")
		c.SetParamValues("cdmx")
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.AddSubject(c)))
	})
}

func TestCaseHandlers(t *testing.T) {
	h := newTestHandlers(t)

	var caseID string

	t.Run("Create", func(t *testing.T) {
		c, rec := request(http.MethodPost, `{"subjectId":"cdmx-fam","actor":"Juan Pérez","demandado":"María López","expediente":"123/2026"}`)
		require.NoError(t, h.CreateCase(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		var created models.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "Juan Pérez vs María López", created.Title)
		caseID = created.ID
	})

	t.Run("CreateMissingFields", func(t *testing.T) {
		c, _ := request(http.MethodPost, `{"subjectId":"cdmx-fam"}`)
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.CreateCase(c)))
	})

	t.Run("CreateUnknownSubject", func(t *testing.T) {
		c, _ := request(http.MethodPost, `{"subjectId":"cdmx-zzz","actor":"A","demandado":"B"}`)
		assert.Equal(t, http.StatusNotFound, httpStatus(t, h.CreateCase(c)))
	})

	t.Run("CreateSanitizesMarkup", func(t *testing.T) {
		c, rec := request(http.MethodPost, `{"subjectId":"cdmx-civ","actor":"<script>alert(1)</script>Juan","demandado":"Pedro"}`)
		require.NoError(t, h.CreateCase(c))

		var created models.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "Juan", created.Actor)
	})

	t.Run("Get", func(t *testing.T) {
		c, rec := request(http.MethodGet, "")
		c.SetParamNames("id")
		c.SetParamValues(caseID)
		require.NoError(t, h.GetCase(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		c, _ := request(http.MethodGet, "")
		c.SetParamNames("id")
		c.SetParamValues("case-nope")
		assert.Equal(t, http.StatusNotFound, httpStatus(t, h.GetCase(c)))
	})

	t.Run("UpdateInvalidStatus", func(t *testing.T) {
		c, _ := request(http.MethodPut, `{"status":"Perdido"}`)
		c.SetParamNames("id")
		c.SetParamValues(caseID)
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.UpdateCase(c)))
	})

	t.Run("Update", func(t *testing.T) {
		c, rec := request(http.MethodPut, `{"status":"En Trámite"}`)
		c.SetParamNames("id")
		c.SetParamValues(caseID)
		require.NoError(t, h.UpdateCase(c))

		var updated models.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, models.CaseStatusEnTramite, updated.Status)
	})

	t.Run("Delete", func(t *testing.T) {
		c, rec := request(http.MethodDelete, "")
		c.SetParamNames("id")
		c.SetParamValues(caseID)
		require.NoError(t, h.DeleteCase(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		c2, _ := request(http.MethodDelete, "")
		c2.SetParamNames("id")
		c2.SetParamValues(caseID)
		assert.Equal(t, http.StatusNotFound, httpStatus(t, h.DeleteCase(c2)))
	})
}

func TestTaskHandlers(t *testing.T) {
	h := newTestHandlers(t)
	created, err := h.Store.AddCase("cdmx-fam", store.CaseInput{Actor: "A", Demandado: "B"})
	require.NoError(t, err)

	asUser := func(c echo.Context) {
		c.Set(middleware.ContextKeyUser, &services.User{UID: "lic-garcia", Name: "Lic. Elena García"})
	}

	var taskID string

	t.Run("AddTask", func(t *testing.T) {
		c, rec := request(http.MethodPost, `{"title":"Contestar demanda","date":"2026-09-05","urgent":true}`)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		asUser(c)
		require.NoError(t, h.AddTask(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		var task models.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
		assert.Equal(t, "lic-garcia", task.CreatedBy.UID)
		taskID = task.ID
	})

	t.Run("AddTaskMissingFields", func(t *testing.T) {
		c, _ := request(http.MethodPost, `{"title":"Sin fecha"}`)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		asUser(c)
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.AddTask(c)))
	})

	t.Run("CompleteSignsWithCurrentUser", func(t *testing.T) {
		c, _ := request(http.MethodPut, `{"completed":true}`)
		c.SetParamNames("id", "taskId")
		c.SetParamValues(created.ID, taskID)
		asUser(c)
		require.NoError(t, h.UpdateTask(c))

		task := h.Store.GetCase(created.ID).FindTask(taskID)
		require.NotNil(t, task.CompletedBy)
		assert.Equal(t, "lic-garcia", task.CompletedBy.UID)
	})

	t.Run("UnknownTask", func(t *testing.T) {
		c, _ := request(http.MethodPut, `{"completed":true}`)
		c.SetParamNames("id", "taskId")
		c.SetParamValues(created.ID, "task-nope")
		asUser(c)
		assert.Equal(t, http.StatusNotFound, httpStatus(t, h.UpdateTask(c)))
	})
}

func TestEventHandlers(t *testing.T) {
	h := newTestHandlers(t)
	created, err := h.Store.AddCase("cdmx-fam", store.CaseInput{Actor: "A", Demandado: "B"})
	require.NoError(t, err)
	_, err = h.Store.AddTask(created.ID, store.TaskInput{Title: "Audiencia", Date: "2099-01-01", Urgent: true})
	require.NoError(t, err)

	t.Run("AllEvents", func(t *testing.T) {
		c, rec := request(http.MethodGet, "")
		require.NoError(t, h.GetEvents(c))

		var events []models.CalendarEvent
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
		assert.NotEmpty(t, events)
	})

	t.Run("UpcomingRejectsBadDays", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/?days=cero", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.GetUpcomingEvents(c)))
	})

	t.Run("UrgentTerms", func(t *testing.T) {
		c, rec := request(http.MethodGet, "")
		require.NoError(t, h.GetUrgentTerms(c))

		var events []models.CalendarEvent
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
		require.NotEmpty(t, events)
		assert.Equal(t, "Audiencia", events[0].Title)
	})
}

func TestPromotionHandlers(t *testing.T) {
	h := newTestHandlers(t)

	t.Run("EmptyList", func(t *testing.T) {
		c, rec := request(http.MethodGet, "")
		require.NoError(t, h.GetPromotions(c))
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("MoveMissingCaseID", func(t *testing.T) {
		c, _ := request(http.MethodPost, `{}`)
		c.SetParamNames("id")
		c.SetParamValues("promo-1")
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.MovePromotion(c)))
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		c, _ := request(http.MethodDelete, "")
		c.SetParamNames("id")
		c.SetParamValues("promo-nope")
		assert.Equal(t, http.StatusNotFound, httpStatus(t, h.DeletePromotion(c)))
	})

	t.Run("RetryMissing", func(t *testing.T) {
		c, _ := request(http.MethodPost, "")
		c.SetParamNames("id")
		c.SetParamValues("promo-nope")
		assert.Equal(t, http.StatusNotFound, httpStatus(t, h.RetryPromotion(c)))
	})
}
