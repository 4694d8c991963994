package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"despacho_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authContext(cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireAuth(t *testing.T) {
	sessions := services.NewSessionService()
	user := &services.User{UID: "lic-garcia", Name: "Lic. Elena García"}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	handler := RequireAuth(sessions)(next)

	t.Run("MissingCookie", func(t *testing.T) {
		c, _ := authContext(nil)
		err := handler(c)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		c, rec := authContext(&http.Cookie{Name: SessionCookieName, Value: "nope"})
		err := handler(c)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)

		// The stale cookie is cleared on rejection
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("ValidSession", func(t *testing.T) {
		session, err := sessions.Create(user)
		require.NoError(t, err)

		c, rec := authContext(&http.Cookie{Name: SessionCookieName, Value: session.Token})
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		got := GetCurrentUser(c)
		require.NotNil(t, got)
		assert.Equal(t, "lic-garcia", got.UID)
	})
}

func TestGetCurrentUser(t *testing.T) {
	e := echo.New()

	t.Run("Missing", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.Nil(t, GetCurrentUser(c))
	})

	t.Run("WrongType", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set(ContextKeyUser, "not a user")
		assert.Nil(t, GetCurrentUser(c))
	})
}
