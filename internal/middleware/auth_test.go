package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newAuthTestServer() *echo.Echo {
	e := echo.New()
	e.GET("/admin/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"userId": c.Get("user_id")})
	}, AdminAuth(testSecret))
	return e
}

func TestAdminAuth_ValidToken(t *testing.T) {
	e := newAuthTestServer()

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, jwt.MapClaims{"sub": 3.0, "role": "admin"}))
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":3`)
}

func TestAdminAuth_TokenViaQueryParam(t *testing.T) {
	// EventSource cannot set headers
	e := newAuthTestServer()

	req := httptest.NewRequest(http.MethodGet,
		"/admin/ping?token="+signToken(t, jwt.MapClaims{"sub": 3.0, "role": "admin"}), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuth_Rejections(t *testing.T) {
	e := newAuthTestServer()

	tests := []struct {
		name   string
		header func(t *testing.T) string
		want   int
	}{
		{"missing token", func(t *testing.T) string { return "" }, http.StatusUnauthorized},
		{"garbage token", func(t *testing.T) string { return "Bearer not-a-jwt" }, http.StatusUnauthorized},
		{"wrong role", func(t *testing.T) string {
			return "Bearer " + signToken(t, jwt.MapClaims{"role": "customer"})
		}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if header := tt.header(t); header != "" {
				req.Header.Set(echo.HeaderAuthorization, header)
			}
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
