package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/premstore/storebot/internal/hash"
)

// newGuardedEnv builds a router with admin auth switched on.
func newGuardedEnv(t *testing.T) (*testEnv, *echo.Echo) {
	t.Helper()
	env := newTestEnv(t)

	pwHash, err := hash.HashPassword("sesame")
	require.NoError(t, err)
	env.Deps.Auth = &AuthHandler{PasswordHash: pwHash, JWTSecret: []byte("test-secret")}

	e := echo.New()
	Register(e, env.Deps)
	return env, e
}

func serveJSON(e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	_, e := newGuardedEnv(t)

	rec := serveJSON(e, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "sesame"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	rec = serveJSON(e, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardedRoutesRequireToken(t *testing.T) {
	_, e := newGuardedEnv(t)

	payload := map[string]any{
		"name": "Widget", "description": "d", "price": 9.99, "category": "misc",
	}

	rec := serveJSON(e, http.MethodPost, "/api/products", "", payload)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serveJSON(e, http.MethodPost, "/api/products", "garbage", payload)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	login := serveJSON(e, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "sesame"})
	require.Equal(t, http.StatusOK, login.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &resp))

	rec = serveJSON(e, http.MethodPost, "/api/products", resp.Token, payload)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProductListStaysOpen(t *testing.T) {
	_, e := newGuardedEnv(t)

	rec := serveJSON(e, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenModeWithoutAuthHandler(t *testing.T) {
	env := newTestEnv(t)

	e := echo.New()
	Register(e, env.Deps)

	payload := map[string]any{
		"name": "Widget", "description": "d", "price": 9.99, "category": "misc",
	}
	rec := serveJSON(e, http.MethodPost, "/api/products", "", payload)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	env.Deps.BotName = func() string { return "premstore_bot" }

	e := echo.New()
	Register(e, env.Deps)

	rec := serveJSON(e, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "OK", resp["status"])
	require.Equal(t, "premstore_bot", resp["bot"])
	require.Equal(t, Version, resp["version"])
}
