package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/middleware"
)

const portalOrigin = "http://localhost:5173"

var trivialHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func preflight(method, headers string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, "/trips", nil)
	req.Header.Set("Origin", portalOrigin)
	req.Header.Set("Access-Control-Request-Method", method)
	if headers != "" {
		req.Header.Set("Access-Control-Request-Headers", headers)
	}
	return req
}

func TestCORSHandler_GET_AllowedOrigin(t *testing.T) {
	h := middleware.NewCORSHandler([]string{portalOrigin})(trivialHandler)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Origin", portalOrigin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, portalOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Disposition", rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORSHandler_GET_DisallowedOrigin(t *testing.T) {
	h := middleware.NewCORSHandler([]string{portalOrigin})(trivialHandler)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// The response still goes out; the browser blocks it.
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSHandler_Preflight(t *testing.T) {
	h := middleware.NewCORSHandler([]string{portalOrigin})(trivialHandler)

	// Request header names arrive lowercased and sorted, as browsers send them.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight(http.MethodPut, "content-type"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, portalOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "PUT", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSHandler_Preflight_IdentityHeaders(t *testing.T) {
	h := middleware.NewCORSHandler([]string{portalOrigin})(trivialHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight(http.MethodPost, "content-type,x-user-name,x-user-role"))

	assert.Equal(t, portalOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	allowed := strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, allowed, "x-user-role")
	assert.Contains(t, allowed, "x-user-name")
}

func TestCORSHandler_Wildcard(t *testing.T) {
	h := middleware.NewCORSHandler([]string{"*"})(trivialHandler)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Origin", "http://anywhere.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
