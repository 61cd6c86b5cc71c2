package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/url-shortener-go/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func setupCORSRouter(origins string) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.CORS(origins))

	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	huma.Get(api, "/api/urls", func(_ context.Context, _ *struct{}) (*testOutput, error) {
		return &testOutput{Body: "ok"}, nil
	})

	return router
}

func TestCORS(t *testing.T) {
	t.Run("answers preflight for any origin", func(t *testing.T) {
		router := setupCORSRouter("*")

		req := httptest.NewRequest(http.MethodOptions, "/api/urls", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.MethodPost, w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("allows simple requests", func(t *testing.T) {
		router := setupCORSRouter("*")

		req := httptest.NewRequest(http.MethodGet, "/api/urls", nil)
		req.Header.Set("Origin", "http://localhost:5173")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("restricts to listed origins", func(t *testing.T) {
		router := setupCORSRouter("https://app.example.com, https://admin.example.com")

		allowed := httptest.NewRequest(http.MethodGet, "/api/urls", nil)
		allowed.Header.Set("Origin", "https://admin.example.com")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, allowed)
		assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		denied := httptest.NewRequest(http.MethodGet, "/api/urls", nil)
		denied.Header.Set("Origin", "https://evil.example.com")

		w = httptest.NewRecorder()
		router.ServeHTTP(w, denied)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
