package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(checks map[string]Pinger) *gin.Engine {
	h := NewHealthHandler(checks)
	r := gin.New()
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.OPTIONS("/healthz", h.Health)
	return r
}

var (
	okPing   = PingFunc(func(context.Context) error { return nil })
	downPing = PingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		checks         map[string]Pinger
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "GET without checks",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok"}`,
		},
		{
			name:           "GET with healthy dependencies",
			method:         http.MethodGet,
			checks:         map[string]Pinger{"db": okPing, "redis": okPing},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok","checks":{"db":"ok","redis":"ok"}}`,
		},
		{
			name:           "GET with a failing dependency",
			method:         http.MethodGet,
			checks:         map[string]Pinger{"db": okPing, "redis": downPing},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"degraded","checks":{"db":"ok","redis":"unavailable"}}`,
		},
		{
			name:           "HEAD reflects dependency status without body",
			method:         http.MethodHead,
			checks:         map[string]Pinger{"db": downPing},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "OPTIONS skips checks",
			method:         http.MethodOptions,
			checks:         map[string]Pinger{"db": downPing},
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			setupRouter(tt.checks).ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			} else {
				assert.Empty(t, w.Body.String())
			}
		})
	}
}
