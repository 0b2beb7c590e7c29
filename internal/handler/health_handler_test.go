package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"freightdesk/internal/handler"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type stubReference struct{ vehicles, ports int }

func (r stubReference) Size() (int, int) { return r.vehicles, r.ports }

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		db     stubPinger
		ref    stubReference
		status int
	}{
		{"ready", stubPinger{}, stubReference{vehicles: 12, ports: 40}, http.StatusOK},
		{"database down", stubPinger{err: errors.New("connection refused")}, stubReference{vehicles: 12}, http.StatusServiceUnavailable},
		{"reference not loaded", stubPinger{}, stubReference{}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(tt.db, tt.ref)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)

			h.Readiness(c)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(stubPinger{err: errors.New("down")}, stubReference{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/healthz", http.NoBody)

	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
