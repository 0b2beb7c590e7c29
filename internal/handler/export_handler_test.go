package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"freightdesk/internal/domain"
	"freightdesk/internal/handler"
	"freightdesk/mocks"
)

func TestExportHandler_PayloadsCSV_Pages(t *testing.T) {
	mockSvc := new(mocks.MockExtractionService)
	h := handler.NewExportHandler(mockSvc, []string{"COMPANY_NAME", "LENGTH_M"})

	updated := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	first := make([]domain.StoredPayload, 100)
	for i := range first {
		first[i] = domain.StoredPayload{DocumentID: uuid.New(), Payload: json.RawMessage(`{}`), UpdatedAt: updated}
	}
	last := domain.StoredPayload{
		DocumentID: uuid.New(),
		// Legacy separator variant must still land in its column.
		Payload:   json.RawMessage(`{"COMPANY NAME":{"stringValue":"Van Dijk Transport"},"LENGTH_M":{"numberValue":3.9}}`),
		UpdatedAt: updated,
	}

	mockSvc.On("ListPayloads", mock.Anything, 0, 100).Return(first, 101, nil).Once()
	mockSvc.On("ListPayloads", mock.Anything, 100, 100).Return([]domain.StoredPayload{last}, 101, nil).Once()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/exports/payloads.csv", http.NoBody)

	h.PayloadsCSV(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "quote_payloads")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(w.Body.String(), "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 102)
	assert.Equal(t, "DOCUMENT_ID,COMPANY_NAME,LENGTH_M,UPDATED_AT", strings.TrimSpace(lines[0]))
	assert.Equal(t, last.DocumentID.String()+",Van Dijk Transport,3.9,2026-03-04T10:00:00Z", strings.TrimSpace(lines[101]))
	mockSvc.AssertExpectations(t)
}

func TestExportHandler_PayloadsCSV_ListError(t *testing.T) {
	mockSvc := new(mocks.MockExtractionService)
	h := handler.NewExportHandler(mockSvc, []string{"COMPANY_NAME"})
	mockSvc.On("ListPayloads", mock.Anything, 0, 100).Return(nil, 0, assert.AnError)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/exports/payloads.csv", http.NoBody)

	h.PayloadsCSV(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}
