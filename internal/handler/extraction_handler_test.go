package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"freightdesk/internal/domain"
	"freightdesk/internal/handler"
	"freightdesk/internal/service"
	"freightdesk/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newExtractionHandler(maxBytes int64) (*handler.ExtractionHandler, *mocks.MockExtractionService) {
	mockSvc := new(mocks.MockExtractionService)
	return handler.NewExtractionHandler(mockSvc, maxBytes), mockSvc
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// --- Submit ---

func TestExtractionHandler_Submit_Text(t *testing.T) {
	h, mockSvc := newExtractionHandler(0)

	out := &service.Outcome{Document: &domain.Document{ID: uuid.New(), Status: domain.DocumentStatusCompleted}}
	mockSvc.On("Submit", mock.Anything, mock.MatchedBy(func(in service.SubmitInput) bool {
		return in.Text == "Linde H25T from Antwerp to Tema" &&
			in.Channel == domain.ChannelChat &&
			in.RequestContext.PreferredCompany == "Acme Logistics" &&
			in.RequestContext.OverrideCompany &&
			in.RequestContext.DefaultCountry == "be" &&
			!in.Async && len(in.Content) == 0
	})).Return(out, nil)

	body, ct := multipartBody(t, map[string]string{
		"text":              "Linde H25T from Antwerp to Tema",
		"channel":           "chat",
		"preferred_company": "Acme Logistics",
		"override_company":  "true",
		"default_country":   "be",
	}, "", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/extractions", body)
	c.Request.Header.Set("Content-Type", ct)

	h.Submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
	mockSvc.AssertExpectations(t)
}

func TestExtractionHandler_Submit_FileAsync(t *testing.T) {
	h, mockSvc := newExtractionHandler(1 << 20)

	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	mockSvc.On("Submit", mock.Anything, mock.MatchedBy(func(in service.SubmitInput) bool {
		return in.Filename == "quote.pdf" && bytes.Equal(in.Content, pdf) && in.Async
	})).Return(&service.Outcome{Document: &domain.Document{ID: uuid.New(), Status: domain.DocumentStatusQueued}}, nil)

	body, ct := multipartBody(t, map[string]string{"async": "true"}, "quote.pdf", pdf)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/extractions", body)
	c.Request.Header.Set("Content-Type", ct)

	h.Submit(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestExtractionHandler_Submit_FileTooLarge(t *testing.T) {
	h, mockSvc := newExtractionHandler(8)

	body, ct := multipartBody(t, nil, "scan.png", bytes.Repeat([]byte{0x89}, 64))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/extractions", body)
	c.Request.Header.Set("Content-Type", ct)

	h.Submit(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FILE_TOO_LARGE", resp.Error.Code)
	mockSvc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestExtractionHandler_Submit_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty", domain.ErrEmptyDocument, http.StatusBadRequest, "EMPTY_DOCUMENT"},
		{"unsupported", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"channel", domain.ErrInvalidChannel, http.StatusBadRequest, "INVALID_CHANNEL"},
		{"upload", domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{"in progress", domain.ErrExtractionInProgress, http.StatusConflict, "EXTRACTION_IN_PROGRESS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mockSvc := newExtractionHandler(0)
			mockSvc.On("Submit", mock.Anything, mock.Anything).Return(nil, tt.err)

			body, ct := multipartBody(t, map[string]string{"text": "x"}, "", nil)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/extractions", body)
			c.Request.Header.Set("Content-Type", ct)

			h.Submit(c)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

// --- GetByID ---

func TestExtractionHandler_GetByID(t *testing.T) {
	h, mockSvc := newExtractionHandler(0)
	docID := uuid.New()

	mockSvc.On("Get", mock.Anything, docID).
		Return(&service.ExtractionView{Document: &domain.Document{ID: docID}}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/extractions/"+docID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestExtractionHandler_GetByID_InvalidID(t *testing.T) {
	h, _ := newExtractionHandler(0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/extractions/nope", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractionHandler_GetByID_NotFound(t *testing.T) {
	h, mockSvc := newExtractionHandler(0)
	docID := uuid.New()
	mockSvc.On("Get", mock.Anything, docID).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/extractions/"+docID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- List ---

func TestExtractionHandler_List_ClampsPagination(t *testing.T) {
	h, mockSvc := newExtractionHandler(0)
	mockSvc.On("List", mock.Anything, 0, 20).Return([]domain.Document{{ID: uuid.New()}}, 1, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/extractions?offset=-5&limit=500", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
	mockSvc.AssertExpectations(t)
}

// --- Retry ---

func TestExtractionHandler_Retry(t *testing.T) {
	h, mockSvc := newExtractionHandler(0)
	docID := uuid.New()
	mockSvc.On("Retry", mock.Anything, docID).
		Return(&service.Outcome{Document: &domain.Document{ID: docID, Attempts: 2}}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/extractions/"+docID.String()+"/retry", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.Retry(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestExtractionHandler_Retry_InProgress(t *testing.T) {
	h, mockSvc := newExtractionHandler(0)
	docID := uuid.New()
	mockSvc.On("Retry", mock.Anything, docID).Return(nil, domain.ErrExtractionInProgress)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/extractions/"+docID.String()+"/retry", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.Retry(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
