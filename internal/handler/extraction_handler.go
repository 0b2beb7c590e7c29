package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freightdesk/internal/domain"
	"freightdesk/internal/service"
)

// ExtractionHandler handles quote request submission and retrieval.
type ExtractionHandler struct {
	svc      service.ExtractionService
	maxBytes int64
}

// NewExtractionHandler creates a new ExtractionHandler. maxBytes bounds the
// uploaded file size.
func NewExtractionHandler(svc service.ExtractionService, maxBytes int64) *ExtractionHandler {
	return &ExtractionHandler{svc: svc, maxBytes: maxBytes}
}

// Submit handles POST /api/v1/extractions
// @Summary Submit a quote request
// @Description Upload a document (PDF, image, e-mail, text) or paste text and extract the quote fields
// @Tags extractions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Document to extract"
// @Param text formData string false "Message text"
// @Param channel formData string false "Channel (email, image, pdf, chat, text)"
// @Param preferred_company formData string false "Company to use when none is stated"
// @Param override_company formData bool false "Prefer preferred_company over extracted values"
// @Param default_country formData string false "ISO-3166 alpha-2 country used when none is found"
// @Param locale formData string false "Locale for casing rules"
// @Param async formData bool false "Queue instead of extracting synchronously"
// @Success 201 {object} Response{data=service.Outcome} "Extraction finished"
// @Success 202 {object} Response{data=service.Outcome} "Document queued"
// @Failure 400 {object} ErrorResponseBody "Missing input or unsupported type"
// @Failure 409 {object} ErrorResponseBody "Extraction in progress"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Router /extractions [post]
func (h *ExtractionHandler) Submit(c *gin.Context) {
	input := service.SubmitInput{
		Text:    c.PostForm("text"),
		Channel: domain.Channel(c.PostForm("channel")),
		RequestContext: domain.RequestContext{
			PreferredCompany: c.PostForm("preferred_company"),
			OverrideCompany:  formBool(c, "override_company"),
			DefaultCountry:   c.PostForm("default_country"),
			Locale:           c.PostForm("locale"),
		},
		Async: formBool(c, "async"),
	}

	var tooLarge *http.MaxBytesError
	file, header, err := c.Request.FormFile("file")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		if h.maxBytes > 0 && header.Size > h.maxBytes {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		content, err := io.ReadAll(file)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read file")
			return
		}
		input.Filename = header.Filename
		input.ContentType = header.Header.Get("Content-Type")
		input.Content = content
	case errors.As(err, &tooLarge):
		HandleError(c, domain.ErrFileTooLarge)
		return
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read file")
		return
	}

	out, err := h.svc.Submit(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	if input.Async {
		RespondAccepted(c, out)
		return
	}
	RespondCreated(c, out)
}

// GetByID handles GET /api/v1/extractions/:id
// @Summary Get an extraction
// @Description Stored document, latest extraction result and mapped payload
// @Tags extractions
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} Response{data=service.ExtractionView}
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Router /extractions/{id} [get]
func (h *ExtractionHandler) GetByID(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}
	view, err := h.svc.Get(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// List handles GET /api/v1/extractions
// @Summary List submitted documents
// @Tags extractions
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Document,meta=PagMeta}
// @Router /extractions [get]
func (h *ExtractionHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	docs, total, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Retry handles POST /api/v1/extractions/:id/retry
// @Summary Re-run extraction
// @Description Re-extracts a stored document. Only one extraction per document runs at a time.
// @Tags extractions
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} Response{data=service.Outcome}
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Failure 409 {object} ErrorResponseBody "Extraction in progress"
// @Router /extractions/{id}/retry [post]
func (h *ExtractionHandler) Retry(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}
	out, err := h.svc.Retry(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, out)
}

func formBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.PostForm(key))
	return err == nil && v
}
