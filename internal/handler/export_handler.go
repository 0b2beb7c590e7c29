package handler

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"freightdesk/internal/csvexport"
	"freightdesk/internal/service"
)

// exportBatchSize is the page size used when streaming payloads.
const exportBatchSize = 100

// ExportHandler streams stored payloads as CSV.
type ExportHandler struct {
	svc     service.ExtractionService
	targets []string
}

// NewExportHandler creates a new ExportHandler with one column per target.
func NewExportHandler(svc service.ExtractionService, targets []string) *ExportHandler {
	return &ExportHandler{svc: svc, targets: targets}
}

// PayloadsCSV handles GET /api/v1/exports/payloads.csv
// @Summary Export payloads as CSV
// @Description Streams every stored mapped payload as a CSV file
// @Tags exports
// @Produce text/csv
// @Success 200 {file} file "CSV file"
// @Failure 500 {object} ErrorResponseBody "Export failed"
// @Router /exports/payloads.csv [get]
func (h *ExportHandler) PayloadsCSV(c *gin.Context) {
	ctx := c.Request.Context()

	// Fetch the first page before writing headers so errors still get a
	// JSON response.
	payloads, total, err := h.svc.ListPayloads(ctx, 0, exportBatchSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, csvexport.BuildFilename("quote_payloads", time.Now())))
	_, _ = c.Writer.Write(csvexport.BOM)

	w := csvexport.NewWriter(c.Writer, h.targets)
	if err := w.WriteHeader(); err != nil {
		log.Printf("exportHandler.PayloadsCSV: writing header: %v", err)
		return
	}

	for offset := 0; ; {
		if err := w.WritePayloads(payloads); err != nil {
			log.Printf("exportHandler.PayloadsCSV: writing rows: %v", err)
			return
		}
		offset += len(payloads)
		if len(payloads) == 0 || offset >= total {
			break
		}
		payloads, _, err = h.svc.ListPayloads(ctx, offset, exportBatchSize)
		if err != nil {
			log.Printf("exportHandler.PayloadsCSV: listing payloads at offset %d: %v", offset, err)
			break
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("exportHandler.PayloadsCSV: flush: %v", err)
	}
}
