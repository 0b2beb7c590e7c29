package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"freightdesk/internal/domain"
	"freightdesk/internal/mapper"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer wraps csv.Writer for exporting mapped payloads as CSV.
type Writer struct {
	csv     *csv.Writer
	targets []string
}

// NewWriter creates a Writer that writes CSV to w with one column per
// target, preceded by the document id and followed by the update time.
func NewWriter(w io.Writer, targets []string) *Writer {
	return &Writer{csv: csv.NewWriter(w), targets: targets}
}

// Columns returns the header row.
func (w *Writer) Columns() []string {
	cols := make([]string, 0, len(w.targets)+2)
	cols = append(cols, "DOCUMENT_ID")
	cols = append(cols, w.targets...)
	return append(cols, "UPDATED_AT")
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(w.Columns())
}

// WritePayloads converts a batch of stored payloads to CSV rows and writes
// them. Payloads that cannot be decoded keep only their metadata columns.
func (w *Writer) WritePayloads(payloads []domain.StoredPayload) error {
	for i := range payloads {
		if err := w.csv.Write(w.row(&payloads[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func (w *Writer) row(p *domain.StoredPayload) []string {
	row := make([]string, len(w.targets)+2)
	row[0] = p.DocumentID.String()
	row[len(row)-1] = p.UpdatedAt.Format(time.RFC3339)

	var stored map[string]domain.TypedValue
	if err := json.Unmarshal(p.Payload, &stored); err != nil {
		return row
	}
	for i, target := range w.targets {
		if v, ok := mapper.Lookup(stored, target); ok {
			row[i+1] = formatValue(v)
		}
	}
	return row
}

func formatValue(v domain.TypedValue) string {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.NumberValue != nil:
		return strconv.FormatFloat(*v.NumberValue, 'f', -1, 64)
	case v.BooleanValue != nil:
		if *v.BooleanValue {
			return "Yes"
		}
		return "No"
	default:
		return ""
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition.
// Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", SanitizeFilename(name), now.Format("2006-01-02"))
}
