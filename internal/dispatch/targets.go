package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strconv"
	"strings"

	"freightdesk/internal/domain"
	"freightdesk/internal/mapper"
	"freightdesk/internal/port"
)

// PostgresTarget stores payloads in the mapped_payloads table.
type PostgresTarget struct {
	repo port.ExtractionRepository
}

// NewPostgresTarget creates a PostgresTarget.
func NewPostgresTarget(repo port.ExtractionRepository) *PostgresTarget {
	return &PostgresTarget{repo: repo}
}

func (t *PostgresTarget) Name() string { return "postgres" }

// Export merges the payload into the stored record for the document, so
// values absent from a re-extraction survive and legacy key spellings are
// rewritten in canonical form.
func (t *PostgresTarget) Export(ctx context.Context, req port.ExportRequest) error {
	existing, err := t.repo.GetPayload(ctx, req.DocumentID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return t.repo.SavePayload(ctx, req.Payload)
	case err != nil:
		return fmt.Errorf("loading stored payload: %w", err)
	}

	var stored map[string]domain.TypedValue
	if err := json.Unmarshal(existing.Payload, &stored); err != nil {
		return fmt.Errorf("decoding stored payload: %w", err)
	}
	merged := mapper.MergeExisting(stored, req.Payload)

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	out := &domain.MappedPayload{DocumentID: req.DocumentID, Omitted: req.Payload.Omitted}
	for _, name := range names {
		out.Fields = append(out.Fields, domain.MappedField{Name: name, Value: merged[name]})
	}
	return t.repo.SavePayload(ctx, out)
}

// ArchiveTarget writes the payload object as JSON to object storage.
type ArchiveTarget struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
}

// NewArchiveTarget creates an ArchiveTarget writing to bucket under prefix.
func NewArchiveTarget(storage port.ObjectStorage, bucket, prefix string) *ArchiveTarget {
	return &ArchiveTarget{storage: storage, bucket: bucket, prefix: prefix}
}

func (t *ArchiveTarget) Name() string { return "s3" }

// Key returns the object key for a document's payload.
func (t *ArchiveTarget) Key(docID string) string {
	return path.Join(t.prefix, docID+".json")
}

func (t *ArchiveTarget) Export(ctx context.Context, req port.ExportRequest) error {
	body, err := json.Marshal(req.Payload.Object())
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	_, err = t.storage.Upload(ctx, port.UploadInput{
		Bucket:      t.bucket,
		Key:         t.Key(req.DocumentID.String()),
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
		Size:        int64(len(body)),
	})
	return err
}

// EmailTarget sends a plain-text summary of the payload to the sales inbox.
type EmailTarget struct {
	sender port.EmailSender
	to     []string
}

// NewEmailTarget creates an EmailTarget.
func NewEmailTarget(sender port.EmailSender, to []string) *EmailTarget {
	return &EmailTarget{sender: sender, to: to}
}

func (t *EmailTarget) Name() string { return "email" }

func (t *EmailTarget) Export(ctx context.Context, req port.ExportRequest) error {
	if len(t.to) == 0 {
		return fmt.Errorf("no notify address configured")
	}
	return t.sender.Send(ctx, port.EmailMessage{
		To:       t.to,
		Subject:  Subject(req.Payload),
		TextBody: Summary(req.Payload),
	})
}

// LogTarget logs payloads. Used in development.
type LogTarget struct{}

func (LogTarget) Name() string { return "log" }

func (LogTarget) Export(_ context.Context, req port.ExportRequest) error {
	log.Printf("dispatch.LogTarget: document %s\n%s", req.DocumentID, Summary(req.Payload))
	return nil
}

// Subject is the one-line description of a payload.
func Subject(p *domain.MappedPayload) string {
	obj := p.Object()
	parts := []string{"Quote request"}
	if v := text(obj, "VEHICLE_MODEL"); v != "" {
		parts = append(parts, strings.TrimSpace(text(obj, "VEHICLE_BRAND")+" "+v))
	}
	if o, d := text(obj, "ORIGIN"), text(obj, "DESTINATION"); o != "" || d != "" {
		parts = append(parts, o+" -> "+d)
	}
	if review, ok := obj["NEEDS_REVIEW"]; ok && review.BooleanValue != nil && *review.BooleanValue {
		parts = append(parts, "[review]")
	}
	return strings.Join(parts, " | ")
}

// Summary renders a payload as "NAME: value" lines in field order.
func Summary(p *domain.MappedPayload) string {
	var b strings.Builder
	for _, f := range p.Fields {
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(Display(f.Value))
		b.WriteString("\n")
	}
	return b.String()
}

// Display renders a typed value as text.
func Display(v domain.TypedValue) string {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.NumberValue != nil:
		return strconv.FormatFloat(*v.NumberValue, 'f', -1, 64)
	case v.BooleanValue != nil:
		return strconv.FormatBool(*v.BooleanValue)
	default:
		return ""
	}
}

func text(obj map[string]domain.TypedValue, name string) string {
	v, ok := obj[name]
	if !ok {
		return ""
	}
	return Display(v)
}
