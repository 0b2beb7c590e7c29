package domain

// Channel identifies how a document reached the system.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelImage Channel = "image"
	ChannelPDF   Channel = "pdf"
	ChannelChat  Channel = "chat"
	ChannelText  Channel = "text"
)

// ValidChannels lists the accepted channel values.
var ValidChannels = map[Channel]bool{
	ChannelEmail: true,
	ChannelImage: true,
	ChannelPDF:   true,
	ChannelChat:  true,
	ChannelText:  true,
}

// AllowedContentTypes maps accepted MIME types to the channel they imply when
// the submitter does not specify one.
var AllowedContentTypes = map[string]Channel{
	"application/pdf": ChannelPDF,
	"image/jpeg":      ChannelImage,
	"image/png":       ChannelImage,
	"image/webp":      ChannelImage,
	"message/rfc822":  ChannelEmail,
	"text/plain":      ChannelText,
	"text/html":       ChannelEmail,
}

// AllowedExtensions maps file extensions (without dot) to MIME types.
var AllowedExtensions = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"eml":  "message/rfc822",
	"txt":  "text/plain",
}

// canonicalExtensions picks one extension for MIME types that have several.
var canonicalExtensions = map[string]string{
	"image/jpeg": "jpg",
}

// ExtensionFor returns the extension used when storing content of the
// given MIME type, or "" when the type is not accepted.
func ExtensionFor(mimeType string) string {
	if ext, ok := canonicalExtensions[mimeType]; ok {
		return ext
	}
	for ext, t := range AllowedExtensions {
		if t == mimeType {
			return ext
		}
	}
	return ""
}

// Source tags where an extracted value came from.
type Source string

const (
	SourceAI      Source = "ai"
	SourceLookup  Source = "lookup"
	SourcePattern Source = "pattern"
	SourceDefault Source = "default"
)

// Rank orders sources for merge tie-breaks. Higher wins.
func (s Source) Rank() int {
	switch s {
	case SourceAI:
		return 3
	case SourceLookup:
		return 2
	case SourcePattern:
		return 1
	default:
		return 0
	}
}

// ExtractionStatus is the outcome of one extraction attempt.
type ExtractionStatus string

const (
	ExtractionStatusSuccess ExtractionStatus = "success"
	ExtractionStatusPartial ExtractionStatus = "partial"
	ExtractionStatusFailed  ExtractionStatus = "failed"
)

// DocumentStatus represents the lifecycle of a submitted document.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusQueued     DocumentStatus = "queued"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// ErrorKind classifies an entry in ExtractionResult.Errors.
type ErrorKind string

const (
	ErrorKindStrategyFailure ErrorKind = "strategy_failure"
	ErrorKindSchemaViolation ErrorKind = "schema_violation"
	ErrorKindProviderError   ErrorKind = "provider_error"
	ErrorKindTimeout         ErrorKind = "timeout"
	ErrorKindNoStrategy      ErrorKind = "no_strategy"
	ErrorKindTotalFailure    ErrorKind = "total_failure"
)

// DispatchStatus is the per-target outcome of a dispatch.
type DispatchStatus string

const (
	DispatchStatusDelivered DispatchStatus = "delivered"
	DispatchStatusFailed    DispatchStatus = "failed"
)
