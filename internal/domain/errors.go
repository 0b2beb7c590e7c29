package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrDocumentExists       = errors.New("document already exists")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrEmptyDocument        = errors.New("document has neither content nor text")
	ErrInvalidChannel       = errors.New("invalid document channel")
	ErrUploadFailed         = errors.New("file upload to storage failed")
	ErrExtractionInProgress = errors.New("extraction already in progress for document")
	ErrExtractionFailed     = errors.New("extraction failed")
	ErrReferenceUnavailable = errors.New("reference dataset unavailable")
)
