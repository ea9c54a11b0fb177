package service

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore keeps attachment bytes. internal/storage provides the
// filesystem implementation.
type BlobStore interface {
	// Save streams r to storage and returns the key it was stored under and
	// the number of bytes written.
	Save(ctx context.Context, tripID, attachmentID uuid.UUID, filename string, r io.Reader) (key string, size int64, err error)
	Delete(ctx context.Context, key string) error
}

// Upload is one file in an attachment upload. MimeType may be empty, in
// which case it is detected from the content.
type Upload struct {
	Filename string
	MimeType string
	Body     io.Reader
}

// AttachmentMeta registers a file whose bytes are kept elsewhere.
type AttachmentMeta struct {
	Filename  string `json:"name" validate:"required"`
	SizeBytes int64  `json:"size" validate:"gte=0"`
	MimeType  string `json:"type"`
}
