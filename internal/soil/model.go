package soil

import (
	"errors"
	"time"
)

// DownloadURLTTL is how long a presigned download link stays valid.
const DownloadURLTTL = 15 * time.Minute

var (
	// ErrNotFound is returned for unknown reports and reports owned by someone else.
	ErrNotFound = errors.New("report not found")
	// ErrEmptyFile is returned when an upload carries no bytes.
	ErrEmptyFile = errors.New("file is empty")
	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("file is too large")
)

// Report is an uploaded soil test document.
type Report struct {
	ID          string    `json:"report_id"`
	UserID      string    `json:"user_id"`
	ObjectKey   string    `json:"-"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Upload describes an incoming file.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
}
