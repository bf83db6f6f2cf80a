package soil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultContentType = "application/octet-stream"

// Service stores uploaded soil reports and hands out download links.
type Service struct {
	repo     Repository
	store    ObjectStore
	maxBytes int64
	now      func() time.Time
}

// NewService builds a soil report service. maxBytes <= 0 disables the size check.
func NewService(repo Repository, store ObjectStore, maxBytes int64) *Service {
	return &Service{repo: repo, store: store, maxBytes: maxBytes, now: time.Now}
}

// Upload stores the file under a per-user key and records its metadata.
func (s *Service) Upload(ctx context.Context, userID string, up Upload, body io.Reader) (Report, error) {
	if up.Size <= 0 {
		return Report{}, ErrEmptyFile
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return Report{}, ErrTooLarge
	}

	name := filepath.Base(strings.TrimSpace(up.FileName))
	if name == "." || name == string(filepath.Separator) {
		name = "report"
	}
	contentType := strings.TrimSpace(up.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	id := uuid.NewString()
	report := Report{
		ID:          id,
		UserID:      userID,
		ObjectKey:   path.Join("soil-reports", userID, id+strings.ToLower(filepath.Ext(name))),
		FileName:    name,
		ContentType: contentType,
		SizeBytes:   up.Size,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.store.Put(ctx, report.ObjectKey, contentType, body, up.Size); err != nil {
		return Report{}, err
	}
	if err := s.repo.Insert(ctx, report); err != nil {
		err = fmt.Errorf("record report: %w", err)
		if delErr := s.store.Delete(ctx, report.ObjectKey); delErr != nil {
			err = errors.Join(err, fmt.Errorf("orphaned object %s: %w", report.ObjectKey, delErr))
		}
		return Report{}, err
	}
	return report, nil
}

// List returns the user's reports, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Report, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one of the user's reports with a presigned download URL.
func (s *Service) Get(ctx context.Context, userID, id string) (Report, string, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return Report{}, "", err
	}
	if report.UserID != userID {
		return Report{}, "", ErrNotFound
	}
	url, err := s.store.PresignGet(ctx, report.ObjectKey, DownloadURLTTL)
	if err != nil {
		return Report{}, "", err
	}
	return report, url, nil
}
