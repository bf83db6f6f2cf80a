package marketplace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/notification"
)

const maxImages = 10

// Service manages listings on behalf of their owners.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a marketplace service. notifier may be nil.
func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// Create publishes a new active listing owned by userID.
func (s *Service) Create(ctx context.Context, userID string, in Input) (Listing, error) {
	in, err := normalize(in)
	if err != nil {
		return Listing{}, err
	}
	now := s.now().UTC()
	listing := Listing{
		ID:           uuid.NewString(),
		UserID:       userID,
		CropName:     in.CropName,
		Quantity:     in.Quantity,
		Unit:         in.Unit,
		PricePerUnit: in.PricePerUnit,
		Location:     in.Location,
		Description:  in.Description,
		Contact:      in.Contact,
		Images:       in.Images,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return Listing{}, err
	}

	if s.notifier != nil {
		msg := notification.Message{
			UserID: userID,
			Kind:   notification.KindListingCreated,
			Body:   fmt.Sprintf("Your listing for %g %s of %s is live.", listing.Quantity, listing.Unit, listing.CropName),
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Warn("listing notification failed", slog.String("listing_id", listing.ID), slog.Any("error", err))
		}
	}
	return listing, nil
}

// Get returns an active listing.
func (s *Service) Get(ctx context.Context, id string) (Listing, error) {
	listing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if listing.Status != StatusActive {
		return Listing{}, ErrNotFound
	}
	return listing, nil
}

// List returns the public feed of active listings.
func (s *Service) List(ctx context.Context, f Filter) ([]Listing, error) {
	f.CropName = strings.TrimSpace(f.CropName)
	f.Location = strings.TrimSpace(f.Location)
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	return s.repo.List(ctx, f)
}

// Mine returns every listing owned by userID, including deleted ones.
func (s *Service) Mine(ctx context.Context, userID string) ([]Listing, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Update replaces the writable fields of a listing owned by userID.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (Listing, error) {
	in, err := normalize(in)
	if err != nil {
		return Listing{}, err
	}
	listing, err := s.owned(ctx, userID, id)
	if err != nil {
		return Listing{}, err
	}
	listing.CropName = in.CropName
	listing.Quantity = in.Quantity
	listing.Unit = in.Unit
	listing.PricePerUnit = in.PricePerUnit
	listing.Location = in.Location
	listing.Description = in.Description
	listing.Contact = in.Contact
	listing.Images = in.Images
	listing.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, listing); err != nil {
		return Listing{}, err
	}
	return listing, nil
}

// Delete soft-deletes a listing owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	listing, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	listing.Status = StatusDeleted
	listing.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, listing)
}

func (s *Service) owned(ctx context.Context, userID, id string) (Listing, error) {
	listing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if listing.Status != StatusActive {
		return Listing{}, ErrNotFound
	}
	if listing.UserID != userID {
		return Listing{}, ErrForbidden
	}
	return listing, nil
}

func normalize(in Input) (Input, error) {
	in.CropName = strings.TrimSpace(in.CropName)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Location = strings.TrimSpace(in.Location)
	in.Contact = strings.TrimSpace(in.Contact)

	switch {
	case in.CropName == "":
		return Input{}, invalid("crop_name is required")
	case in.Quantity <= 0:
		return Input{}, invalid("quantity must be greater than zero")
	case in.Unit == "":
		return Input{}, invalid("unit is required")
	case in.PricePerUnit < 0:
		return Input{}, invalid("price_per_unit must not be negative")
	case in.Location == "":
		return Input{}, invalid("location is required")
	case in.Contact == "":
		return Input{}, invalid("contact is required")
	case len(in.Images) > maxImages:
		return Input{}, invalid("at most %d images are allowed", maxImages)
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	return in, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
