package marketplace

import (
	"errors"
	"time"
)

// Listing statuses.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

const (
	// DefaultLimit is the page size of the public listing feed.
	DefaultLimit = 50
	// MaxLimit caps any requested page size.
	MaxLimit = 100
)

var (
	// ErrNotFound is returned for unknown or deleted listings.
	ErrNotFound = errors.New("listing not found")
	// ErrForbidden is returned when a user changes a listing they do not own.
	ErrForbidden = errors.New("listing belongs to another user")
	// ErrValidation wraps input problems.
	ErrValidation = errors.New("invalid listing")
)

// Listing is produce offered for sale by a farmer.
type Listing struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CropName     string    `json:"crop_name"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	PricePerUnit float64   `json:"price_per_unit"`
	Location     string    `json:"location"`
	Description  *string   `json:"description,omitempty"`
	Contact      string    `json:"contact"`
	Images       []string  `json:"images"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input is the writable part of a listing, used for create and full update.
type Input struct {
	CropName     string   `json:"crop_name"`
	Quantity     float64  `json:"quantity"`
	Unit         string   `json:"unit"`
	PricePerUnit float64  `json:"price_per_unit"`
	Location     string   `json:"location"`
	Description  *string  `json:"description"`
	Contact      string   `json:"contact"`
	Images       []string `json:"images"`
}

// Filter narrows the public feed. Empty fields match everything.
type Filter struct {
	CropName string
	Location string
	Limit    int
}
