package marketplace

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists listings.
type Repository interface {
	Create(ctx context.Context, listing Listing) error
	Get(ctx context.Context, id string) (Listing, error)
	List(ctx context.Context, filter Filter) ([]Listing, error)
	ListByOwner(ctx context.Context, userID string) ([]Listing, error)
	Update(ctx context.Context, listing Listing) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed listing store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const listingColumns = `id, user_id, crop_name, quantity, unit, price_per_unit, location, description, contact, images, status, created_at, updated_at`

// Create inserts a listing.
func (r *PostgresRepository) Create(ctx context.Context, l Listing) error {
	id, err := uuid.Parse(l.ID)
	if err != nil {
		return err
	}
	owner, err := uuid.Parse(l.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO marketplace_listings (`+listingColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, owner, l.CropName, l.Quantity, l.Unit, l.PricePerUnit, l.Location, l.Description,
		l.Contact, l.Images, l.Status, l.CreatedAt.UTC(), l.UpdatedAt.UTC())
	return err
}

// Get fetches a listing regardless of status.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Listing, error) {
	lid, err := uuid.Parse(id)
	if err != nil {
		return Listing{}, ErrNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT `+listingColumns+` FROM marketplace_listings WHERE id = $1`, lid)
	if err != nil {
		return Listing{}, err
	}
	listing, err := pgx.CollectExactlyOneRow(rows, scanListing)
	if errors.Is(err, pgx.ErrNoRows) {
		return Listing{}, ErrNotFound
	}
	return listing, err
}

// List returns active listings matching filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Listing, error) {
	rows, err := r.db.Query(ctx, `SELECT `+listingColumns+` FROM marketplace_listings
        WHERE status = $1
          AND ($2::text = '' OR crop_name = $2)
          AND ($3::text = '' OR location = $3)
        ORDER BY created_at DESC
        LIMIT $4`, StatusActive, f.CropName, f.Location, f.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanListing)
}

// ListByOwner returns every listing of userID, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]Listing, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return []Listing{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+listingColumns+` FROM marketplace_listings
        WHERE user_id = $1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanListing)
}

// Update stores the writable fields and status of listing.
func (r *PostgresRepository) Update(ctx context.Context, l Listing) error {
	id, err := uuid.Parse(l.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE marketplace_listings
        SET crop_name = $1, quantity = $2, unit = $3, price_per_unit = $4, location = $5,
            description = $6, contact = $7, images = $8, status = $9, updated_at = $10
        WHERE id = $11`,
		l.CropName, l.Quantity, l.Unit, l.PricePerUnit, l.Location, l.Description,
		l.Contact, l.Images, l.Status, l.UpdatedAt.UTC(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanListing(row pgx.CollectableRow) (Listing, error) {
	var (
		id, owner uuid.UUID
		l         Listing
	)
	err := row.Scan(&id, &owner, &l.CropName, &l.Quantity, &l.Unit, &l.PricePerUnit, &l.Location,
		&l.Description, &l.Contact, &l.Images, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return Listing{}, err
	}
	l.ID = id.String()
	l.UserID = owner.String()
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	if l.Images == nil {
		l.Images = []string{}
	}
	return l, nil
}

type memoryRepository struct {
	mu       sync.RWMutex
	listings map[string]Listing
}

// NewMemoryRepository builds an in-memory listing store for tests and local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{listings: make(map[string]Listing)}
}

func (r *memoryRepository) Create(_ context.Context, l Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[l.ID] = l
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[id]
	if !ok {
		return Listing{}, ErrNotFound
	}
	return l, nil
}

func (r *memoryRepository) List(_ context.Context, f Filter) ([]Listing, error) {
	return r.collect(func(l Listing) bool {
		return l.Status == StatusActive &&
			(f.CropName == "" || l.CropName == f.CropName) &&
			(f.Location == "" || l.Location == f.Location)
	}, f.Limit), nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, userID string) ([]Listing, error) {
	return r.collect(func(l Listing) bool { return l.UserID == userID }, 0), nil
}

func (r *memoryRepository) Update(_ context.Context, l Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[l.ID]; !ok {
		return ErrNotFound
	}
	r.listings[l.ID] = l
	return nil
}

func (r *memoryRepository) collect(match func(Listing) bool, limit int) []Listing {
	r.mu.RLock()
	out := []Listing{}
	for _, l := range r.listings {
		if match(l) {
			out = append(out, l)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
