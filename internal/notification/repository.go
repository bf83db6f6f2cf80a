package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is a persisted notification addressed to a user.
type Record struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"`
	Destination string    `json:"destination,omitempty"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository stores notification history.
type Repository interface {
	Insert(ctx context.Context, record Record) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed notification history.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores one record.
func (r *PostgresRepository) Insert(ctx context.Context, rec Record) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO notifications (id, user_id, kind, destination, body, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, userID, rec.Kind, rec.Destination, rec.Body, rec.CreatedAt.UTC())
	return err
}

// ListByUser returns the newest records for userID first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return []Record{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, kind, destination, body, created_at
        FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			id, owner uuid.UUID
			rec       Record
		)
		if err := rows.Scan(&id, &owner, &rec.Kind, &rec.Destination, &rec.Body, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.ID = id.String()
		rec.UserID = owner.String()
		rec.CreatedAt = rec.CreatedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

type memoryRepository struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewMemoryRepository builds an in-memory notification history.
func NewMemoryRepository() Repository {
	return &memoryRepository{records: make(map[string][]Record)}
}

func (r *memoryRepository) Insert(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.UserID] = append(r.records[rec.UserID], rec)
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]Record, error) {
	r.mu.RLock()
	out := append([]Record(nil), r.records[userID]...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}
