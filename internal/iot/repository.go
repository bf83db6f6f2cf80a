package iot

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists sensor readings.
type Repository interface {
	Insert(ctx context.Context, r Reading) error
	ListByField(ctx context.Context, fieldID string, limit int) ([]Reading, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed reading store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores one reading.
func (p *PostgresRepository) Insert(ctx context.Context, r Reading) error {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `INSERT INTO iot_readings (id, field_id, device_id, moisture, temperature, humidity, recorded_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, r.FieldID, r.DeviceID, r.Moisture, r.Temperature, r.Humidity, r.RecordedAt.UTC(), r.CreatedAt.UTC())
	return err
}

// ListByField returns a field's readings, most recently recorded first.
func (p *PostgresRepository) ListByField(ctx context.Context, fieldID string, limit int) ([]Reading, error) {
	rows, err := p.db.Query(ctx, `SELECT id, field_id, device_id, moisture, temperature, humidity, recorded_at, created_at
        FROM iot_readings WHERE field_id = $1 ORDER BY recorded_at DESC, created_at DESC LIMIT $2`, fieldID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Reading, error) {
		var (
			id uuid.UUID
			r  Reading
		)
		if err := row.Scan(&id, &r.FieldID, &r.DeviceID, &r.Moisture, &r.Temperature, &r.Humidity, &r.RecordedAt, &r.CreatedAt); err != nil {
			return Reading{}, err
		}
		r.ID = id.String()
		r.RecordedAt = r.RecordedAt.UTC()
		r.CreatedAt = r.CreatedAt.UTC()
		return r, nil
	})
}

type memoryRepository struct {
	mu      sync.RWMutex
	byField map[string][]Reading
}

// NewMemoryRepository builds an in-memory reading store for tests and local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{byField: make(map[string][]Reading)}
}

func (m *memoryRepository) Insert(_ context.Context, r Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byField[r.FieldID] = append(m.byField[r.FieldID], r)
	return nil
}

func (m *memoryRepository) ListByField(_ context.Context, fieldID string, limit int) ([]Reading, error) {
	m.mu.RLock()
	out := append([]Reading{}, m.byField[fieldID]...)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
