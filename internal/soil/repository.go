package soil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists report metadata.
type Repository interface {
	Insert(ctx context.Context, r Report) error
	Get(ctx context.Context, id string) (Report, error)
	ListByUser(ctx context.Context, userID string) ([]Report, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed report store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const reportColumns = `id, user_id, object_key, file_name, content_type, size_bytes, created_at`

// Insert stores report metadata.
func (p *PostgresRepository) Insert(ctx context.Context, r Report) error {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return err
	}
	owner, err := uuid.Parse(r.UserID)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `INSERT INTO soil_reports (`+reportColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, owner, r.ObjectKey, r.FileName, r.ContentType, r.SizeBytes, r.CreatedAt.UTC())
	return err
}

// Get fetches one report.
func (p *PostgresRepository) Get(ctx context.Context, id string) (Report, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return Report{}, ErrNotFound
	}
	rows, err := p.db.Query(ctx, `SELECT `+reportColumns+` FROM soil_reports WHERE id = $1`, rid)
	if err != nil {
		return Report{}, err
	}
	report, err := pgx.CollectExactlyOneRow(rows, scanReport)
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	return report, err
}

// ListByUser returns a user's reports, newest first.
func (p *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Report, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return []Report{}, nil
	}
	rows, err := p.db.Query(ctx, `SELECT `+reportColumns+` FROM soil_reports WHERE user_id = $1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanReport)
}

func scanReport(row pgx.CollectableRow) (Report, error) {
	var (
		id, owner uuid.UUID
		r         Report
	)
	if err := row.Scan(&id, &owner, &r.ObjectKey, &r.FileName, &r.ContentType, &r.SizeBytes, &r.CreatedAt); err != nil {
		return Report{}, err
	}
	r.ID = id.String()
	r.UserID = owner.String()
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

type memoryRepository struct {
	mu      sync.RWMutex
	reports map[string]Report
}

// NewMemoryRepository builds an in-memory report store for tests and local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{reports: make(map[string]Report)}
}

func (m *memoryRepository) Insert(_ context.Context, r Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = r
	return nil
}

func (m *memoryRepository) Get(_ context.Context, id string) (Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[id]
	if !ok {
		return Report{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryRepository) ListByUser(_ context.Context, userID string) ([]Report, error) {
	m.mu.RLock()
	out := []Report{}
	for _, r := range m.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
