package venue

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("venue not found")

type Repository interface {
	Upsert(ctx context.Context, v *Venue) error
	GetBySlug(ctx context.Context, slug string) (*Venue, error)
	Get(ctx context.Context, id string) (*Venue, error)
	EnsureTable(ctx context.Context, venueID, code string) (*Table, error)
	GetTable(ctx context.Context, id string) (*Table, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Upsert(ctx context.Context, v *Venue) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
    INSERT INTO venues (id, name, slug, currency, timezone)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (id) DO UPDATE SET name=$2, slug=$3, currency=$4, timezone=$5
  `, v.ID, v.Name, v.Slug, v.Currency, v.Timezone)
	return err
}

func (r *PGRepo) GetBySlug(ctx context.Context, slug string) (*Venue, error) {
	var v Venue
	err := r.db.QueryRow(ctx, `
    SELECT id, name, slug, currency, timezone FROM venues WHERE slug=$1
  `, slug).Scan(&v.ID, &v.Name, &v.Slug, &v.Currency, &v.Timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Venue, error) {
	var v Venue
	err := r.db.QueryRow(ctx, `
    SELECT id, name, slug, currency, timezone FROM venues WHERE id=$1
  `, id).Scan(&v.ID, &v.Name, &v.Slug, &v.Currency, &v.Timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// EnsureTable returns the table with the given code, creating it on first
// use. New tables take the code as id and a generated display name, the way
// QR stickers are provisioned ahead of the floor plan.
func (r *PGRepo) EnsureTable(ctx context.Context, venueID, code string) (*Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t Table
	err := r.db.QueryRow(ctx, `
    INSERT INTO tables (id, venue_id, code, name, is_active)
    VALUES ($1,$2,$3,$4,TRUE)
    ON CONFLICT (venue_id, code) DO UPDATE SET code=EXCLUDED.code
    RETURNING id, venue_id, code, name, is_active
  `, code, venueID, code, "Table "+code).Scan(&t.ID, &t.VenueID, &t.Code, &t.Name, &t.IsActive)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepo) GetTable(ctx context.Context, id string) (*Table, error) {
	var t Table
	err := r.db.QueryRow(ctx, `
    SELECT id, venue_id, code, name, is_active FROM tables WHERE id=$1
  `, id).Scan(&t.ID, &t.VenueID, &t.Code, &t.Name, &t.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
