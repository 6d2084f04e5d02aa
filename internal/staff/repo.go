package staff

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("staff user not found")

type Repository interface {
	Upsert(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Upsert(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
    INSERT INTO staff_users (id, venue_id, role, name, email, password_hash, is_active)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    ON CONFLICT (email) DO UPDATE
      SET venue_id=$2, role=$3, name=$4, password_hash=$6, is_active=$7
  `, u.ID, u.VenueID, u.Role, u.Name, u.Email, u.PasswordHash, u.IsActive)
	return err
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, `
    SELECT id, venue_id, role, name, email, password_hash, is_active
    FROM staff_users WHERE email=$1
  `, email).Scan(&u.ID, &u.VenueID, &u.Role, &u.Name, &u.Email, &u.PasswordHash, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
