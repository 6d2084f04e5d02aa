package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session closed")
)

type Repository interface {
	EnsureOpen(ctx context.Context, venueID, tableID string, peopleCount *int) (*TableSession, error)
	Get(ctx context.Context, id string) (*TableSession, error)
	Touch(ctx context.Context, id string, peopleCount *int) error
	Close(ctx context.Context, id string) (*TableSession, error)
	ListInactiveOpen(ctx context.Context, cutoff time.Time) ([]string, error)
	ListClosedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	PurgeSessions(ctx context.Context, ids []string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const sessionCols = `id, venue_id, table_id, status, people_count, version, opened_at, last_active_at, closed_at`

func scanSession(row pgx.Row) (*TableSession, error) {
	var s TableSession
	err := row.Scan(&s.ID, &s.VenueID, &s.TableID, &s.Status, &s.PeopleCount,
		&s.Version, &s.OpenedAt, &s.LastActiveAt, &s.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// EnsureOpen returns the table's current OPEN session, creating one when
// none exists. The advisory lock serializes concurrent joins for the same
// table so only one OPEN session can ever be created.
func (r *PGRepo) EnsureOpen(ctx context.Context, venueID, tableID string, peopleCount *int) (*TableSession, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, tableID); err != nil {
		return nil, err
	}

	s, err := scanSession(tx.QueryRow(ctx, `
    SELECT `+sessionCols+` FROM table_sessions
    WHERE table_id=$1 AND status=$2
    ORDER BY opened_at DESC LIMIT 1
  `, tableID, StatusOpen))
	switch {
	case err == nil:
		s, err = scanSession(tx.QueryRow(ctx, `
      UPDATE table_sessions
      SET last_active_at=NOW(), version=version+1,
          people_count=COALESCE($2, people_count)
      WHERE id=$1
      RETURNING `+sessionCols, s.ID, peopleCount))
		if err != nil {
			return nil, err
		}
	case errors.Is(err, ErrNotFound):
		s, err = scanSession(tx.QueryRow(ctx, `
      INSERT INTO table_sessions (id, venue_id, table_id, status, people_count, version, opened_at, last_active_at)
      VALUES ($1,$2,$3,$4,$5,0,NOW(),NOW())
      RETURNING `+sessionCols, uuid.NewString(), venueID, tableID, StatusOpen, peopleCount))
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (*TableSession, error) {
	return scanSession(r.db.QueryRow(ctx, `
    SELECT `+sessionCols+` FROM table_sessions WHERE id=$1
  `, id))
}

// Touch bumps lastActiveAt and the state version. Every guest-visible
// mutation routes through here (directly or inside its own transaction),
// so the version doubles as the compare-and-swap counter for payments.
func (r *PGRepo) Touch(ctx context.Context, id string, peopleCount *int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE table_sessions
    SET last_active_at=NOW(), version=version+1,
        people_count=COALESCE($2, people_count)
    WHERE id=$1
  `, id, peopleCount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close transitions OPEN -> CLOSED. Closing an already CLOSED session is a
// no-op that returns the stored row, so concurrent closers converge.
func (r *PGRepo) Close(ctx context.Context, id string) (*TableSession, error) {
	s, err := scanSession(r.db.QueryRow(ctx, `
    UPDATE table_sessions
    SET status=$2, closed_at=COALESCE(closed_at, NOW()), version=version+1
    WHERE id=$1
    RETURNING `+sessionCols, id, StatusClosed))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PGRepo) ListInactiveOpen(ctx context.Context, cutoff time.Time) ([]string, error) {
	return r.listIDs(ctx, `
    SELECT id FROM table_sessions WHERE status=$1 AND last_active_at <= $2
  `, StatusOpen, cutoff)
}

func (r *PGRepo) ListClosedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	return r.listIDs(ctx, `
    SELECT id FROM table_sessions WHERE status=$1 AND closed_at <= $2
  `, StatusClosed, cutoff)
}

func (r *PGRepo) listIDs(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// purgeStmts runs in FK dependency order: payment_intents references orders
// (no ON DELETE action), so intents must go before their orders or the batch
// aborts on the foreign key.
var purgeStmts = []string{
	`DELETE FROM order_item_modifiers WHERE order_item_id IN (
     SELECT oi.id FROM order_items oi JOIN orders o ON o.id = oi.order_id WHERE o.session_id = ANY($1))`,
	`DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE session_id = ANY($1))`,
	`DELETE FROM payment_intents WHERE session_id = ANY($1)`,
	`DELETE FROM orders WHERE session_id = ANY($1)`,
	`DELETE FROM cart_item_modifiers WHERE cart_item_id IN (SELECT id FROM cart_items WHERE session_id = ANY($1))`,
	`DELETE FROM cart_items WHERE session_id = ANY($1)`,
	`DELETE FROM table_sessions WHERE id = ANY($1)`,
}

// PurgeSessions deletes every dependent row of the given sessions and then
// the sessions themselves, in FK dependency order, in one transaction. A
// partial batch never commits.
func (r *PGRepo) PurgeSessions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range purgeStmts {
		if _, err := tx.Exec(ctx, stmt, ids); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
