package payment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("payment not found")
	ErrStaleState      = errors.New("session state changed since quote")
	ErrSessionNotFound = errors.New("session not found")
)

type CreateInput struct {
	VenueID        string
	SessionID      string
	OrderID        string
	Amount         int64
	Payload        Payload
	StateVersion   *int64 // CAS guard; nil skips the check (legacy immediate path)
	IdempotencyKey string
}

type Repository interface {
	CreateSettled(ctx context.Context, in CreateInput) (*Intent, error)
	Get(ctx context.Context, id string) (*Intent, error)
	ListBySession(ctx context.Context, sessionID string) ([]Intent, error)
	SumPaid(ctx context.Context, sessionID, orderID string) (int64, error)
}

type PGRepo struct {
	db       *pgxpool.Pool
	provider Provider
}

func NewPGRepo(db *pgxpool.Pool, provider Provider) *PGRepo {
	return &PGRepo{db: db, provider: provider}
}

const intentCols = `id, venue_id, session_id, COALESCE(order_id,''), amount, status, provider, payload, created_at, updated_at`

func scanIntent(row pgx.Row) (*Intent, error) {
	var p Intent
	var payload []byte
	err := row.Scan(&p.ID, &p.VenueID, &p.SessionID, &p.OrderID, &p.Amount, &p.Status, &p.Provider,
		&payload, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &p.Payload)
	}
	return &p, nil
}

// CreateSettled creates an intent and immediately settles it with the
// provider, all inside one transaction that locks the session row. The lock
// serializes competing payments; the version check rejects quotes computed
// against a session that has since advanced.
func (r *PGRepo) CreateSettled(ctx context.Context, in CreateInput) (*Intent, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var version int64
	err = tx.QueryRow(ctx, `
    SELECT version FROM table_sessions WHERE id=$1 FOR UPDATE
  `, in.SessionID).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	// after the lock: a concurrent retry with the same key is now serialized
	// behind the first attempt and finds its intent instead of tripping the
	// unique constraint
	if in.IdempotencyKey != "" {
		existing, err := scanIntent(tx.QueryRow(ctx, `
      SELECT `+intentCols+` FROM payment_intents WHERE session_id=$1 AND idempotency_key=$2
    `, in.SessionID, in.IdempotencyKey))
		if err == nil {
			return existing, tx.Commit(ctx)
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if in.StateVersion != nil && *in.StateVersion != version {
		return nil, ErrStaleState
	}

	payload, err := json.Marshal(in.Payload)
	if err != nil {
		return nil, err
	}
	intent, err := scanIntent(tx.QueryRow(ctx, `
    INSERT INTO payment_intents (id, venue_id, session_id, order_id, amount, status, provider, payload, idempotency_key, created_at, updated_at)
    VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8,NULLIF($9,''),NOW(),NOW())
    RETURNING `+intentCols,
		uuid.NewString(), in.VenueID, in.SessionID, in.OrderID, in.Amount, StatusCreated, "mock", payload, in.IdempotencyKey))
	if err != nil {
		return nil, err
	}

	settled, err := r.provider.Settle(ctx, intent)
	if err != nil {
		return nil, err
	}
	intent, err = scanIntent(tx.QueryRow(ctx, `
    UPDATE payment_intents SET status=$2, updated_at=NOW() WHERE id=$1
    RETURNING `+intentCols, intent.ID, settled))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE table_sessions SET last_active_at=NOW(), version=version+1 WHERE id=$1
  `, in.SessionID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return intent, nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Intent, error) {
	return scanIntent(r.db.QueryRow(ctx, `
    SELECT `+intentCols+` FROM payment_intents WHERE id=$1
  `, id))
}

func (r *PGRepo) ListBySession(ctx context.Context, sessionID string) ([]Intent, error) {
	rows, err := r.db.Query(ctx, `
    SELECT `+intentCols+` FROM payment_intents WHERE session_id=$1 ORDER BY created_at ASC
  `, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Intent
	for rows.Next() {
		p, err := scanIntent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// SumPaid totals settled payments for the session, narrowed to one order
// when orderID is set.
func (r *PGRepo) SumPaid(ctx context.Context, sessionID, orderID string) (int64, error) {
	sql := `SELECT COALESCE(SUM(amount),0) FROM payment_intents WHERE session_id=$1 AND status=$2`
	args := []any{sessionID, StatusPaid}
	if orderID != "" {
		sql += ` AND order_id=$3`
		args = append(args, orderID)
	}
	var sum int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}
