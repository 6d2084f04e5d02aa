package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tableserve/api/internal/auth"
	"github.com/tableserve/api/internal/cart"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrCartEmpty     = errors.New("cart is empty")
	ErrVenueMismatch = errors.New("order belongs to another venue")
	ErrTransition    = errors.New("transition not allowed for role")
)

type SubmitInput struct {
	SessionID      string
	VenueID        string
	TableID        string
	Comment        string
	IdempotencyKey string
}

type Repository interface {
	SubmitFromCart(ctx context.Context, in SubmitInput) (*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	ListByVenue(ctx context.Context, venueID string, statuses []Status) ([]Order, error)
	ListActiveBySession(ctx context.Context, sessionID string) ([]Order, error)
	SetStatus(ctx context.Context, id string, role auth.Role, venueID string, to Status) (*Order, error)
	ListServedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	PurgeOrders(ctx context.Context, ids []string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderCols = `id, venue_id, session_id, table_id, status, number, COALESCE(comment,''),
  accepted_at, ready_at, served_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.VenueID, &o.SessionID, &o.TableID, &o.Status, &o.Number, &o.Comment,
		&o.AcceptedAt, &o.ReadyAt, &o.ServedAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Items = []Item{}
	return &o, nil
}

// SubmitFromCart snapshots the session's cart into a new immutable order
// inside one transaction: the per-venue advisory lock serializes the
// max(number)+1 read against concurrent submits, then the cart is cleared
// and the session touched. A repeated idempotency key returns the order
// created by the first attempt.
func (r *PGRepo) SubmitFromCart(ctx context.Context, in SubmitInput) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if in.IdempotencyKey != "" {
		existing, err := scanOrder(tx.QueryRow(ctx, `
      SELECT `+orderCols+` FROM orders WHERE session_id=$1 AND idempotency_key=$2
    `, in.SessionID, in.IdempotencyKey))
		if err == nil {
			if err := r.loadItemsTx(ctx, tx, existing); err != nil {
				return nil, err
			}
			return existing, tx.Commit(ctx)
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, in.VenueID); err != nil {
		return nil, err
	}

	items, err := cart.ListBySessionTx(ctx, tx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	var number int
	if err := tx.QueryRow(ctx, `
    SELECT COALESCE(MAX(number),0)+1 FROM orders WHERE venue_id=$1
  `, in.VenueID).Scan(&number); err != nil {
		return nil, err
	}

	o, err := scanOrder(tx.QueryRow(ctx, `
    INSERT INTO orders (id, venue_id, session_id, table_id, status, number, comment, idempotency_key, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),NOW(),NOW())
    RETURNING `+orderCols,
		uuid.NewString(), in.VenueID, in.SessionID, in.TableID, StatusNew, number, in.Comment, in.IdempotencyKey))
	if err != nil {
		return nil, err
	}

	for _, ci := range items {
		oi := Item{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			MenuItemID: ci.MenuItemID,
			Qty:        ci.Qty,
			Note:       ci.Note,
			UnitPrice:  ci.UnitPrice,
			ItemName:   ci.ItemName,
			Modifiers:  []Modifier{},
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO order_items (id, order_id, menu_item_id, qty, note, unit_price, item_name)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, oi.ID, oi.OrderID, oi.MenuItemID, oi.Qty, oi.Note, oi.UnitPrice, oi.ItemName); err != nil {
			return nil, err
		}
		for _, m := range ci.Modifiers {
			om := Modifier{
				ID:          uuid.NewString(),
				OrderItemID: oi.ID,
				OptionID:    m.OptionID,
				OptionName:  m.OptionName,
				PriceDelta:  m.PriceDelta,
			}
			if _, err := tx.Exec(ctx, `
        INSERT INTO order_item_modifiers (id, order_item_id, option_id, option_name, price_delta)
        VALUES ($1,$2,$3,$4,$5)
      `, om.ID, om.OrderItemID, om.OptionID, om.OptionName, om.PriceDelta); err != nil {
				return nil, err
			}
			oi.Modifiers = append(oi.Modifiers, om)
		}
		o.Items = append(o.Items, oi)
	}

	if _, err := tx.Exec(ctx, `
    DELETE FROM cart_item_modifiers WHERE cart_item_id IN (SELECT id FROM cart_items WHERE session_id=$1)
  `, in.SessionID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE session_id=$1`, in.SessionID); err != nil {
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
	return o, nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) ListByVenue(ctx context.Context, venueID string, statuses []Status) ([]Order, error) {
	sql := `SELECT ` + orderCols + ` FROM orders WHERE venue_id=$1`
	args := []any{venueID}
	if len(statuses) > 0 {
		sql += ` AND status = ANY($2)`
		ss := make([]string, len(statuses))
		for i, s := range statuses {
			ss[i] = string(s)
		}
		args = append(args, ss)
	}
	sql += ` ORDER BY created_at ASC`
	return r.list(ctx, sql, args...)
}

func (r *PGRepo) ListActiveBySession(ctx context.Context, sessionID string) ([]Order, error) {
	return r.list(ctx, `
    SELECT `+orderCols+` FROM orders
    WHERE session_id=$1 AND status NOT IN ($2,$3)
    ORDER BY created_at ASC
  `, sessionID, StatusServed, StatusCancelled)
}

func (r *PGRepo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = *o
	}
	return out, nil
}

func (r *PGRepo) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := map[string]*Order{}
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = o
	}

	rows, err := r.db.Query(ctx, `
    SELECT id, order_id, menu_item_id, qty, COALESCE(note,''), unit_price, item_name
    FROM order_items WHERE order_id = ANY($1)
  `, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	var itemIDs []string
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Qty, &it.Note, &it.UnitPrice, &it.ItemName); err != nil {
			return err
		}
		it.Modifiers = []Modifier{}
		o := index[it.OrderID]
		o.Items = append(o.Items, it)
		itemIDs = append(itemIDs, it.ID)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(itemIDs) == 0 {
		return nil
	}
	// index only after every append; appending to a slice moves its backing
	// array, so pointers taken mid-loop go stale
	itemIndex := indexItems(orders)

	mrows, err := r.db.Query(ctx, `
    SELECT id, order_item_id, option_id, option_name, price_delta
    FROM order_item_modifiers WHERE order_item_id = ANY($1)
  `, itemIDs)
	if err != nil {
		return err
	}
	defer mrows.Close()
	for mrows.Next() {
		var m Modifier
		if err := mrows.Scan(&m.ID, &m.OrderItemID, &m.OptionID, &m.OptionName, &m.PriceDelta); err != nil {
			return err
		}
		if it, ok := itemIndex[m.OrderItemID]; ok {
			it.Modifiers = append(it.Modifiers, m)
		}
	}
	return mrows.Err()
}

// indexItems maps item id to the item's slot inside its order. Call it only
// once the Items slices are fully built.
func indexItems(orders []*Order) map[string]*Item {
	idx := map[string]*Item{}
	for _, o := range orders {
		for i := range o.Items {
			idx[o.Items[i].ID] = &o.Items[i]
		}
	}
	return idx
}

func (r *PGRepo) loadItemsTx(ctx context.Context, tx pgx.Tx, o *Order) error {
	rows, err := tx.Query(ctx, `
    SELECT id, order_id, menu_item_id, qty, COALESCE(note,''), unit_price, item_name
    FROM order_items WHERE order_id=$1
  `, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Qty, &it.Note, &it.UnitPrice, &it.ItemName); err != nil {
			return err
		}
		it.Modifiers = []Modifier{}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	mrows, err := tx.Query(ctx, `
    SELECT id, order_item_id, option_id, option_name, price_delta
    FROM order_item_modifiers WHERE order_item_id IN (SELECT id FROM order_items WHERE order_id=$1)
  `, o.ID)
	if err != nil {
		return err
	}
	defer mrows.Close()
	itemIndex := indexItems([]*Order{o})
	for mrows.Next() {
		var m Modifier
		if err := mrows.Scan(&m.ID, &m.OrderItemID, &m.OptionID, &m.OptionName, &m.PriceDelta); err != nil {
			return err
		}
		if it, ok := itemIndex[m.OrderItemID]; ok {
			it.Modifiers = append(it.Modifiers, m)
		}
	}
	return mrows.Err()
}

// SetStatus applies a role-gated status transition. The row lock makes
// concurrent updates to the same order take turns, so the transition check
// always sees the latest status. The acceptedAt/readyAt/servedAt stamps are
// set only on first entry into their state.
func (r *PGRepo) SetStatus(ctx context.Context, id string, role auth.Role, venueID string, to Status) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, `
    SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE
  `, id))
	if err != nil {
		return nil, err
	}
	if o.VenueID != venueID {
		return nil, ErrVenueMismatch
	}
	if !TransitionAllowed(role, o.Status, to) {
		return nil, ErrTransition
	}

	o, err = scanOrder(tx.QueryRow(ctx, `
    UPDATE orders SET
      status=$2,
      accepted_at = CASE WHEN $2=$3 THEN COALESCE(accepted_at, NOW()) ELSE accepted_at END,
      ready_at    = CASE WHEN $2=$4 THEN COALESCE(ready_at, NOW())    ELSE ready_at    END,
      served_at   = CASE WHEN $2=$5 THEN COALESCE(served_at, NOW())   ELSE served_at   END,
      updated_at  = NOW()
    WHERE id=$1
    RETURNING `+orderCols, id, to, StatusAccepted, StatusReady, StatusServed))
	if err != nil {
		return nil, err
	}
	if err := r.loadItemsTx(ctx, tx, o); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) ListServedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, `
    SELECT id FROM orders WHERE status=$1 AND served_at <= $2
  `, StatusServed, cutoff)
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

// PurgeOrders deletes stale served orders and their dependents in one
// transaction, leaving nothing orphaned.
func (r *PGRepo) PurgeOrders(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stmts := []string{
		`DELETE FROM order_item_modifiers WHERE order_item_id IN (SELECT id FROM order_items WHERE order_id = ANY($1))`,
		`DELETE FROM order_items WHERE order_id = ANY($1)`,
		`DELETE FROM payment_intents WHERE order_id = ANY($1)`,
		`DELETE FROM orders WHERE id = ANY($1)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt, ids); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
