package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repository interface {
	ListBySession(ctx context.Context, sessionID string) ([]Item, error)
	Add(ctx context.Context, item *Item) error
	SetQty(ctx context.Context, sessionID, itemID string, qty int) error
	Remove(ctx context.Context, sessionID, itemID string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// touchSession keeps cart mutations and the session activity/version bump
// in the same transaction.
func touchSession(ctx context.Context, tx pgx.Tx, sessionID string) error {
	_, err := tx.Exec(ctx, `
    UPDATE table_sessions SET last_active_at=NOW(), version=version+1 WHERE id=$1
  `, sessionID)
	return err
}

func (r *PGRepo) ListBySession(ctx context.Context, sessionID string) ([]Item, error) {
	return listBySession(ctx, r.db, sessionID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ListBySessionTx is used by the order submit transaction to snapshot the
// cart with the same visibility as the rest of the transaction.
func ListBySessionTx(ctx context.Context, tx pgx.Tx, sessionID string) ([]Item, error) {
	return listBySession(ctx, tx, sessionID)
}

func listBySession(ctx context.Context, q querier, sessionID string) ([]Item, error) {
	rows, err := q.Query(ctx, `
    SELECT id, session_id, menu_item_id, qty, COALESCE(note,''), unit_price, item_name
    FROM cart_items WHERE session_id=$1
    ORDER BY created_at ASC
  `, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	index := map[string]int{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.SessionID, &it.MenuItemID, &it.Qty, &it.Note, &it.UnitPrice, &it.ItemName); err != nil {
			return nil, err
		}
		it.Modifiers = []Modifier{}
		index[it.ID] = len(items)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	mrows, err := q.Query(ctx, `
    SELECT cart_item_id, option_id, option_name, price_delta
    FROM cart_item_modifiers WHERE cart_item_id = ANY($1)
  `, ids)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var itemID string
		var m Modifier
		if err := mrows.Scan(&itemID, &m.OptionID, &m.OptionName, &m.PriceDelta); err != nil {
			return nil, err
		}
		if i, ok := index[itemID]; ok {
			items[i].Modifiers = append(items[i].Modifiers, m)
		}
	}
	return items, mrows.Err()
}

func (r *PGRepo) Add(ctx context.Context, item *Item) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if _, err := tx.Exec(ctx, `
    INSERT INTO cart_items (id, session_id, menu_item_id, qty, note, unit_price, item_name, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
  `, item.ID, item.SessionID, item.MenuItemID, item.Qty, item.Note, item.UnitPrice, item.ItemName); err != nil {
		return err
	}
	for _, m := range item.Modifiers {
		if _, err := tx.Exec(ctx, `
      INSERT INTO cart_item_modifiers (id, cart_item_id, option_id, option_name, price_delta)
      VALUES ($1,$2,$3,$4,$5)
    `, uuid.NewString(), item.ID, m.OptionID, m.OptionName, m.PriceDelta); err != nil {
			return err
		}
	}
	if err := touchSession(ctx, tx, item.SessionID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetQty updates an item's quantity; qty <= 0 removes the item entirely.
func (r *PGRepo) SetQty(ctx context.Context, sessionID, itemID string, qty int) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if qty <= 0 {
		if err := deleteItem(ctx, tx, sessionID, itemID); err != nil {
			return err
		}
	} else {
		tag, err := tx.Exec(ctx, `
      UPDATE cart_items SET qty=$3 WHERE id=$2 AND session_id=$1
    `, sessionID, itemID, qty)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrItemNotFound
		}
	}
	if err := touchSession(ctx, tx, sessionID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Remove deletes an item. Removing an already removed item is a no-op; the
// cart broadcast that follows reconciles every device anyway.
func (r *PGRepo) Remove(ctx context.Context, sessionID, itemID string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := deleteItem(ctx, tx, sessionID, itemID); err != nil {
		return err
	}
	if err := touchSession(ctx, tx, sessionID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func deleteItem(ctx context.Context, tx pgx.Tx, sessionID, itemID string) error {
	if _, err := tx.Exec(ctx, `
    DELETE FROM cart_item_modifiers WHERE cart_item_id IN (
      SELECT id FROM cart_items WHERE id=$2 AND session_id=$1)
  `, sessionID, itemID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id=$2 AND session_id=$1`, sessionID, itemID)
	return err
}
