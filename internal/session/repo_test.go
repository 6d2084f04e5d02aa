package session

import (
	"strings"
	"testing"
)

// deleteTarget extracts the table a statement deletes from (not tables it
// merely references in subqueries).
func deleteTarget(t *testing.T, stmt string) string {
	t.Helper()
	fields := strings.Fields(stmt)
	if len(fields) < 3 || fields[0] != "DELETE" || fields[1] != "FROM" {
		t.Fatalf("unexpected statement shape: %q", stmt)
	}
	return fields[2]
}

func TestPurgeStmtsRespectForeignKeys(t *testing.T) {
	t.Parallel()

	pos := map[string]int{}
	for i, stmt := range purgeStmts {
		pos[deleteTarget(t, stmt)] = i
	}

	// child table -> referenced table; the child's delete must run first or
	// the non-deferrable FK aborts the whole batch
	fks := []struct{ child, parent string }{
		{"order_item_modifiers", "order_items"},
		{"order_items", "orders"},
		{"payment_intents", "orders"},
		{"payment_intents", "table_sessions"},
		{"cart_item_modifiers", "cart_items"},
		{"orders", "table_sessions"},
		{"cart_items", "table_sessions"},
	}
	for _, fk := range fks {
		child, parent := fk.child, fk.parent
		ci, ok := pos[child]
		if !ok {
			t.Fatalf("no delete for %s", child)
		}
		pi, ok := pos[parent]
		if !ok {
			t.Fatalf("no delete for %s", parent)
		}
		if ci >= pi {
			t.Errorf("%s (stmt %d) must be deleted before %s (stmt %d)", child, ci, parent, pi)
		}
	}
}
