package memory

import (
	"context"
	"testing"

	"saldo/internal/sheets"
)

func TestMirrorAppendAndDelete(t *testing.T) {
	ctx := context.Background()
	m := New()

	err := m.AppendRows(ctx, []sheets.Row{
		{ID: "a", GroupID: "g1", Date: "2026-01-10"},
		{ID: "b", GroupID: "g1", Date: "2026-02-10"},
		{ID: "c", Date: "2026-02-11"},
	})
	if err != nil {
		t.Fatalf("AppendRows: %v", err)
	}

	if n, _ := m.DeleteByID(ctx, "c"); n != 1 {
		t.Errorf("DeleteByID(c) = %d, want 1", n)
	}
	if n, _ := m.DeleteByID(ctx, "c"); n != 0 {
		t.Errorf("second DeleteByID(c) = %d, want 0", n)
	}
	if n, _ := m.DeleteByGroup(ctx, ""); n != 0 {
		t.Errorf("empty group must not match standalone rows, removed %d", n)
	}
	if n, _ := m.DeleteByGroup(ctx, "g1"); n != 2 {
		t.Errorf("DeleteByGroup(g1) = %d, want 2", n)
	}
	if rows := m.Rows(); len(rows) != 0 {
		t.Errorf("expected empty mirror, got %v", rows)
	}
}
