package ui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dastanaron/barswitch/internal/store"
	"github.com/dastanaron/barswitch/internal/switcher"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func strPtr(s string) *string {
	return &s
}

func TestDeleteSelected(t *testing.T) {
	st := newTestStore(t)
	sw := switcher.New(st, 50*time.Millisecond, 50*time.Millisecond)
	t.Cleanup(sw.Stop)
	ctx := context.Background()

	st.Create(ctx, store.BarID, "A", strPtr("http://a"))
	st.Create(ctx, store.BarID, "B", strPtr("http://b"))

	a := NewApp(st, sw)
	if err := a.reload(ctx); err != nil {
		t.Fatalf("reload error = %v", err)
	}

	// First item is selected by default.
	a.deleteSelected(ctx)

	children, err := st.Children(ctx, store.BarID)
	if err != nil {
		t.Fatalf("Children error = %v", err)
	}
	if len(children) != 1 || children[0].Title != "B" {
		t.Fatalf("bar after delete = %+v, want [B]", children)
	}
}

// brokenStore rejects every Remove.
type brokenStore struct {
	store.Store
}

var errRejected = errors.New("store rejected remove")

func (b *brokenStore) Remove(ctx context.Context, id int) error {
	return errRejected
}

func TestDeleteSelectedStoreFailure(t *testing.T) {
	st := newTestStore(t)
	sw := switcher.New(st, 50*time.Millisecond, 50*time.Millisecond)
	t.Cleanup(sw.Stop)
	ctx := context.Background()

	st.Create(ctx, store.BarID, "A", strPtr("http://a"))

	a := NewApp(&brokenStore{Store: st}, sw)
	if err := a.reload(ctx); err != nil {
		t.Fatalf("reload error = %v", err)
	}

	// The failure is logged and swallowed; the view stays consistent.
	a.deleteSelected(ctx)

	children, err := st.Children(ctx, store.BarID)
	if err != nil {
		t.Fatalf("Children error = %v", err)
	}
	if len(children) != 1 || children[0].Title != "A" {
		t.Fatalf("bar changed despite failed delete: %+v", children)
	}
	if len(a.items) != 1 {
		t.Fatalf("view out of sync after failed delete: %+v", a.items)
	}
}
