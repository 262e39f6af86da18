package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func strPtr(s string) *string {
	return &s
}

func TestAnchorsExist(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, id := range []int{BarID, OtherID} {
		node, err := st.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get(%d) error = %v", id, err)
		}
		if !node.IsFolder() {
			t.Errorf("anchor %d is not a folder", id)
		}
	}
}

func TestCreateAndChildrenOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if _, err := st.Create(ctx, BarID, title, strPtr("http://"+title)); err != nil {
			t.Fatalf("Create(%q) error = %v", title, err)
		}
	}

	children, err := st.Children(ctx, BarID)
	if err != nil {
		t.Fatalf("Children error = %v", err)
	}
	if len(children) != len(titles) {
		t.Fatalf("Expected %d children, got %d", len(titles), len(children))
	}
	for i, title := range titles {
		if children[i].Title != title {
			t.Errorf("child %d title = %q, want %q", i, children[i].Title, title)
		}
	}
}

func TestCreateValidatesParent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	leaf, err := st.Create(ctx, BarID, "leaf", strPtr("http://a"))
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}

	if _, err := st.Create(ctx, leaf.ID, "child", nil); !errors.Is(err, ErrNotFolder) {
		t.Errorf("Create under leaf: error = %v, want ErrNotFolder", err)
	}
	if _, err := st.Create(ctx, 9999, "child", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Create under missing: error = %v, want ErrNotFound", err)
	}
}

func TestGetNotFound(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.Get(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(9999) error = %v, want ErrNotFound", err)
	}
}

func TestRemoveDeletesSubtree(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	folder, err := st.Create(ctx, BarID, "folder", nil)
	if err != nil {
		t.Fatalf("Create folder error = %v", err)
	}
	inner, err := st.Create(ctx, folder.ID, "inner", nil)
	if err != nil {
		t.Fatalf("Create inner error = %v", err)
	}
	leaf, err := st.Create(ctx, inner.ID, "leaf", strPtr("http://a"))
	if err != nil {
		t.Fatalf("Create leaf error = %v", err)
	}

	if err := st.Remove(ctx, folder.ID); err != nil {
		t.Fatalf("Remove error = %v", err)
	}

	for _, id := range []int{folder.ID, inner.ID, leaf.ID} {
		if _, err := st.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("node %d still present after subtree removal", id)
		}
	}
}

func TestAnchorsProtected(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.Remove(ctx, BarID); !errors.Is(err, ErrAnchor) {
		t.Errorf("Remove(bar) error = %v, want ErrAnchor", err)
	}
	if err := st.Move(ctx, OtherID, BarID); !errors.Is(err, ErrAnchor) {
		t.Errorf("Move(other) error = %v, want ErrAnchor", err)
	}
	if err := st.Update(ctx, BarID, "renamed", nil); !errors.Is(err, ErrAnchor) {
		t.Errorf("Update(bar) error = %v, want ErrAnchor", err)
	}
}

func TestSubtree(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	folder, _ := st.Create(ctx, BarID, "folder", nil)
	st.Create(ctx, folder.ID, "leaf", strPtr("http://a"))
	st.Create(ctx, BarID, "top", strPtr("http://b"))

	tree, err := st.Subtree(ctx, BarID)
	if err != nil {
		t.Fatalf("Subtree error = %v", err)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("Expected 2 top-level children, got %d", len(tree.Children))
	}
	if len(tree.Children[0].Children) != 1 {
		t.Fatalf("Expected 1 nested child, got %d", len(tree.Children[0].Children))
	}
	if tree.Children[0].Children[0].Node.Title != "leaf" {
		t.Errorf("nested child title = %q, want %q", tree.Children[0].Children[0].Node.Title, "leaf")
	}
}

func TestEvents(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := st.Subscribe(ctx)

	node, err := st.Create(ctx, BarID, "a", strPtr("http://a"))
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if err := st.Update(ctx, node.ID, "b", strPtr("http://b")); err != nil {
		t.Fatalf("Update error = %v", err)
	}
	if err := st.Move(ctx, node.ID, OtherID); err != nil {
		t.Fatalf("Move error = %v", err)
	}
	if err := st.Remove(ctx, node.ID); err != nil {
		t.Fatalf("Remove error = %v", err)
	}

	want := []struct {
		op          EventOp
		parentID    int
		oldParentID int
	}{
		{EventCreated, BarID, 0},
		{EventChanged, BarID, 0},
		{EventMoved, OtherID, BarID},
		{EventRemoved, OtherID, 0},
	}
	for i, w := range want {
		select {
		case ev := <-events:
			if ev.Op != w.op || ev.NodeID != node.ID || ev.ParentID != w.parentID || ev.OldParentID != w.oldParentID {
				t.Errorf("event %d = %+v, want op=%s parent=%d oldParent=%d", i, ev, w.op, w.parentID, w.oldParentID)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d (%s)", i, w.op)
		}
	}
}

func TestEventTouches(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want bool
	}{
		{"created on bar", Event{Op: EventCreated, NodeID: 10, ParentID: BarID}, true},
		{"bar itself", Event{Op: EventChanged, NodeID: BarID, ParentID: 0}, true},
		{"moved off bar", Event{Op: EventMoved, NodeID: 10, ParentID: OtherID, OldParentID: BarID}, true},
		{"unrelated", Event{Op: EventCreated, NodeID: 10, ParentID: OtherID}, false},
		{"removed elsewhere", Event{Op: EventRemoved, NodeID: 10, ParentID: 42}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.Touches(BarID); got != tt.want {
				t.Errorf("Touches(bar) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlags(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.GetFlag(ctx, "mode"); err != nil || ok {
		t.Fatalf("GetFlag on empty store = ok=%v err=%v, want unset", ok, err)
	}

	if err := st.SetFlag(ctx, "mode", "work"); err != nil {
		t.Fatalf("SetFlag error = %v", err)
	}
	if err := st.SetFlag(ctx, "mode", "private"); err != nil {
		t.Fatalf("SetFlag overwrite error = %v", err)
	}

	value, ok, err := st.GetFlag(ctx, "mode")
	if err != nil || !ok {
		t.Fatalf("GetFlag = ok=%v err=%v, want set", ok, err)
	}
	if value != "private" {
		t.Errorf("flag value = %q, want %q", value, "private")
	}
}
