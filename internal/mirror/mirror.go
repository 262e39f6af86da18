// Package mirror implements recursive copy and clear over the bookmark
// store. Copy is purely additive and never deletes; clear removes the direct
// children of a folder together with everything beneath them.
package mirror

import (
	"context"
	"fmt"

	"github.com/dastanaron/barswitch/internal/logger"
	"github.com/dastanaron/barswitch/internal/store"
)

// CopyTree recreates every child of srcID under destID, recursing into
// folders. A failed child is logged and skipped so the rest of the subtree
// still copies; the first such failure is returned after the walk finishes.
// An invalid destination fails the whole call before anything is written.
func CopyTree(ctx context.Context, st store.Store, srcID, destID int) error {
	dest, err := st.Get(ctx, destID)
	if err != nil {
		return fmt.Errorf("copy destination: %w", err)
	}
	if !dest.IsFolder() {
		return fmt.Errorf("copy destination %d: %w", destID, store.ErrNotFolder)
	}

	children, err := st.Children(ctx, srcID)
	if err != nil {
		return fmt.Errorf("copy source: %w", err)
	}

	var firstErr error
	for _, child := range children {
		created, err := st.Create(ctx, destID, child.Title, child.URL)
		if err != nil {
			logger.Warn("skipping node that failed to copy", map[string]interface{}{
				"title": child.Title,
				"error": err,
			})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if created.IsFolder() {
			if err := CopyTree(ctx, st, child.ID, created.ID); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ClearTree removes every direct child of id and its subtree.
func ClearTree(ctx context.Context, st store.Store, id int) error {
	children, err := st.Children(ctx, id)
	if err != nil {
		return fmt.Errorf("clear target: %w", err)
	}
	for _, child := range children {
		if err := st.Remove(ctx, child.ID); err != nil {
			return fmt.Errorf("clear %q: %w", child.Title, err)
		}
	}
	return nil
}
