package commands

import (
	"context"
	"fmt"

	"github.com/dastanaron/barswitch/internal/store"
)

// ClearDoublesCommand removes duplicate bookmarks from the bar
type ClearDoublesCommand struct {
	store store.Store
}

// NewClearDoublesCommand creates a new clear doubles command
func NewClearDoublesCommand(st store.Store) *ClearDoublesCommand {
	return &ClearDoublesCommand{store: st}
}

// Execute removes duplicate bookmarks on the bar (keeps the first one found
// in walk order, deletes the others)
func (c *ClearDoublesCommand) Execute(ctx context.Context) error {
	tree, err := c.store.Subtree(ctx, store.BarID)
	if err != nil {
		return fmt.Errorf("failed to read bar: %w", err)
	}

	seenURLs := make(map[string]int) // URL -> ID of node to keep
	var duplicatesToDelete []int

	var walk func(t *store.Tree)
	walk = func(t *store.Tree) {
		for _, child := range t.Children {
			if child.Node.IsFolder() {
				walk(child)
				continue
			}
			url := *child.Node.URL
			if existingID, exists := seenURLs[url]; exists {
				duplicatesToDelete = append(duplicatesToDelete, child.Node.ID)
				fmt.Printf("Found duplicate: '%s' (ID: %d, keeping ID: %d)\n",
					child.Node.Title, child.Node.ID, existingID)
			} else {
				seenURLs[url] = child.Node.ID
			}
		}
	}
	walk(tree)

	if len(duplicatesToDelete) == 0 {
		fmt.Println("No duplicate bookmarks found.")
		return nil
	}

	deleted := 0
	for _, id := range duplicatesToDelete {
		if err := c.store.Remove(ctx, id); err != nil {
			fmt.Printf("Warning: failed to delete bookmark ID %d: %v\n", id, err)
			continue
		}
		deleted++
	}

	fmt.Printf("Deleted %d duplicate bookmark(s).\n", deleted)
	return nil
}
