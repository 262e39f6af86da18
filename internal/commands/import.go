package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/dastanaron/barswitch/internal/parser"
	"github.com/dastanaron/barswitch/internal/store"
)

// ImportCommand loads a Netscape bookmark file onto the bookmarks bar
type ImportCommand struct {
	store store.Store
}

// NewImportCommand creates a new import command
func NewImportCommand(st store.Store) *ImportCommand {
	return &ImportCommand{store: st}
}

// Execute imports bookmarks from an HTML file onto the bar. Existing bar
// contents are kept; imported entries are appended.
func (c *ImportCommand) Execute(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("cannot open file: %w", err)
	}
	defer file.Close()

	entries, err := parser.ParseBookmarksHTML(file)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	imported := c.writeEntries(ctx, store.BarID, entries)
	fmt.Printf("Imported %d bookmarks.\n", imported)
	return nil
}

func (c *ImportCommand) writeEntries(ctx context.Context, parentID int, entries []*parser.Entry) int {
	imported := 0
	for _, e := range entries {
		node, err := c.store.Create(ctx, parentID, e.Title, e.URL)
		if err != nil {
			fmt.Printf("Warning: failed to import '%s': %v\n", e.Title, err)
			continue
		}
		if e.IsFolder() {
			imported += c.writeEntries(ctx, node.ID, e.Children)
		} else {
			imported++
		}
	}
	return imported
}
