package commands

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"

	"github.com/dastanaron/barswitch/internal/store"
)

// ExportCommand writes the bookmarks bar to a Netscape bookmark file
type ExportCommand struct {
	store store.Store
}

// NewExportCommand creates a new export command
func NewExportCommand(st store.Store) *ExportCommand {
	return &ExportCommand{store: st}
}

// Execute exports the current bar contents to an HTML file
func (c *ExportCommand) Execute(ctx context.Context, filePath string) error {
	tree, err := c.store.Subtree(ctx, store.BarID)
	if err != nil {
		return fmt.Errorf("failed to read bar: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}
	defer file.Close()

	// Write HTML header
	fmt.Fprintf(file, "<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	fmt.Fprintf(file, "<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	fmt.Fprintf(file, "<TITLE>Bookmarks</TITLE>\n")
	fmt.Fprintf(file, "<H1>Bookmarks</H1>\n")
	fmt.Fprintf(file, "<DL><p>\n")

	exported := 0
	for _, child := range tree.Children {
		exported += c.writeTree(file, child)
	}

	fmt.Fprintf(file, "</DL><p>\n")

	fmt.Printf("Exported %d bookmarks to %s\n", exported, filePath)
	return nil
}

// writeTree writes a node and its contents recursively
func (c *ExportCommand) writeTree(w io.Writer, t *store.Tree) int {
	if !t.Node.IsFolder() {
		fmt.Fprintf(w, "    <DT><A HREF=\"%s\">%s</A>\n",
			html.EscapeString(*t.Node.URL), html.EscapeString(t.Node.Title))
		return 1
	}

	fmt.Fprintf(w, "    <DT><H3>%s</H3>\n", html.EscapeString(t.Node.Title))
	fmt.Fprintf(w, "    <DL><p>\n")
	exported := 0
	for _, child := range t.Children {
		exported += c.writeTree(w, child)
	}
	fmt.Fprintf(w, "    </DL><p>\n")
	return exported
}
