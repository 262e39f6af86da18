package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dastanaron/barswitch/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store and FlagStore using SQLite
type SQLiteStore struct {
	db     *sql.DB
	events *broker
}

// NewSQLiteStore opens (or creates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:     db,
		events: newBroker(),
	}, nil
}

func initSchema(db *sql.DB) error {
	createTables := `
	CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER,
		title TEXT NOT NULL,
		url TEXT,
		FOREIGN KEY(parent_id) REFERENCES nodes(id)
	);

	CREATE TABLE IF NOT EXISTS flags (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
	`
	if _, err := db.Exec(createTables); err != nil {
		return err
	}

	// The two anchors always exist and keep fixed ids.
	_, err := db.Exec(
		`INSERT OR IGNORE INTO nodes(id, parent_id, title, url) VALUES
			(?, NULL, 'Bookmarks Bar', NULL),
			(?, NULL, 'Other Bookmarks', NULL)`,
		BarID, OtherID,
	)
	return err
}

// Close shuts down the event feed and closes the database connection
func (s *SQLiteStore) Close() error {
	s.events.shutdown()
	return s.db.Close()
}

// Subscribe returns a feed of mutation events. The channel closes when ctx
// is done or the store is closed.
func (s *SQLiteStore) Subscribe(ctx context.Context) <-chan Event {
	return s.events.subscribe(ctx)
}

func (s *SQLiteStore) Get(ctx context.Context, id int) (*models.Node, error) {
	var n models.Node
	err := s.db.QueryRowContext(ctx,
		`SELECT id, parent_id, title, url FROM nodes WHERE id = ?`, id,
	).Scan(&n.ID, &n.ParentID, &n.Title, &n.URL)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *SQLiteStore) Children(ctx context.Context, id int) ([]models.Node, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_id, title, url FROM nodes WHERE parent_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []models.Node
	for rows.Next() {
		var n models.Node
		if err := rows.Scan(&n.ID, &n.ParentID, &n.Title, &n.URL); err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return children, rows.Err()
}

// Subtree loads the node and everything beneath it.
func (s *SQLiteStore) Subtree(ctx context.Context, id int) (*Tree, error) {
	node, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tree := &Tree{Node: *node}
	if !node.IsFolder() {
		return tree, nil
	}

	children, err := s.Children(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		sub, err := s.Subtree(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		tree.Children = append(tree.Children, sub)
	}
	return tree, nil
}

func (s *SQLiteStore) Create(ctx context.Context, parentID int, title string, url *string) (*models.Node, error) {
	parent, err := s.Get(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if !parent.IsFolder() {
		return nil, fmt.Errorf("parent %d: %w", parentID, ErrNotFolder)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes(parent_id, title, url) VALUES (?, ?, ?)`,
		parentID, title, url,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	node := &models.Node{ID: int(id), ParentID: &parentID, Title: title, URL: url}
	s.events.publish(Event{Op: EventCreated, NodeID: node.ID, ParentID: parentID})
	return node, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id int, title string, url *string) error {
	if id == BarID || id == OtherID {
		return fmt.Errorf("node %d: %w", id, ErrAnchor)
	}
	node, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE nodes SET title = ?, url = ? WHERE id = ?`, title, url, id,
	)
	if err != nil {
		return err
	}

	s.events.publish(Event{Op: EventChanged, NodeID: id, ParentID: parentOrZero(node)})
	return nil
}

func (s *SQLiteStore) Move(ctx context.Context, id, newParentID int) error {
	if id == BarID || id == OtherID {
		return fmt.Errorf("node %d: %w", id, ErrAnchor)
	}
	node, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	parent, err := s.Get(ctx, newParentID)
	if err != nil {
		return err
	}
	if !parent.IsFolder() {
		return fmt.Errorf("parent %d: %w", newParentID, ErrNotFolder)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE nodes SET parent_id = ? WHERE id = ?`, newParentID, id,
	)
	if err != nil {
		return err
	}

	s.events.publish(Event{
		Op:          EventMoved,
		NodeID:      id,
		ParentID:    newParentID,
		OldParentID: parentOrZero(node),
	})
	return nil
}

// Remove deletes the node and its whole subtree.
func (s *SQLiteStore) Remove(ctx context.Context, id int) error {
	if id == BarID || id == OtherID {
		return fmt.Errorf("node %d: %w", id, ErrAnchor)
	}
	node, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM nodes WHERE id IN (
			WITH RECURSIVE subtree(id) AS (
				SELECT ?
				UNION ALL
				SELECT n.id FROM nodes n JOIN subtree s ON n.parent_id = s.id
			)
			SELECT id FROM subtree
		)`, id,
	)
	if err != nil {
		return err
	}

	s.events.publish(Event{Op: EventRemoved, NodeID: id, ParentID: parentOrZero(node)})
	return nil
}

func parentOrZero(n *models.Node) int {
	if n.ParentID == nil {
		return 0
	}
	return *n.ParentID
}
