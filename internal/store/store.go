package store

import (
	"context"
	"errors"

	"github.com/dastanaron/barswitch/internal/models"
)

// Fixed anchor nodes created by the schema. BarID is the user-visible
// bookmarks bar; OtherID hosts hidden hierarchies such as the backup root.
const (
	BarID   = 1
	OtherID = 2
)

var (
	// ErrNotFound is returned when the requested node does not exist.
	ErrNotFound = errors.New("node not found")
	// ErrNotFolder is returned when a leaf node is used as a parent.
	ErrNotFolder = errors.New("node is not a folder")
	// ErrAnchor is returned on attempts to remove or move an anchor node.
	ErrAnchor = errors.New("anchor nodes cannot be modified")
)

// Tree is a node together with its recursively loaded children.
type Tree struct {
	Node     models.Node
	Children []*Tree
}

// Store defines operations on the hierarchical bookmark store. Every
// mutation emits an Event on the subscription feed after it is committed.
type Store interface {
	Get(ctx context.Context, id int) (*models.Node, error)
	Children(ctx context.Context, id int) ([]models.Node, error)
	Subtree(ctx context.Context, id int) (*Tree, error)
	Create(ctx context.Context, parentID int, title string, url *string) (*models.Node, error)
	Update(ctx context.Context, id int, title string, url *string) error
	Move(ctx context.Context, id, newParentID int) error
	Remove(ctx context.Context, id int) error
	Subscribe(ctx context.Context) <-chan Event
}

// FlagStore persists small named flags (mode, cached folder ids).
type FlagStore interface {
	GetFlag(ctx context.Context, key string) (string, bool, error)
	SetFlag(ctx context.Context, key, value string) error
}
