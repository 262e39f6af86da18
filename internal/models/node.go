package models

// Node is a single entry in the bookmark tree. A node without a URL is a
// folder; there is no separate type tag.
type Node struct {
	ID       int
	ParentID *int
	Title    string
	URL      *string
}

// IsFolder reports whether the node can hold children.
func (n *Node) IsFolder() bool {
	return n.URL == nil
}

// Mode names which backup set is currently live on the bar.
type Mode string

const (
	ModePrivate Mode = "private"
	ModeWork    Mode = "work"
)

// Other returns the complement mode.
func (m Mode) Other() Mode {
	if m == ModeWork {
		return ModePrivate
	}
	return ModeWork
}

// Valid reports whether m is one of the two known modes.
func (m Mode) Valid() bool {
	return m == ModePrivate || m == ModeWork
}
