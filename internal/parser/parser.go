package parser

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Entry is one item parsed from a Netscape bookmark file. A nil URL marks a
// folder.
type Entry struct {
	Title    string
	URL      *string
	Children []*Entry
}

// IsFolder reports whether the entry can hold children.
func (e *Entry) IsFolder() bool {
	return e.URL == nil
}

// ParseBookmarksHTML parses a Netscape bookmark file (the format browsers
// export) into a nested entry tree.
func ParseBookmarksHTML(r io.Reader) ([]*Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := &Entry{}
	stack := []*Entry{root}
	top := func() *Entry { return stack[len(stack)-1] }

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		// Found folder header <H3 ...>
		if n.Type == html.ElementNode && n.Data == "h3" && n.FirstChild != nil {
			folder := &Entry{Title: strings.TrimSpace(n.FirstChild.Data)}
			top().Children = append(top().Children, folder)
			stack = append(stack, folder)
		}

		// Found bookmark <A HREF=...>
		if n.Type == html.ElementNode && n.Data == "a" {
			var href string
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = attr.Val
				}
			}
			if href != "" {
				leaf := &Entry{URL: &href}
				if n.FirstChild != nil {
					leaf.Title = strings.TrimSpace(n.FirstChild.Data)
				}
				top().Children = append(top().Children, leaf)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		// When exiting a DL container - "close" the current folder
		if n.Type == html.ElementNode && n.Data == "dl" && len(stack) > 1 {
			stack = stack[:len(stack)-1]
		}
	}

	walk(doc)
	return root.Children, nil
}
