package model

import (
	"strings"
	"time"
)

// Node is one node of the merged comparison tree. Exactly one of Left/Right
// may be nil: Added has no Left, Removed has no Right.
type Node struct {
	RelPath  string  `json:"rel_path"`
	Name     string  `json:"name"`
	Status   Status  `json:"status"`
	Left     *Entry  `json:"left,omitempty"`
	Right    *Entry  `json:"right,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

func (n *Node) IsDir() bool {
	if n.Left != nil {
		return n.Left.IsDir()
	}
	return n.Right != nil && n.Right.IsDir()
}

// ScanError reports a read failure recorded on either side of this node.
func (n *Node) ScanError() string {
	if n.Left != nil && n.Left.Err != "" {
		return n.Left.Err
	}
	if n.Right != nil && n.Right.Err != "" {
		return n.Right.Err
	}
	return ""
}

// Tree is the root container for one comparison run. It is built once and
// read-only afterwards, so presentation layers may query it concurrently.
type Tree struct {
	LeftPath  string    `json:"left_path"`
	RightPath string    `json:"right_path"`
	ScannedAt time.Time `json:"scanned_at"`
	Root      *Node     `json:"root"`

	TotalFiles int `json:"total_files"`
	Added      int `json:"added"`
	Removed    int `json:"removed"`
	Modified   int `json:"modified"`
	Conflicted int `json:"conflicted"`
}

// Lookup finds the node for a slash-separated relative path. The empty
// string or "." returns the root.
func (t *Tree) Lookup(relPath string) *Node {
	if t == nil || t.Root == nil {
		return nil
	}
	relPath = strings.Trim(relPath, "/")
	if relPath == "" || relPath == "." {
		return t.Root
	}

	node := t.Root
	for _, seg := range strings.Split(relPath, "/") {
		var next *Node
		for _, child := range node.Children {
			if child.Name == seg {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// Walk visits every node depth-first in child order, root first.
func (t *Tree) Walk(visit func(*Node)) {
	if t == nil || t.Root == nil {
		return
	}
	walkNode(t.Root, visit)
}

func walkNode(n *Node, visit func(*Node)) {
	visit(n)
	for _, child := range n.Children {
		walkNode(child, visit)
	}
}

// CountStats fills the summary counters from the assembled tree. Called
// once at build time; directories are containers and are not counted.
func (t *Tree) CountStats() {
	t.TotalFiles, t.Added, t.Removed, t.Modified, t.Conflicted = 0, 0, 0, 0, 0
	t.Walk(func(n *Node) {
		if n == t.Root || n.IsDir() {
			return
		}
		t.TotalFiles++
		switch n.Status {
		case StatusAdded:
			t.Added++
		case StatusRemoved:
			t.Removed++
		case StatusModified:
			t.Modified++
		case StatusConflicted:
			t.Conflicted++
		}
	})
}
