package vfs

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Node is a directory of the deception tree.
type Node struct {
	Name      string           `json:"name"`
	Size      int64            `json:"size"`
	Files     []File           `json:"files"`
	Dirs      map[string]*Node `json:"dirs"`
	Timestamp string           `json:"timestamp"`
}

// NewNode creates an empty directory with the current timestamp.
func NewNode(name string, size int64) *Node {
	return &Node{
		Name:      name,
		Size:      size,
		Files:     []File{},
		Dirs:      map[string]*Node{},
		Timestamp: time.Now().Format(TimeLayout),
	}
}

// cd checks that every component of path exists as a directory below n.
func (n *Node) cd(path []string) bool {
	if len(path) == 0 {
		return true
	}
	child, ok := n.Dirs[path[0]]
	if !ok {
		return false
	}
	return child.cd(path[1:])
}

// traverse descends along path as far as the components match directories
// and returns the deepest node reached. Callers validate paths with cd first.
func (n *Node) traverse(path []string) *Node {
	if len(path) == 0 {
		return n
	}
	child, ok := n.Dirs[path[0]]
	if !ok {
		return n
	}
	return child.traverse(path[1:])
}

// sortedDirs returns the child directories in lexicographic order.
func (n *Node) sortedDirs() []*Node {
	dirs := make([]*Node, 0, len(n.Dirs))
	for _, d := range n.Dirs {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs
}

// ls lists directories then files, both sorted, one name per CRLF line.
func (n *Node) ls() string {
	var lines []string
	for _, d := range n.sortedDirs() {
		lines = append(lines, d.Name)
	}

	sort.Slice(n.Files, func(i, j int) bool { return n.Files[i].Name < n.Files[j].Name })
	for i := range n.Files {
		lines = append(lines, n.Files[i].Name)
	}

	return strings.Join(lines, "\r\n")
}

// lsLong renders a unix-style long listing. The fake owner uid is derived
// from the attacker id so every attacker sees a stable, distinct user.
func (n *Node) lsLong(attackerID uint) string {
	uid := attackerID + 1000

	var lines []string
	for _, d := range n.sortedDirs() {
		lines = append(lines, fmt.Sprintf("drwxr-sr-x\t1 %d\t%d\t\t%d %s %s",
			uid, uid, d.Size, d.Timestamp, d.Name))
	}

	sort.Slice(n.Files, func(i, j int) bool { return n.Files[i].Name < n.Files[j].Name })
	for i := range n.Files {
		f := &n.Files[i]
		lines = append(lines, fmt.Sprintf("-rw-r--r--\t1 %d\t%d\t\t%d %s %s",
			uid, uid, f.Size, f.Timestamp, f.Name))
	}

	return strings.Join(lines, "\r\n")
}

// findFile returns the index of the named file, or -1.
func (n *Node) findFile(name string) int {
	for i := range n.Files {
		if n.Files[i].Name == name {
			return i
		}
	}
	return -1
}
