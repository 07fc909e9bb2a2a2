package vfs

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// FileSystem is the per-attacker deception tree together with the current
// working directory. The whole value is persisted as a JSON blob on the
// attacker row, so every field must round-trip through encoding/json.
type FileSystem struct {
	Root *Node    `json:"root"`
	Path []string `json:"path"`
}

// New returns an empty filesystem rooted at "root".
func New() *FileSystem {
	return &FileSystem{
		Root: NewNode("root", 0),
		Path: []string{},
	}
}

// splitPath splits an FTP path argument on "/", dropping a trailing
// separator: "node1/" yields ["node1"], "/a" yields ["", "a"].
func splitPath(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "/")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// resolveParts walks path components relative to the current directory and
// returns the resulting absolute path. A leading empty component anchors the
// walk at the root, a leading "." is a no-op and ".." pops (a no-op at the
// root). Returns false if any component does not exist.
func (fs *FileSystem) resolveParts(parts []string) ([]string, bool) {
	tmp := append([]string{}, fs.Path...)

	if len(parts) > 0 && parts[0] == "" {
		tmp = []string{}
		parts = parts[1:]
	}
	if len(parts) > 0 && parts[0] == "." {
		parts = parts[1:]
	}

	for _, part := range parts {
		if part == ".." {
			if len(tmp) > 0 {
				tmp = tmp[:len(tmp)-1]
			}
			continue
		}
		candidate := append(append([]string{}, tmp...), part)
		if !fs.Root.cd(candidate) {
			return nil, false
		}
		tmp = append(tmp, part)
	}
	return tmp, true
}

// Resolve resolves an FTP path argument to an absolute path.
func (fs *FileSystem) Resolve(path string) ([]string, bool) {
	return fs.resolveParts(splitPath(path))
}

// Cd changes the working directory. The old path is kept when the target
// does not exist.
func (fs *FileSystem) Cd(path string) bool {
	resolved, ok := fs.Resolve(path)
	if !ok {
		return false
	}
	fs.Path = resolved
	return true
}

// ClearPath resets the working directory to the root.
func (fs *FileSystem) ClearPath() {
	fs.Path = []string{}
}

// Pwd returns the working directory as an absolute slash path.
func (fs *FileSystem) Pwd() string {
	return "/" + strings.Join(fs.Path, "/")
}

// current returns the node of the working directory.
func (fs *FileSystem) current() *Node {
	return fs.Root.traverse(fs.Path)
}

// List returns the short listing of the working directory.
func (fs *FileSystem) List() string {
	return fs.current().ls()
}

// ListLong returns the long listing of the working directory.
func (fs *FileSystem) ListLong(attackerID uint) string {
	return fs.current().lsLong(attackerID)
}

// ListLongAt returns the long listing of the given path, resolved relative
// to the working directory. Returns false if the path does not exist.
func (fs *FileSystem) ListLongAt(attackerID uint, path string) (string, bool) {
	resolved, ok := fs.Resolve(path)
	if !ok {
		return "", false
	}
	return fs.Root.traverse(resolved).lsLong(attackerID), true
}

// ListLongAll returns the long listing of the working directory with the
// synthetic "." and ".." entries that an `ls -a` shows.
func (fs *FileSystem) ListLongAll(attackerID uint) string {
	uid := attackerID + 1000
	dot := fmt.Sprintf("drwxr-sr-x\t1 %d\t%d\t\t%d Mar 16 21:23 .", uid, uid, 0)
	dotdot := fmt.Sprintf("drwxr-sr-x\t1 %d\t%d\t\t%d Mar 13 19:59 ..", uid, uid, 0)
	return dot + "\r\n" + dotdot + "\r\n" + fs.current().lsLong(attackerID)
}

// splitDirAndName splits an FTP path argument into the directory part and
// the final name. Returns false for an empty argument.
func splitDirAndName(path string) ([]string, string, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, "", false
	}
	return parts[:len(parts)-1], parts[len(parts)-1], true
}

// Mkdir creates a directory at the given path. Fails if the parent does not
// exist or an equally named directory is already present.
func (fs *FileSystem) Mkdir(path string) bool {
	dir, name, ok := splitDirAndName(path)
	if !ok {
		return false
	}
	resolved, ok := fs.resolveParts(dir)
	if !ok {
		return false
	}
	node := fs.Root.traverse(resolved)
	if _, exists := node.Dirs[name]; exists {
		return false
	}
	node.Dirs[name] = NewNode(name, 0)
	return true
}

// Rmdir removes an empty directory. Fails if the directory does not exist
// or still holds files or subdirectories.
func (fs *FileSystem) Rmdir(path string) bool {
	dir, name, ok := splitDirAndName(path)
	if !ok {
		return false
	}
	resolved, ok := fs.resolveParts(dir)
	if !ok {
		return false
	}
	node := fs.Root.traverse(resolved)
	target, exists := node.Dirs[name]
	if !exists || len(target.Files) > 0 || len(target.Dirs) > 0 {
		return false
	}
	delete(node.Dirs, name)
	return true
}

// RemoveFile removes the named file from the tree.
func (fs *FileSystem) RemoveFile(path string) bool {
	dir, name, ok := splitDirAndName(path)
	if !ok {
		return false
	}
	resolved, ok := fs.resolveParts(dir)
	if !ok {
		return false
	}
	node := fs.Root.traverse(resolved)
	idx := node.findFile(name)
	if idx < 0 {
		return false
	}
	node.Files = append(node.Files[:idx], node.Files[idx+1:]...)
	return true
}

// AddUpload records an uploaded file at the given path and grows the
// containing directory by its size. Fails if the directory part of the path
// does not exist.
func (fs *FileSystem) AddUpload(path string, fileID uint, size int64) bool {
	dir, name, ok := splitDirAndName(path)
	if !ok {
		return false
	}
	resolved, ok := fs.resolveParts(dir)
	if !ok {
		return false
	}
	node := fs.Root.traverse(resolved)
	node.Size += size
	node.Files = append(node.Files, File{
		Name:      name,
		Size:      size,
		FileID:    &fileID,
		Timestamp: time.Now().Format(TimeLayout),
	})
	return true
}

// Lookup finds the file at the given path. Returns false if the path or the
// file does not exist.
func (fs *FileSystem) Lookup(path string) (*File, bool) {
	dir, name, ok := splitDirAndName(path)
	if !ok {
		return nil, false
	}
	resolved, ok := fs.resolveParts(dir)
	if !ok {
		return nil, false
	}
	node := fs.Root.traverse(resolved)
	idx := node.findFile(name)
	if idx < 0 {
		return nil, false
	}
	return &node.Files[idx], true
}

// RandomTimestamp returns a listing timestamp randomized into the past year.
func RandomTimestamp() string {
	past := time.Duration(rand.Int63n(int64(365 * 24 * time.Hour)))
	return time.Now().Add(-past).Format(TimeLayout)
}
