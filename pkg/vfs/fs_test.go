package vfs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTree builds a small fixed tree:
//
//	testroot/
//	├── node1/
//	└── node2/
//	    ├── sub_node_1/
//	    └── sub_node_2/
func testTree() *FileSystem {
	const ts = "Mar 13 19:59"
	dir := func(name string) *Node {
		return &Node{Name: name, Dirs: map[string]*Node{}, Files: []File{}, Timestamp: ts}
	}

	node2 := dir("node2")
	node2.Dirs["sub_node_1"] = dir("sub_node_1")
	node2.Dirs["sub_node_2"] = dir("sub_node_2")

	root := dir("testroot")
	root.Dirs["node1"] = dir("node1")
	root.Dirs["node2"] = node2

	return &FileSystem{Root: root, Path: []string{}}
}

func testFile(name string) File {
	return File{Name: name, Size: 0, Timestamp: "Mar 13 19:59"}
}

func TestCd(t *testing.T) {
	t.Run("to child", func(t *testing.T) {
		tree := testTree()
		assert.True(t, tree.Cd("node1"))
		assert.Equal(t, []string{"node1"}, tree.Path)
	})

	t.Run("to parent in root", func(t *testing.T) {
		tree := testTree()
		assert.True(t, tree.Cd("../"))
		assert.Empty(t, tree.Path)
	})

	t.Run("to parent in child", func(t *testing.T) {
		tree := testTree()
		tree.Cd("node1")
		assert.True(t, tree.Cd("../"))
		assert.Empty(t, tree.Path)
	})

	t.Run("to parent in middle of path", func(t *testing.T) {
		tree := testTree()
		assert.True(t, tree.Cd("node1/../node2/sub_node_1"))
		assert.Equal(t, []string{"node2", "sub_node_1"}, tree.Path)
	})

	t.Run("to parent several times", func(t *testing.T) {
		tree := testTree()
		assert.True(t, tree.Cd("../../../../../../"))
		assert.Empty(t, tree.Path)
	})

	t.Run("to invalid dir", func(t *testing.T) {
		tree := testTree()
		assert.False(t, tree.Cd("invalid_dir"))
	})

	t.Run("keeps old path if invalid", func(t *testing.T) {
		tree := testTree()
		tree.Cd("node1/")
		assert.False(t, tree.Cd("../node2/sub_node_1/invalid_dir"))
		assert.Equal(t, []string{"node1"}, tree.Path)
	})

	t.Run("absolute path resets to root", func(t *testing.T) {
		tree := testTree()
		tree.Cd("node2")
		assert.True(t, tree.Cd("/node1"))
		assert.Equal(t, []string{"node1"}, tree.Path)
	})
}

func TestList(t *testing.T) {
	t.Run("in root", func(t *testing.T) {
		tree := testTree()
		assert.Equal(t, "node1\r\nnode2", tree.List())
	})

	t.Run("in sub node", func(t *testing.T) {
		tree := testTree()
		tree.Cd("node2")
		assert.Equal(t, "sub_node_1\r\nsub_node_2", tree.List())
	})

	t.Run("with files", func(t *testing.T) {
		tree := testTree()
		tree.Root.Files = append(tree.Root.Files, testFile("atestfile.txt"), testFile("ztesting.yaml"))
		assert.Equal(t, "node1\r\nnode2\r\natestfile.txt\r\nztesting.yaml", tree.List())
	})

	t.Run("in empty dir", func(t *testing.T) {
		tree := testTree()
		tree.Cd("node1")
		assert.Equal(t, "", tree.List())
	})
}

func TestListLong(t *testing.T) {
	t.Run("in root", func(t *testing.T) {
		tree := testTree()
		want := "drwxr-sr-x\t1 1001\t1001\t\t0 Mar 13 19:59 node1\r\n" +
			"drwxr-sr-x\t1 1001\t1001\t\t0 Mar 13 19:59 node2"
		assert.Equal(t, want, tree.ListLong(1))
	})

	t.Run("in sub node", func(t *testing.T) {
		tree := testTree()
		tree.Cd("node2")
		want := "drwxr-sr-x\t1 1001\t1001\t\t0 Mar 13 19:59 sub_node_1\r\n" +
			"drwxr-sr-x\t1 1001\t1001\t\t0 Mar 13 19:59 sub_node_2"
		assert.Equal(t, want, tree.ListLong(1))
	})

	t.Run("with files", func(t *testing.T) {
		tree := testTree()
		tree.Root.Files = append(tree.Root.Files, testFile("atestfile.txt"), testFile("ztesting.yaml"))

		want := "drwxr-sr-x\t1 1001\t1001\t\t0 Mar 13 19:59 node1\r\n" +
			"drwxr-sr-x\t1 1001\t1001\t\t0 Mar 13 19:59 node2\r\n" +
			"-rw-r--r--\t1 1001\t1001\t\t0 Mar 13 19:59 atestfile.txt\r\n" +
			"-rw-r--r--\t1 1001\t1001\t\t0 Mar 13 19:59 ztesting.yaml"
		assert.Equal(t, want, tree.ListLong(1))

		got, ok := tree.ListLongAt(1, "")
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("in empty dir", func(t *testing.T) {
		tree := testTree()
		tree.Cd("node1")
		assert.Equal(t, "", tree.ListLong(1))
	})

	t.Run("at sub node", func(t *testing.T) {
		tree := testTree()
		want := "drwxr-sr-x\t1 1001\t1001\t\t0 Mar 13 19:59 sub_node_1\r\n" +
			"drwxr-sr-x\t1 1001\t1001\t\t0 Mar 13 19:59 sub_node_2"
		got, ok := tree.ListLongAt(1, "node2")
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("at invalid path", func(t *testing.T) {
		tree := testTree()
		_, ok := tree.ListLongAt(1, "missing")
		assert.False(t, ok)
	})
}

func TestListLongAll(t *testing.T) {
	tree := testTree()
	tree.Cd("node1")

	want := "drwxr-sr-x\t1 1001\t1001\t\t0 Mar 16 21:23 .\r\n" +
		"drwxr-sr-x\t1 1001\t1001\t\t0 Mar 13 19:59 ..\r\n"
	assert.Equal(t, want, tree.ListLongAll(1))
}

func TestMkdir(t *testing.T) {
	t.Run("in cwd", func(t *testing.T) {
		tree := testTree()
		assert.True(t, tree.Mkdir("newdir"))
		assert.True(t, tree.Cd("newdir"))
	})

	t.Run("with path", func(t *testing.T) {
		tree := testTree()
		assert.True(t, tree.Mkdir("node2/newdir"))
		assert.True(t, tree.Cd("node2/newdir"))
	})

	t.Run("existing dir fails", func(t *testing.T) {
		tree := testTree()
		assert.False(t, tree.Mkdir("node1"))
	})

	t.Run("missing parent fails", func(t *testing.T) {
		tree := testTree()
		assert.False(t, tree.Mkdir("missing/newdir"))
	})

	t.Run("empty name fails", func(t *testing.T) {
		tree := testTree()
		assert.False(t, tree.Mkdir(""))
	})
}

func TestRmdir(t *testing.T) {
	t.Run("empty dir", func(t *testing.T) {
		tree := testTree()
		assert.True(t, tree.Rmdir("node1"))
		assert.False(t, tree.Cd("node1"))
	})

	t.Run("non-empty dir fails", func(t *testing.T) {
		tree := testTree()
		assert.False(t, tree.Rmdir("node2"))
	})

	t.Run("dir with files fails", func(t *testing.T) {
		tree := testTree()
		tree.Root.Dirs["node1"].Files = append(tree.Root.Dirs["node1"].Files, testFile("keep.txt"))
		assert.False(t, tree.Rmdir("node1"))
	})

	t.Run("missing dir fails", func(t *testing.T) {
		tree := testTree()
		assert.False(t, tree.Rmdir("missing"))
	})
}

func TestFiles(t *testing.T) {
	t.Run("add and lookup upload", func(t *testing.T) {
		tree := testTree()
		assert.True(t, tree.AddUpload("node1/evil.exe", 42, 1337))

		f, ok := tree.Lookup("node1/evil.exe")
		require.True(t, ok)
		assert.True(t, f.IsUpload())
		assert.Equal(t, uint(42), *f.FileID)
		assert.Equal(t, int64(1337), f.Size)
		assert.Equal(t, int64(1337), tree.Root.Dirs["node1"].Size)
	})

	t.Run("add to missing dir fails", func(t *testing.T) {
		tree := testTree()
		assert.False(t, tree.AddUpload("missing/evil.exe", 1, 1))
	})

	t.Run("remove file", func(t *testing.T) {
		tree := testTree()
		tree.AddUpload("evil.exe", 1, 1)
		assert.True(t, tree.RemoveFile("evil.exe"))
		_, ok := tree.Lookup("evil.exe")
		assert.False(t, ok)
	})

	t.Run("remove missing file fails", func(t *testing.T) {
		tree := testTree()
		assert.False(t, tree.RemoveFile("nope.txt"))
	})
}

func TestNewDefault(t *testing.T) {
	seeds := make([]Seed, 15)
	for i := range seeds {
		seeds[i] = Seed{
			Path: "/tmp/honeypot/1/file" + string(rune('a'+i)),
			Name: "file" + string(rune('a'+i)),
			Size: int64(i * 100),
		}
	}

	fs := NewDefault(seeds)

	// Directories first, then the one decoy placed in root
	assert.Equal(t, "documents\r\npictures\r\nfilen", fs.List())
	assert.True(t, fs.Cd("documents"))
	assert.True(t, fs.Cd("invoices"))
	assert.True(t, fs.Cd("/documents/private"))
	assert.Len(t, fs.current().Files, 4)

	fs.ClearPath()
	require.Len(t, fs.current().Files, 1)
	assert.True(t, fs.current().Files[0].IsDecoy())
}

func TestFileSystemRoundTripsThroughJSON(t *testing.T) {
	tree := testTree()
	tree.AddUpload("node1/evil.exe", 7, 99)
	tree.Cd("node2")

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded FileSystem
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, tree.Path, decoded.Path)
	f, ok := decoded.Lookup("/node1/evil.exe")
	require.True(t, ok)
	assert.Equal(t, uint(7), *f.FileID)
}
