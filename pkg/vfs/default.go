package vfs

// Seed describes a decoy copied onto disk for a new attacker. Path is the
// location of the copy on the real filesystem.
type Seed struct {
	Path string
	Name string
	Size int64
}

// toFiles converts seeds into tree entries with randomized timestamps.
func toFiles(seeds []Seed) []File {
	files := make([]File, 0, len(seeds))
	for _, s := range seeds {
		path := s.Path
		files = append(files, File{
			Name:        s.Name,
			Size:        s.Size,
			Timestamp:   RandomTimestamp(),
			DefaultFile: &path,
		})
	}
	return files
}

// slice returns files[lo:hi] clamped to the available range, so a short seed
// list degrades to emptier directories instead of failing.
func slice(files []File, lo, hi int) []File {
	if lo > len(files) {
		lo = len(files)
	}
	if hi > len(files) {
		hi = len(files)
	}
	return append([]File{}, files[lo:hi]...)
}

// NewDefault builds the default skeleton a freshly admitted attacker sees:
//
//	/
//	├── pictures/
//	└── documents/
//	    ├── invoices/
//	    └── private/
//
// with the seeded decoys spread over the directories. Expects 15 seeds; fewer
// produce a sparser tree.
func NewDefault(seeds []Seed) *FileSystem {
	files := toFiles(seeds)

	pictures := &Node{
		Name:      "pictures",
		Dirs:      map[string]*Node{},
		Files:     slice(files, 0, 1),
		Timestamp: RandomTimestamp(),
	}
	invoices := &Node{
		Name:      "invoices",
		Dirs:      map[string]*Node{},
		Files:     slice(files, 2, 4),
		Timestamp: RandomTimestamp(),
	}
	private := &Node{
		Name:      "private",
		Dirs:      map[string]*Node{},
		Files:     slice(files, 5, 9),
		Timestamp: RandomTimestamp(),
	}
	documents := &Node{
		Name: "documents",
		Dirs: map[string]*Node{
			"invoices": invoices,
			"private":  private,
		},
		Files:     slice(files, 10, 13),
		Timestamp: RandomTimestamp(),
	}
	root := &Node{
		Name: "root",
		Dirs: map[string]*Node{
			"pictures":  pictures,
			"documents": documents,
		},
		Files:     slice(files, 13, 14),
		Timestamp: RandomTimestamp(),
	}

	return &FileSystem{Root: root, Path: []string{}}
}
