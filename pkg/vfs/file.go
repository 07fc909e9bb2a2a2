package vfs

// TimeLayout is the timestamp layout used in directory listings,
// e.g. "Mar 13 19:59".
const TimeLayout = "Jan 02 15:04"

// File is a leaf entry in the deception tree.
//
// Exactly one of FileID and DefaultFile is set: FileID references an
// uploaded_files row for content the attacker stored, DefaultFile points at
// the decoy copy on disk that seeded the tree.
type File struct {
	Name        string  `json:"name"`
	Size        int64   `json:"size"`
	FileID      *uint   `json:"file_id"`
	Timestamp   string  `json:"timestamp"`
	DefaultFile *string `json:"default_file"`
}

// IsDecoy reports whether the file is backed by a seeded decoy on disk.
func (f *File) IsDecoy() bool {
	return f.DefaultFile != nil
}

// IsUpload reports whether the file was stored by the attacker.
func (f *File) IsUpload() bool {
	return f.FileID != nil
}
