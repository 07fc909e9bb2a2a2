// Package files manages the on-disk side of the honeypot: per-attacker
// upload directories, decoy seeding, and synthesized download content.
package files

import (
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/marmos91/ftpot/internal/logger"
	"github.com/marmos91/ftpot/pkg/config"
	"github.com/marmos91/ftpot/pkg/vfs"
)

// uploadNameLength is the length of generated on-disk upload names.
const uploadNameLength = 7

const alphanumerics = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Manager owns the physical file layout under the configured base path,
// one subdirectory per attacker.
type Manager struct {
	baseSavePath     string
	defaultFilesPath string
	uploadLimit      int
	sizeLimitBytes   int64
}

// NewManager creates a Manager from the file management configuration.
func NewManager(cfg config.FilesConfig) *Manager {
	return &Manager{
		baseSavePath:     cfg.BaseSavePath,
		defaultFilesPath: cfg.DefaultFilesPath,
		uploadLimit:      cfg.UploadLimit,
		sizeLimitBytes:   int64(cfg.SizeLimitGB) * 1024 * 1024 * 1024,
	}
}

// UploadLimit returns the maximum number of uploads per attacker.
func (m *Manager) UploadLimit() int {
	return m.uploadLimit
}

// AttackerDir returns the directory of one attacker's files.
func (m *Manager) AttackerDir(attackerID uint) string {
	return filepath.Join(m.baseSavePath, fmt.Sprintf("%d", attackerID))
}

// ensureAttackerDir creates the attacker's directory if missing.
func (m *Manager) ensureAttackerDir(attackerID uint) (string, error) {
	dir := m.AttackerDir(attackerID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create attacker directory: %w", err)
	}
	return dir, nil
}

// MirrorDir creates the named directory under the attacker's directory,
// mirroring an MKD from the deception tree onto the real filesystem.
func (m *Manager) MirrorDir(attackerID uint, name string) error {
	dir, err := m.ensureAttackerDir(attackerID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, name), 0755); err != nil {
		return fmt.Errorf("failed to mirror directory: %w", err)
	}
	return nil
}

// randomName returns a random alphanumeric on-disk name.
func randomName() string {
	name := make([]byte, uploadNameLength)
	for i := range name {
		name[i] = alphanumerics[rand.Intn(len(alphanumerics))]
	}
	return string(name)
}

// SaveUpload drains r to a fresh file under the attacker's directory,
// hashing the received bytes. Content beyond the configured size limit is
// not written.
//
// Returns the on-disk path, the hex SHA-256 of the stored bytes, and the
// stored size. The caller decides whether the blob is kept or deleted.
func (m *Manager) SaveUpload(attackerID uint, r io.Reader) (path string, hash string, size int64, err error) {
	dir, err := m.ensureAttackerDir(attackerID)
	if err != nil {
		return "", "", 0, err
	}

	path = filepath.Join(dir, randomName())
	f, err := os.Create(path)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}

	digest := sha256.New()
	size, err = io.Copy(f, io.TeeReader(io.LimitReader(r, m.sizeLimitBytes), digest))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", "", 0, fmt.Errorf("failed to store upload: %w", err)
	}

	return path, hex.EncodeToString(digest.Sum(nil)), size, nil
}

// Synthesize writes a file of random content and the given size under the
// attacker's directory. Used to serve RETR for uploads whose content was
// not kept; the caller deletes the file after the transfer.
func (m *Manager) Synthesize(attackerID uint, size int64) (string, error) {
	dir, err := m.ensureAttackerDir(attackerID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, randomName())
	logger.Debug("Synthesizing download content", "path", path, "size", size)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create synthesized file: %w", err)
	}

	buf := make([]byte, 1024)
	remaining := size
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := crand.Read(buf[:n]); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to generate content: %w", err)
		}
		if _, err := f.Write(buf[:n]); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to write synthesized file: %w", err)
		}
		remaining -= n
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close synthesized file: %w", err)
	}
	return path, nil
}

// SeedDecoys copies count randomly chosen files from the decoy directory
// into the attacker's directory and returns them as tree seeds. Fewer seeds
// are returned when the decoy directory holds fewer files.
func (m *Manager) SeedDecoys(attackerID uint, count int) ([]vfs.Seed, error) {
	dir, err := m.ensureAttackerDir(attackerID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(m.defaultFilesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoy directory: %w", err)
	}

	candidates := make([]os.DirEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			candidates = append(candidates, e)
		}
	}

	seeds := make([]vfs.Seed, 0, count)
	for i := 0; i < count && len(candidates) > 0; i++ {
		pos := rand.Intn(len(candidates))
		src := candidates[pos]
		candidates = append(candidates[:pos], candidates[pos+1:]...)

		dst := filepath.Join(dir, src.Name())
		size, err := copyFile(filepath.Join(m.defaultFilesPath, src.Name()), dst)
		if err != nil {
			return nil, fmt.Errorf("failed to copy decoy %s: %w", src.Name(), err)
		}

		seeds = append(seeds, vfs.Seed{
			Path: dst,
			Name: src.Name(),
			Size: size,
		})
	}

	return seeds, nil
}

// Delete removes one file. Missing files are not an error.
func (m *Manager) Delete(path string) error {
	logger.Debug("Deleting file", "path", path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// copyFile copies src to dst and returns the number of bytes copied.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	size, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return size, err
}
