// Package store provides the honeypot persistence layer.
//
// This package implements the Store interface for managing honeypot data
// including attackers, credential pairs, their links, and uploaded files.
//
// Two backends are supported:
//   - SQLite (single-node, default)
//   - PostgreSQL
package store

import (
	"context"
	"time"

	"github.com/marmos91/ftpot/pkg/honeypot/models"
	"github.com/marmos91/ftpot/pkg/vfs"
)

// Store provides the honeypot persistence interface.
//
// Thread Safety: Implementations must be safe for concurrent use from multiple
// goroutines.
type Store interface {
	// ============================================
	// ATTACKER OPERATIONS
	// ============================================

	// GetAttackerByIP returns an attacker by source IP.
	// Returns models.ErrAttackerNotFound if the attacker doesn't exist.
	GetAttackerByIP(ctx context.Context, ip string) (*models.Attacker, error)

	// GetAttackerByID returns an attacker by ID.
	// Returns models.ErrAttackerNotFound if the attacker doesn't exist.
	GetAttackerByID(ctx context.Context, id uint) (*models.Attacker, error)

	// CreateAttacker creates a new attacker.
	// Returns models.ErrDuplicateAttacker if one with the same IP exists.
	CreateAttacker(ctx context.Context, attacker *models.Attacker) error

	// IncrementLoginCount adds one to the attacker's login counter.
	// Returns models.ErrAttackerNotFound if the attacker doesn't exist.
	IncrementLoginCount(ctx context.Context, attackerID uint) error

	// BindCredential sets the attacker's bound credential pair.
	// Returns models.ErrAttackerNotFound if the attacker doesn't exist.
	BindCredential(ctx context.Context, attackerID, credentialID uint) error

	// SaveFileSystem persists the attacker's deception filesystem.
	// Returns models.ErrAttackerNotFound if the attacker doesn't exist.
	SaveFileSystem(ctx context.Context, attackerID uint, fs *vfs.FileSystem) error

	// StaleAttackers returns attackers not seen since the given time.
	StaleAttackers(ctx context.Context, olderThan time.Time) ([]*models.Attacker, error)

	// DeleteAttacker deletes an attacker together with its credential links
	// and uploaded file rows.
	// Returns models.ErrAttackerNotFound if the attacker doesn't exist.
	DeleteAttacker(ctx context.Context, id uint) error

	// ============================================
	// CREDENTIAL OPERATIONS
	// ============================================

	// TouchCredential records one use of a username/password pair, creating
	// the row on first sight. Returns the pair with its updated count.
	TouchCredential(ctx context.Context, username, password string) (*models.Credential, error)

	// GetCredential returns a credential pair by username and password.
	// Returns models.ErrCredentialNotFound if the pair doesn't exist.
	GetCredential(ctx context.Context, username, password string) (*models.Credential, error)

	// GetCredentialByID returns a credential pair by ID.
	// Returns models.ErrCredentialNotFound if the pair doesn't exist.
	GetCredentialByID(ctx context.Context, id uint) (*models.Credential, error)

	// LinkCredential records that the attacker tried the pair. Linking the
	// same pair twice is a no-op.
	LinkCredential(ctx context.Context, attackerID, credentialID uint) error

	// LinkExists reports whether the attacker already tried the pair.
	LinkExists(ctx context.Context, attackerID, credentialID uint) (bool, error)

	// ============================================
	// UPLOADED FILE OPERATIONS
	// ============================================

	// CreateUploadedFile records a completed upload.
	CreateUploadedFile(ctx context.Context, file *models.UploadedFile) error

	// GetFileByID returns an uploaded file by ID.
	// Returns models.ErrFileNotFound if the file doesn't exist.
	GetFileByID(ctx context.Context, id uint) (*models.UploadedFile, error)

	// DeleteUploadedFile removes one uploaded file row.
	// Returns models.ErrFileNotFound if the file doesn't exist.
	DeleteUploadedFile(ctx context.Context, id uint) error

	// FilesMissingScan returns uploaded files without a VirusTotal result.
	FilesMissingScan(ctx context.Context) ([]*models.UploadedFile, error)

	// FilesByAttacker returns all uploaded files of one attacker.
	FilesByAttacker(ctx context.Context, attackerID uint) ([]*models.UploadedFile, error)

	// CountFilesByAttacker returns the number of uploads of one attacker.
	CountFilesByAttacker(ctx context.Context, attackerID uint) (int64, error)

	// SetVirusTotalResult stores the scan result for an uploaded file.
	// Returns models.ErrFileNotFound if the file doesn't exist.
	SetVirusTotalResult(ctx context.Context, fileID uint, result string) error

	// Close closes the underlying database connection.
	Close() error
}
