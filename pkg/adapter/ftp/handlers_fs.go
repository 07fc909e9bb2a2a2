package ftp

import (
	"context"
	"fmt"
	"regexp"

	"github.com/marmos91/ftpot/internal/logger"
	"github.com/marmos91/ftpot/pkg/honeypot/models"
	"github.com/marmos91/ftpot/pkg/metrics"
	"github.com/marmos91/ftpot/pkg/vfs"
)

// listAllPattern matches LIST arguments that request hidden entries, like
// "-a", "-la" or "-al".
var listAllPattern = regexp.MustCompile(`-.*a.*`)

func (s *Session) handleCwd(request Request) bool {
	if !s.authenticated() {
		return s.denyAccess()
	}

	logger.Debug("Attacker changing directory",
		"session_id", s.id,
		"attacker_id", s.attacker.ID,
		"path", request.Arg)

	if !s.fs().Cd(request.Arg) {
		return s.reply(codeActionFailed, "Failed to change directory.")
	}
	return s.reply(codeActionOK, "Directory successfully changed.")
}

func (s *Session) handlePwd() bool {
	if !s.authenticated() {
		return s.denyAccess()
	}
	return s.reply(codePathname, fmt.Sprintf("%q is the current directory", s.fs().Pwd()))
}

// handleMkd creates a directory in the deception tree and, when real
// uploads are kept, mirrors it on disk.
func (s *Session) handleMkd(ctx context.Context, request Request) bool {
	if !s.authenticated() {
		return s.denyAccess()
	}

	if !s.fs().Mkdir(request.Arg) {
		return s.reply(codeActionFailed, "Create directory operation failed.")
	}
	if !s.persistFS(ctx) {
		return false
	}

	if s.adapter.filesCfg.UploadReal {
		if err := s.adapter.deps.Files.MirrorDir(s.attacker.ID, request.Arg); err != nil {
			logger.Warn("Failed to mirror directory on disk",
				"attacker_id", s.attacker.ID,
				"dir", request.Arg,
				"error", err)
		}
	}

	logger.Info("Attacker created directory",
		"session_id", s.id,
		"attacker_id", s.attacker.ID,
		"dir", request.Arg)
	return s.reply(codePathname, "Create directory operation successful.")
}

// handleRmd removes an empty directory from the deception tree.
func (s *Session) handleRmd(ctx context.Context, request Request) bool {
	if !s.authenticated() {
		return s.denyAccess()
	}

	if !s.fs().Rmdir(request.Arg) {
		return s.reply(codeActionFailed, "Directory not removed.")
	}
	if !s.persistFS(ctx) {
		return false
	}
	return s.reply(codeActionOK, "Directory removed.")
}

// handleList writes a long listing over the data channel. A path argument
// lists that directory, a flag argument matching "-a" includes the
// synthetic dot entries, no argument lists the working directory.
func (s *Session) handleList(ctx context.Context, request Request) bool {
	if !s.authenticated() {
		return s.denyAccess()
	}

	var listing string
	switch {
	case listAllPattern.MatchString(request.Arg):
		listing = s.fs().ListLongAll(s.attacker.ID)
	case request.Arg != "":
		// An unknown path produces an empty listing, not an error.
		listing, _ = s.fs().ListLongAt(s.attacker.ID, request.Arg)
	default:
		listing = s.fs().ListLong(s.attacker.ID)
	}

	if !s.reply(codeDataOpen, "Here comes the directory listing.") {
		return false
	}

	data, err := s.openDataChannel(ctx)
	if err != nil {
		logger.Debug("Failed to open data channel", "session_id", s.id, "error", err)
		return true
	}

	if listing != "" {
		if _, err := data.Write([]byte(listing + "\r\n")); err != nil {
			logger.Debug("Data channel write failed", "session_id", s.id, "error", err)
			_ = data.Close()
			return true
		}
	}
	_ = data.Close()

	return s.reply(codeTransferDone, "Directory send OK.")
}

// handleDele removes a file from the deception tree and, when real uploads
// are kept, the physical copy behind it.
func (s *Session) handleDele(ctx context.Context, request Request) bool {
	if !s.authenticated() {
		return s.denyAccess()
	}

	logger.Info("Attacker deleting file",
		"session_id", s.id,
		"attacker_id", s.attacker.ID,
		"path", request.Arg)

	file, found := s.fs().Lookup(request.Arg)
	if !found || !s.fs().RemoveFile(request.Arg) {
		return s.reply(codeActionFailed, "File not removed.")
	}
	if !s.persistFS(ctx) {
		return false
	}

	if s.adapter.filesCfg.UploadReal {
		if path, ok := s.physicalPathOf(ctx, file); ok {
			if err := s.adapter.deps.Files.Delete(path); err != nil {
				logger.Warn("Failed to delete physical file", "path", path, "error", err)
			}
		}
	}

	return s.reply(codeActionOK, "File removed.")
}

// physicalPathOf returns the on-disk location behind a tree entry, if any.
func (s *Session) physicalPathOf(ctx context.Context, file *vfs.File) (string, bool) {
	switch {
	case file.IsDecoy():
		return *file.DefaultFile, true
	case file.IsUpload():
		row, err := s.adapter.deps.Store.GetFileByID(ctx, *file.FileID)
		if err != nil || row.Location == nil {
			return "", false
		}
		return *row.Location, true
	}
	return "", false
}

// handleRetr streams a file to the client. Uploads whose blob was discarded
// are served as freshly synthesized random content of the recorded size,
// deleted again after the transfer.
func (s *Session) handleRetr(ctx context.Context, request Request) bool {
	if !s.authenticated() {
		return s.denyAccess()
	}

	data, err := s.openDataChannel(ctx)
	if err != nil {
		logger.Debug("Failed to open data channel", "session_id", s.id, "error", err)
		return s.reply(codeActionFailed, "Failed")
	}
	defer func() { _ = data.Close() }()

	file, found := s.fs().Lookup(request.Arg)
	if !found {
		return s.reply(codeActionFailed, "Failed")
	}

	path, synthesized, ok := s.resolveContent(ctx, file)
	if !ok {
		return s.reply(codeActionFailed, "Failed")
	}

	if !s.reply(codeDataOpen, "Sending data") {
		return false
	}

	streamErr := streamFile(data, path)

	if synthesized {
		if err := s.adapter.deps.Files.Delete(path); err != nil {
			logger.Warn("Failed to delete synthesized file", "path", path, "error", err)
		}
	}

	if streamErr != nil {
		logger.Debug("Data transfer failed", "session_id", s.id, "error", streamErr)
		return true
	}

	logger.Info("Attacker downloaded file",
		"session_id", s.id,
		"attacker_id", s.attacker.ID,
		"path", request.Arg)
	return s.reply(codeTransferDone, "Transfer complete.")
}

// resolveContent finds or fabricates the on-disk content for a tree entry.
func (s *Session) resolveContent(ctx context.Context, file *vfs.File) (path string, synthesized bool, ok bool) {
	if file.IsDecoy() {
		return *file.DefaultFile, false, true
	}
	if !file.IsUpload() {
		return "", false, false
	}

	if s.adapter.filesCfg.CanBeDownloaded {
		row, err := s.adapter.deps.Store.GetFileByID(ctx, *file.FileID)
		if err == nil && row.Location != nil {
			return *row.Location, false, true
		}
	}

	path, err := s.adapter.deps.Files.Synthesize(s.attacker.ID, file.Size)
	if err != nil {
		logger.Error("Failed to synthesize download",
			"attacker_id", s.attacker.ID,
			"error", err)
		return "", false, false
	}
	return path, true, true
}

// handleStor receives an upload, hashes it, and records it both as an
// uploaded_files row and as a tree entry. The blob is discarded after
// hashing unless real uploads are kept.
func (s *Session) handleStor(ctx context.Context, request Request) bool {
	if !s.authenticated() {
		return s.denyAccess()
	}

	count, err := s.adapter.deps.Store.CountFilesByAttacker(ctx, s.attacker.ID)
	if err != nil {
		logger.Error("Failed to count uploads", "attacker_id", s.attacker.ID, "error", err)
		return false
	}
	if count >= int64(s.adapter.deps.Files.UploadLimit()) {
		logger.Info("Upload limit reached", "attacker_id", s.attacker.ID, "ip", s.ip)
		return s.reply(codeActionFailed, "Failed")
	}

	data, err := s.openDataChannel(ctx)
	if err != nil {
		logger.Debug("Failed to open data channel", "session_id", s.id, "error", err)
		return s.reply(codeActionFailed, "Failed")
	}

	if !s.reply(codeDataOpen, "Ready to receive data") {
		_ = data.Close()
		return false
	}

	path, hash, size, err := s.adapter.deps.Files.SaveUpload(s.attacker.ID, data)
	_ = data.Close()
	if err != nil {
		logger.Error("Failed to store upload", "attacker_id", s.attacker.ID, "error", err)
		return s.reply(codeActionFailed, "Failed")
	}

	row := &models.UploadedFile{
		AttackerID: s.attacker.ID,
		Filename:   request.Arg,
		Hash:       hash,
		Size:       size,
	}
	if s.adapter.filesCfg.UploadReal {
		row.Location = &path
	}

	if err := s.adapter.deps.Store.CreateUploadedFile(ctx, row); err != nil {
		logger.Error("Failed to record upload", "attacker_id", s.attacker.ID, "error", err)
		return false
	}

	if !s.fs().AddUpload(request.Arg, row.ID, size) {
		// No tree entry means the housekeeper must not enrich this row
		if err := s.adapter.deps.Store.DeleteUploadedFile(ctx, row.ID); err != nil {
			logger.Warn("Failed to remove orphaned upload record", "file_id", row.ID, "error", err)
		}
		_ = s.adapter.deps.Files.Delete(path)
		return s.reply(codeActionFailed, "Failed")
	}
	if !s.persistFS(ctx) {
		return false
	}

	if !s.adapter.filesCfg.UploadReal {
		if err := s.adapter.deps.Files.Delete(path); err != nil {
			logger.Warn("Failed to discard upload blob", "path", path, "error", err)
		}
	}

	metrics.FileUploaded(s.adapter.deps.Metrics)
	logger.Info("Attacker uploaded file",
		"session_id", s.id,
		"attacker_id", s.attacker.ID,
		"filename", request.Arg,
		"size", size,
		"hash", hash)
	return s.reply(codeTransferDone, "Transfer complete.")
}
