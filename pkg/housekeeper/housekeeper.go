// Package housekeeper runs the periodic maintenance loop of the honeypot:
// VirusTotal enrichment of uploaded files and purging of stale attackers.
package housekeeper

import (
	"context"
	"time"

	"github.com/marmos91/ftpot/internal/logger"
	"github.com/marmos91/ftpot/pkg/config"
	"github.com/marmos91/ftpot/pkg/honeypot/models"
)

// Store is the persistence surface the maintenance passes need.
type Store interface {
	FilesMissingScan(ctx context.Context) ([]*models.UploadedFile, error)
	SetVirusTotalResult(ctx context.Context, fileID uint, result string) error
	GetAttackerByID(ctx context.Context, id uint) (*models.Attacker, error)
	StaleAttackers(ctx context.Context, olderThan time.Time) ([]*models.Attacker, error)
	FilesByAttacker(ctx context.Context, attackerID uint) ([]*models.UploadedFile, error)
	DeleteAttacker(ctx context.Context, id uint) error
}

// Scanner looks up file hashes against a reputation service.
type Scanner interface {
	Enabled() bool
	Check(ctx context.Context, hash string) (result string, rateLimited bool, err error)
}

// Emitter reports enriched uploads to the collector.
type Emitter interface {
	EmitFile(srcIP, fname, hash string, size int64)
}

// Deleter removes purged files from disk.
type Deleter interface {
	Delete(path string) error
}

// Housekeeper performs the two maintenance passes on a fixed interval.
type Housekeeper struct {
	store      Store
	scanner    Scanner
	emitter    Emitter
	deleter    Deleter
	cfg        config.HousekeeperConfig
	uploadReal bool
}

// New creates a housekeeper. scanner and emitter may be nil when the
// corresponding integration is not configured.
func New(store Store, scanner Scanner, emitter Emitter, deleter Deleter, cfg config.HousekeeperConfig, uploadReal bool) *Housekeeper {
	return &Housekeeper{
		store:      store,
		scanner:    scanner,
		emitter:    emitter,
		deleter:    deleter,
		cfg:        cfg,
		uploadReal: uploadReal,
	}
}

// Run ticks until the context is cancelled.
func (h *Housekeeper) Run(ctx context.Context) {
	logger.Info("Housekeeper started",
		"interval", h.cfg.Interval,
		"retention", h.cfg.RetentionPeriod)

	ticker := time.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Housekeeper stopped")
			return
		case <-ticker.C:
			h.RunOnce(ctx)
		}
	}
}

// RunOnce performs one maintenance run: enrichment first, then the purge.
func (h *Housekeeper) RunOnce(ctx context.Context) {
	h.enrich(ctx)
	h.purge(ctx)
}

// enrich looks up every unscanned upload against the reputation service.
// A rate-limit response defers the remaining files to the next run.
func (h *Housekeeper) enrich(ctx context.Context) {
	if h.scanner == nil || !h.scanner.Enabled() {
		return
	}

	pending, err := h.store.FilesMissingScan(ctx)
	if err != nil {
		logger.Error("Failed to list unscanned files", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	logger.Debug("Scanning uploaded files", "count", len(pending))

	for _, file := range pending {
		result, rateLimited, err := h.scanner.Check(ctx, file.Hash)
		if err != nil {
			logger.Warn("Reputation lookup failed", "file_id", file.ID, "error", err)
			continue
		}
		if rateLimited {
			logger.Info("Reputation service rate limit hit, deferring remaining files")
			return
		}

		if err := h.store.SetVirusTotalResult(ctx, file.ID, result); err != nil {
			logger.Error("Failed to persist scan result", "file_id", file.ID, "error", err)
			continue
		}

		h.emitFileEvent(ctx, file, result)
	}
}

// emitFileEvent reports one enriched upload. The attacker may have been
// purged since the upload; the event still goes out.
func (h *Housekeeper) emitFileEvent(ctx context.Context, file *models.UploadedFile, result string) {
	if h.emitter == nil {
		return
	}

	ip := "IP not found!"
	if attacker, err := h.store.GetAttackerByID(ctx, file.AttackerID); err == nil {
		ip = attacker.IP
	}

	h.emitter.EmitFile(ip, file.Filename, file.Hash+" | "+result, file.Size)
}

// purge deletes attackers not seen within the retention period, together
// with their uploads. On-disk blobs are removed only when real uploads are
// kept.
func (h *Housekeeper) purge(ctx context.Context) {
	cutoff := time.Now().Add(-h.cfg.RetentionPeriod)

	stale, err := h.store.StaleAttackers(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to list stale attackers", "error", err)
		return
	}

	for _, attacker := range stale {
		if h.uploadReal {
			h.deleteAttackerFiles(ctx, attacker.ID)
		}

		if err := h.store.DeleteAttacker(ctx, attacker.ID); err != nil {
			logger.Error("Failed to purge attacker", "attacker_id", attacker.ID, "error", err)
			continue
		}

		logger.Info("Purged stale attacker", "attacker_id", attacker.ID, "ip", attacker.IP)
	}
}

func (h *Housekeeper) deleteAttackerFiles(ctx context.Context, attackerID uint) {
	uploads, err := h.store.FilesByAttacker(ctx, attackerID)
	if err != nil {
		logger.Error("Failed to list attacker files", "attacker_id", attackerID, "error", err)
		return
	}

	for _, upload := range uploads {
		if upload.Location == nil {
			continue
		}
		if err := h.deleter.Delete(*upload.Location); err != nil {
			logger.Warn("Failed to delete purged file", "path", *upload.Location, "error", err)
		}
	}
}
