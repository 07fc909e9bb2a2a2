// Package login implements the graduated trust policy of the honeypot.
//
// Every PASS attempt is recorded; an attacker is only admitted after
// crossing the configured attempt threshold, and from then on only with the
// credential pair that was in use at the crossing. The delay makes the
// honeypot look brute-forceable rather than open.
package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/ftpot/internal/logger"
	"github.com/marmos91/ftpot/pkg/honeypot/models"
	"github.com/marmos91/ftpot/pkg/metrics"
	"github.com/marmos91/ftpot/pkg/vfs"
)

// defaultSeedCount is how many decoys seed a fresh deception filesystem.
const defaultSeedCount = 15

// Store is the persistence surface the policy needs.
type Store interface {
	GetAttackerByIP(ctx context.Context, ip string) (*models.Attacker, error)
	CreateAttacker(ctx context.Context, attacker *models.Attacker) error
	IncrementLoginCount(ctx context.Context, attackerID uint) error
	BindCredential(ctx context.Context, attackerID, credentialID uint) error
	SaveFileSystem(ctx context.Context, attackerID uint, fs *vfs.FileSystem) error
	TouchCredential(ctx context.Context, username, password string) (*models.Credential, error)
	LinkCredential(ctx context.Context, attackerID, credentialID uint) error
	LinkExists(ctx context.Context, attackerID, credentialID uint) (bool, error)
}

// Seeder provisions on-disk decoys for a freshly admitted attacker.
type Seeder interface {
	SeedDecoys(attackerID uint, count int) ([]vfs.Seed, error)
}

// Service evaluates PASS attempts.
type Service struct {
	store     Store
	seeder    Seeder
	threshold int
	metrics   metrics.FTPMetrics
}

// NewService creates the policy service. threshold is the number of
// attempts required before admission.
func NewService(store Store, seeder Seeder, threshold int, m metrics.FTPMetrics) *Service {
	return &Service{
		store:     store,
		seeder:    seeder,
		threshold: threshold,
		metrics:   m,
	}
}

// Authenticate records one PASS attempt from ip and decides admission.
//
// The attempt always increments the attacker's counter and the credential
// pair's counter, whatever the outcome. The returned attacker reflects the
// state after the attempt; admitted reports whether the session is now
// logged in.
func (s *Service) Authenticate(ctx context.Context, ip, username, password string) (attacker *models.Attacker, admitted bool, err error) {
	metrics.LoginAttempt(s.metrics)

	credential, err := s.store.TouchCredential(ctx, username, password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record credential: %w", err)
	}

	attacker, err = s.store.GetAttackerByIP(ctx, ip)
	if err != nil {
		if !errors.Is(err, models.ErrAttackerNotFound) {
			return nil, false, fmt.Errorf("failed to look up attacker: %w", err)
		}
		attacker, err = s.firstContact(ctx, ip, credential)
		return attacker, false, err
	}

	attempt := attacker.LoginCount + 1

	switch {
	case int(attempt) < s.threshold:
		// Still below the threshold: keep collecting pairs and denying.
		if err := s.store.LinkCredential(ctx, attacker.ID, credential.ID); err != nil {
			return nil, false, fmt.Errorf("failed to link credential: %w", err)
		}
		admitted = false

	case !attacker.IsBound():
		// Threshold reached and no pair bound yet. A pair the attacker
		// already burned on a denial stays denied; a fresh pair wins.
		seen, err := s.store.LinkExists(ctx, attacker.ID, credential.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check credential link: %w", err)
		}
		if seen {
			admitted = false
			break
		}
		if err := s.admit(ctx, attacker, credential); err != nil {
			return nil, false, err
		}
		admitted = true

	default:
		// Bound: only the winning pair works from here on.
		admitted = credential.ID == *attacker.CredentialID
	}

	if err := s.store.IncrementLoginCount(ctx, attacker.ID); err != nil {
		return nil, false, fmt.Errorf("failed to increment login count: %w", err)
	}
	attacker.LoginCount = attempt

	if admitted {
		metrics.LoginAccepted(s.metrics)
		logger.Info("Attacker admitted",
			"ip", ip,
			"attacker_id", attacker.ID,
			"attempts", attacker.LoginCount)
	}

	return attacker, admitted, nil
}

// firstContact registers an unknown IP with its first attempt.
func (s *Service) firstContact(ctx context.Context, ip string, credential *models.Credential) (*models.Attacker, error) {
	attacker := &models.Attacker{
		IP:         ip,
		LoginCount: 1,
	}
	if err := s.store.CreateAttacker(ctx, attacker); err != nil {
		return nil, fmt.Errorf("failed to create attacker: %w", err)
	}
	if err := s.store.LinkCredential(ctx, attacker.ID, credential.ID); err != nil {
		return nil, fmt.Errorf("failed to link credential: %w", err)
	}

	logger.Debug("New attacker registered", "ip", ip, "attacker_id", attacker.ID)
	return attacker, nil
}

// admit provisions the deception filesystem and binds the winning pair.
// Provisioning happens exactly once, here; later logins reuse the stored
// tree. The bind is persisted last: a provisioning failure must leave the
// attacker unbound so the next attempt with the pair can retry admission
// instead of logging in without a filesystem.
func (s *Service) admit(ctx context.Context, attacker *models.Attacker, credential *models.Credential) error {
	seeds, err := s.seeder.SeedDecoys(attacker.ID, defaultSeedCount)
	if err != nil {
		return fmt.Errorf("failed to seed decoys: %w", err)
	}

	fs := vfs.NewDefault(seeds)
	if err := s.store.SaveFileSystem(ctx, attacker.ID, fs); err != nil {
		return fmt.Errorf("failed to persist filesystem: %w", err)
	}

	if err := s.store.BindCredential(ctx, attacker.ID, credential.ID); err != nil {
		return fmt.Errorf("failed to bind credential: %w", err)
	}

	attacker.FileSystem = fs
	attacker.CredentialID = &credential.ID

	return nil
}
