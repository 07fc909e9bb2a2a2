package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marmos91/ftpot/pkg/honeypot/models"
	"github.com/marmos91/ftpot/pkg/vfs"
)

// ============================================
// ATTACKER OPERATIONS
// ============================================

func (s *GORMStore) GetAttackerByIP(ctx context.Context, ip string) (*models.Attacker, error) {
	return getByField[models.Attacker](s.db, ctx, "ip", ip, models.ErrAttackerNotFound, "Credential")
}

func (s *GORMStore) GetAttackerByID(ctx context.Context, id uint) (*models.Attacker, error) {
	return getByField[models.Attacker](s.db, ctx, "id", id, models.ErrAttackerNotFound, "Credential")
}

func (s *GORMStore) CreateAttacker(ctx context.Context, attacker *models.Attacker) error {
	if err := s.db.WithContext(ctx).Create(attacker).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.ErrDuplicateAttacker
		}
		return err
	}
	return nil
}

func (s *GORMStore) IncrementLoginCount(ctx context.Context, attackerID uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.Attacker{}).
		Where("id = ?", attackerID).
		Update("login_count", gorm.Expr("login_count + 1"))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrAttackerNotFound
	}
	return nil
}

func (s *GORMStore) BindCredential(ctx context.Context, attackerID, credentialID uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.Attacker{}).
		Where("id = ?", attackerID).
		Update("credential_id", credentialID)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrAttackerNotFound
	}
	return nil
}

// SaveFileSystem writes one attacker's deception tree as a JSON blob. The
// column update bypasses the model serializer, so the tree is marshaled
// here; reads go through the serializer tag and unmarshal transparently.
func (s *GORMStore) SaveFileSystem(ctx context.Context, attackerID uint, fs *vfs.FileSystem) error {
	blob, err := json.Marshal(fs)
	if err != nil {
		return fmt.Errorf("failed to serialize filesystem: %w", err)
	}

	result := s.db.WithContext(ctx).
		Model(&models.Attacker{}).
		Where("id = ?", attackerID).
		Update("file_system", string(blob))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrAttackerNotFound
	}
	return nil
}

func (s *GORMStore) StaleAttackers(ctx context.Context, olderThan time.Time) ([]*models.Attacker, error) {
	return listWhere[models.Attacker](s.db, ctx, "updated_at < ?", olderThan)
}

func (s *GORMStore) DeleteAttacker(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attacker models.Attacker
		if err := tx.Where("id = ?", id).First(&attacker).Error; err != nil {
			return convertNotFoundError(err, models.ErrAttackerNotFound)
		}

		// Delete credential links
		if err := tx.Where("attacker_id = ?", attacker.ID).Delete(&models.AttackerCredential{}).Error; err != nil {
			return err
		}

		// Delete uploaded file rows
		if err := tx.Where("attacker_id = ?", attacker.ID).Delete(&models.UploadedFile{}).Error; err != nil {
			return err
		}

		// Delete attacker
		if err := tx.Delete(&attacker).Error; err != nil {
			return err
		}

		return nil
	})
}
