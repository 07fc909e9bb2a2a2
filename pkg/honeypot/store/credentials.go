package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marmos91/ftpot/pkg/honeypot/models"
)

// ============================================
// CREDENTIAL OPERATIONS
// ============================================

func (s *GORMStore) TouchCredential(ctx context.Context, username, password string) (*models.Credential, error) {
	var credential models.Credential
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(models.Credential{Username: username, Password: password}).
			FirstOrCreate(&credential).Error; err != nil {
			return err
		}

		if err := tx.
			Model(&credential).
			Update("count", gorm.Expr("count + 1")).Error; err != nil {
			return err
		}

		return tx.First(&credential, credential.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

func (s *GORMStore) GetCredential(ctx context.Context, username, password string) (*models.Credential, error) {
	var credential models.Credential
	err := s.db.WithContext(ctx).
		Where("username = ? AND password = ?", username, password).
		First(&credential).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrCredentialNotFound)
	}
	return &credential, nil
}

func (s *GORMStore) GetCredentialByID(ctx context.Context, id uint) (*models.Credential, error) {
	return getByField[models.Credential](s.db, ctx, "id", id, models.ErrCredentialNotFound)
}

func (s *GORMStore) LinkCredential(ctx context.Context, attackerID, credentialID uint) error {
	link := models.AttackerCredential{
		AttackerID:   attackerID,
		CredentialID: credentialID,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
}

func (s *GORMStore) LinkExists(ctx context.Context, attackerID, credentialID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.AttackerCredential{}).
		Where("attacker_id = ? AND credential_id = ?", attackerID, credentialID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
