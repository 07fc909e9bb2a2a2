package store

import (
	"context"

	"github.com/marmos91/ftpot/pkg/honeypot/models"
)

// ============================================
// UPLOADED FILE OPERATIONS
// ============================================

func (s *GORMStore) CreateUploadedFile(ctx context.Context, file *models.UploadedFile) error {
	return s.db.WithContext(ctx).Create(file).Error
}

func (s *GORMStore) GetFileByID(ctx context.Context, id uint) (*models.UploadedFile, error) {
	return getByField[models.UploadedFile](s.db, ctx, "id", id, models.ErrFileNotFound)
}

func (s *GORMStore) FilesMissingScan(ctx context.Context) ([]*models.UploadedFile, error) {
	return listWhere[models.UploadedFile](s.db, ctx, "virus_total_result IS NULL")
}

func (s *GORMStore) FilesByAttacker(ctx context.Context, attackerID uint) ([]*models.UploadedFile, error) {
	return listWhere[models.UploadedFile](s.db, ctx, "attacker_id = ?", attackerID)
}

func (s *GORMStore) CountFilesByAttacker(ctx context.Context, attackerID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.UploadedFile{}).
		Where("attacker_id = ?", attackerID).
		Count(&count).Error
	return count, err
}

func (s *GORMStore) DeleteUploadedFile(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.UploadedFile{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrFileNotFound
	}
	return nil
}

func (s *GORMStore) SetVirusTotalResult(ctx context.Context, fileID uint, result string) error {
	res := s.db.WithContext(ctx).
		Model(&models.UploadedFile{}).
		Where("id = ?", fileID).
		Update("virus_total_result", result)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrFileNotFound
	}
	return nil
}
