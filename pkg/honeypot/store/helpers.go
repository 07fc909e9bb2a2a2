package store

import (
	"context"

	"gorm.io/gorm"
)

// getByField retrieves a single record of type T by matching field=value.
// It applies optional GORM Preload clauses and converts gorm.ErrRecordNotFound
// to the provided notFoundErr for consistent domain error mapping.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error, preloads ...string) (*T, error) {
	var result T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// listWhere retrieves all records of type T matching the query.
// Returns an empty slice (not nil) on success with no records.
func listWhere[T any](db *gorm.DB, ctx context.Context, query string, args ...any) ([]*T, error) {
	results := []*T{}
	if err := db.WithContext(ctx).Where(query, args...).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
