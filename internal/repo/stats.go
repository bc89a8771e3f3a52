// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small metadata queries used for
// conditional responses (ETag generation) in the HTTP layer. Each function
// is context-aware and safe to call from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/isp-onboarding-backend/internal/domain"
)

// ApplicationStamp returns the creation time of the customer with the given
// public identifier, or ErrNotFound. It reads a single column and does not
// touch the dependent tables.
func ApplicationStamp(ctx context.Context, db *gorm.DB, uniqueID string) (time.Time, error) {
	var row struct {
		CreatedAt time.Time
	}
	res := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Select("created_at").
		Where("unique_id = ?", uniqueID).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return time.Time{}, res.Error
	}
	if res.RowsAffected == 0 {
		return time.Time{}, ErrNotFound
	}
	return row.CreatedAt, nil
}

// CountApplications returns the number of stored applications.
func CountApplications(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Customer{}).Count(&n).Error
	return n, err
}
