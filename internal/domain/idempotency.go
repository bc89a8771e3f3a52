// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency records the outcome of a completed form submission keyed by
// the client-supplied Idempotency-Key. A retried POST with the same key is
// answered from this row instead of creating a second application.
type Idempotency struct {
	ID        string    `gorm:"column:id;type:char(36);primaryKey"`
	Key       string    `gorm:"column:idempotency_key;type:varchar(200);not null;uniqueIndex:ux_idempotency_key"`
	UniqueID  string    `gorm:"column:unique_id;type:varchar(100);not null"`
	Status    int       `gorm:"column:status;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Expired reports whether the record can no longer be replayed at now.
func (i Idempotency) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
