package models

import "time"

// DeleteReceipt records a processed delete by its idempotency key.
// Replaying a delete with a known key is a no-op success, so retries
// after a lost response can never corrupt state.
type DeleteReceipt struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"not null;uniqueIndex:idx_user_idempotency_key"`
	IdempotencyKey string `gorm:"size:64;not null;uniqueIndex:idx_user_idempotency_key"`
	Resource       string `gorm:"size:32;not null"`
	RecordID       uint
	CreatedAt      time.Time
}
