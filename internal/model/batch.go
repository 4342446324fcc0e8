package model

import "time"

// Batch status values.
const (
	BatchSettled  = "SETTLED"
	BatchRejected = "REJECTED"
)

type SettlementBatch struct {
	ID          uint64    `gorm:"primaryKey"`
	Status      string    `gorm:"size:32;not null"`
	RecordCount int       `gorm:"not null"`
	Diagnostic  *string   `gorm:"size:256"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (SettlementBatch) TableName() string { return "settlement_batch" }
