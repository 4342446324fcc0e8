package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountSnapshot struct {
	ID        uint64          `gorm:"primaryKey"`
	BatchID   uint64          `gorm:"not null;index"`
	ClientID  uint16          `gorm:"not null;index"`
	Available decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Held      decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Total     decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Locked    bool            `gorm:"not null;default:false"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (AccountSnapshot) TableName() string { return "account_snapshot" }
