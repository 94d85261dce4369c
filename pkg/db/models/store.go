package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is a vendor account. WalletBalance accumulates settlement credits;
// nothing in this service debits it.
type Store struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID   uuid.UUID       `gorm:"column:owner_user_id;type:uuid;not null"`
	Name          string          `gorm:"column:name;type:text;not null"`
	WalletBalance decimal.Decimal `gorm:"column:wallet_balance;type:numeric(14,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
