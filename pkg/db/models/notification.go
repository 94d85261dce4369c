package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Motasaith/abdulshop-backend/pkg/enums"
)

// Notification stores in-app notification payloads. StoreID is nil for
// platform-audience notifications (e.g. a new order alert for operators).
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   *uuid.UUID             `gorm:"column:store_id;type:uuid;index"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title     string                 `gorm:"column:title;type:text;not null"`
	Message   string                 `gorm:"column:message;type:text;not null"`
	Data      json.RawMessage        `gorm:"column:data;type:jsonb"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
