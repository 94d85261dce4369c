package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Motasaith/abdulshop-backend/pkg/enums"
)

// User is the account row this service reads for ownership checks and
// order emails. Registration and credentials live elsewhere.
type User struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name      string     `gorm:"column:name;type:text;not null"`
	Role      enums.Role `gorm:"column:role;type:text;not null;default:'customer'"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
