package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Motasaith/abdulshop-backend/pkg/enums"
	"github.com/Motasaith/abdulshop-backend/pkg/types"
)

// Order is the aggregate root for the delivery lifecycle. Status is the
// single source of truth; the nullable timestamps record when each
// transition happened and the paid/shipped/delivered booleans of the API
// are derived from them.
type Order struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	TrackingNumber    string               `gorm:"column:tracking_number;type:text;not null;uniqueIndex"`
	Items             []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress   types.Address        `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod     string               `gorm:"column:payment_method;type:text;not null"`
	ItemsPrice        decimal.Decimal      `gorm:"column:items_price;type:numeric(12,2);not null"`
	TaxPrice          decimal.Decimal      `gorm:"column:tax_price;type:numeric(12,2);not null"`
	ShippingPrice     decimal.Decimal      `gorm:"column:shipping_price;type:numeric(12,2);not null"`
	TotalPrice        decimal.Decimal      `gorm:"column:total_price;type:numeric(12,2);not null"`
	Status            enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'processing'"`
	PaidAt            *time.Time           `gorm:"column:paid_at"`
	ShippedAt         *time.Time           `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time           `gorm:"column:delivered_at"`
	CanceledAt        *time.Time           `gorm:"column:canceled_at"`
	SettledAt         *time.Time           `gorm:"column:settled_at"`
	PaymentResult     *types.PaymentResult `gorm:"column:payment_result;type:jsonb;serializer:json"`
	TrackingInfo      *types.TrackingInfo  `gorm:"column:tracking_info;type:jsonb;serializer:json"`
	EstimatedDelivery *time.Time           `gorm:"column:estimated_delivery"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPaid reports whether payment has been confirmed for the order.
func (o Order) IsPaid() bool {
	return o.PaidAt != nil
}

// IsShipped reports whether the order has left the warehouse.
func (o Order) IsShipped() bool {
	return o.ShippedAt != nil
}

// IsDelivered reports whether the order reached the customer.
func (o Order) IsDelivered() bool {
	return o.DeliveredAt != nil
}

// IsSettled reports whether vendor earnings were already distributed.
func (o Order) IsSettled() bool {
	return o.SettledAt != nil
}
