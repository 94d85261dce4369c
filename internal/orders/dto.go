package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Motasaith/abdulshop-backend/pkg/db/models"
	"github.com/Motasaith/abdulshop-backend/pkg/enums"
	"github.com/Motasaith/abdulshop-backend/pkg/types"
)

// OrderDTO is the API view of an order. The is_* booleans are projections of
// the transition timestamps, never stored separately.
type OrderDTO struct {
	ID                uuid.UUID            `json:"id"`
	UserID            uuid.UUID            `json:"user_id"`
	TrackingNumber    string               `json:"tracking_number"`
	Items             []OrderItemDTO       `json:"items"`
	ShippingAddress   types.Address        `json:"shipping_address"`
	PaymentMethod     string               `json:"payment_method"`
	ItemsPrice        decimal.Decimal      `json:"items_price"`
	TaxPrice          decimal.Decimal      `json:"tax_price"`
	ShippingPrice     decimal.Decimal      `json:"shipping_price"`
	TotalPrice        decimal.Decimal      `json:"total_price"`
	Status            enums.OrderStatus    `json:"status"`
	IsPaid            bool                 `json:"is_paid"`
	PaidAt            *time.Time           `json:"paid_at,omitempty"`
	IsShipped         bool                 `json:"is_shipped"`
	ShippedAt         *time.Time           `json:"shipped_at,omitempty"`
	IsDelivered       bool                 `json:"is_delivered"`
	DeliveredAt       *time.Time           `json:"delivered_at,omitempty"`
	CanceledAt        *time.Time           `json:"canceled_at,omitempty"`
	PaymentResult     *types.PaymentResult `json:"payment_result,omitempty"`
	TrackingInfo      *types.TrackingInfo  `json:"tracking_info,omitempty"`
	EstimatedDelivery *time.Time           `json:"estimated_delivery,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
}

// OrderItemDTO is a single order line with its creation-time snapshots.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

// TrackingView is the public, sanitized tracking response: the lifecycle
// timeline plus the customer's own totals, nothing vendor-facing.
type TrackingView struct {
	TrackingNumber    string                `json:"tracking_number"`
	Status            enums.OrderStatus     `json:"status"`
	TotalPrice        decimal.Decimal       `json:"total_price"`
	EstimatedDelivery *time.Time            `json:"estimated_delivery,omitempty"`
	Timeline          []types.TimelineEntry `json:"timeline"`
}

func toOrderDTO(order *models.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Qty:       item.Qty,
		})
	}
	return &OrderDTO{
		ID:                order.ID,
		UserID:            order.UserID,
		TrackingNumber:    order.TrackingNumber,
		Items:             items,
		ShippingAddress:   order.ShippingAddress,
		PaymentMethod:     order.PaymentMethod,
		ItemsPrice:        order.ItemsPrice,
		TaxPrice:          order.TaxPrice,
		ShippingPrice:     order.ShippingPrice,
		TotalPrice:        order.TotalPrice,
		Status:            order.Status,
		IsPaid:            order.IsPaid(),
		PaidAt:            order.PaidAt,
		IsShipped:         order.IsShipped(),
		ShippedAt:         order.ShippedAt,
		IsDelivered:       order.IsDelivered(),
		DeliveredAt:       order.DeliveredAt,
		CanceledAt:        order.CanceledAt,
		PaymentResult:     order.PaymentResult,
		TrackingInfo:      order.TrackingInfo,
		EstimatedDelivery: order.EstimatedDelivery,
		CreatedAt:         order.CreatedAt,
	}
}
