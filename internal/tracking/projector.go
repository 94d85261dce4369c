package tracking

import (
	"time"

	"github.com/Motasaith/abdulshop-backend/pkg/db/models"
	"github.com/Motasaith/abdulshop-backend/pkg/types"
)

const (
	// outForDeliveryAfter is how long after shipment an order is inferred to
	// be on a delivery vehicle. Inferred, not recorded: carriers do not feed
	// events back into this system.
	outForDeliveryAfter = 24 * time.Hour
	// defaultDeliveryWindow estimates delivery when the order carries no
	// explicit estimated_delivery date.
	defaultDeliveryWindow = 72 * time.Hour
)

// Project derives the customer-facing milestone timeline from an order
// snapshot. It is a pure function of (order, now): no stored state, no side
// effects, identical output for identical inputs.
func Project(order models.Order, now time.Time) []types.TimelineEntry {
	timeline := []types.TimelineEntry{
		{
			Status:      "Order Placed",
			Description: "Your order has been received",
			Date:        order.CreatedAt,
			Completed:   true,
		},
	}

	if order.PaidAt != nil {
		timeline = append(timeline,
			types.TimelineEntry{
				Status:      "Payment Confirmed",
				Description: "Payment received",
				Date:        *order.PaidAt,
				Completed:   true,
			},
			types.TimelineEntry{
				Status:      "Processing",
				Description: "Your order is being prepared",
				Date:        *order.PaidAt,
				Completed:   true,
			},
		)
	}

	if order.ShippedAt != nil {
		shipped := types.TimelineEntry{
			Status:      "Shipped",
			Description: "Your order is on its way",
			Date:        *order.ShippedAt,
			Completed:   true,
		}
		if order.TrackingInfo != nil {
			shipped.Carrier = order.TrackingInfo.Carrier
			shipped.TrackingURL = order.TrackingInfo.URL
		}
		timeline = append(timeline, shipped)

		if order.DeliveredAt == nil && now.Sub(*order.ShippedAt) > outForDeliveryAfter {
			timeline = append(timeline, types.TimelineEntry{
				Status:      "Out for Delivery",
				Description: "Your order is out for delivery",
				Date:        order.ShippedAt.Add(outForDeliveryAfter),
				Completed:   true,
			})
		}
	}

	if order.DeliveredAt != nil {
		timeline = append(timeline, types.TimelineEntry{
			Status:      "Delivered",
			Description: "Your order has been delivered",
			Date:        *order.DeliveredAt,
			Completed:   true,
		})
		return timeline
	}

	if order.CanceledAt != nil {
		timeline = append(timeline, types.TimelineEntry{
			Status:      "Cancelled",
			Description: "Your order was cancelled",
			Date:        *order.CanceledAt,
			Completed:   true,
		})
		return timeline
	}

	if expected, ok := expectedDelivery(order); ok {
		timeline = append(timeline, types.TimelineEntry{
			Status:      "Expected Delivery",
			Description: "Estimated delivery date",
			Date:        expected,
			Completed:   false,
			Estimated:   true,
		})
	}

	return timeline
}

func expectedDelivery(order models.Order) (time.Time, bool) {
	if order.EstimatedDelivery != nil {
		return *order.EstimatedDelivery, true
	}
	if order.ShippedAt != nil {
		return order.ShippedAt.Add(defaultDeliveryWindow), true
	}
	return time.Time{}, false
}
