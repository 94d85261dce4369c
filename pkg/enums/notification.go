package enums

// NotificationType distinguishes in-app notification payloads.
type NotificationType string

const (
	NotificationTypeNewOrder       NotificationType = "new_order"
	NotificationTypeLowStock       NotificationType = "low_stock"
	NotificationTypeOrderShipped   NotificationType = "order_shipped"
	NotificationTypeOrderCancelled NotificationType = "order_cancelled"
)

func (n NotificationType) IsValid() bool {
	switch n {
	case NotificationTypeNewOrder, NotificationTypeLowStock, NotificationTypeOrderShipped, NotificationTypeOrderCancelled:
		return true
	default:
		return false
	}
}

func (n NotificationType) String() string {
	return string(n)
}
