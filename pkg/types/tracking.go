package types

import "time"

// TrackingInfo stores carrier details attached when an order ships.
type TrackingInfo struct {
	Number  string `json:"number"`
	Carrier string `json:"carrier,omitempty"`
	URL     string `json:"url,omitempty"`
}

// PaymentResult records gateway confirmation metadata for a paid order.
// Verifying the gateway payload is the webhook layer's job, not ours.
type PaymentResult struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status,omitempty"`
	PayerEmail    string `json:"payer_email,omitempty"`
}

// TimelineEntry is a single milestone in the public tracking projection.
type TimelineEntry struct {
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Completed   bool      `json:"completed"`
	Estimated   bool      `json:"estimated,omitempty"`
	Carrier     string    `json:"carrier,omitempty"`
	TrackingURL string    `json:"tracking_url,omitempty"`
}
