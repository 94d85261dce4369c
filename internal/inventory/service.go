package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/Motasaith/abdulshop-backend/internal/notifications"
	"github.com/Motasaith/abdulshop-backend/internal/products"
	"github.com/Motasaith/abdulshop-backend/pkg/config"
	"github.com/Motasaith/abdulshop-backend/pkg/db/models"
	"github.com/Motasaith/abdulshop-backend/pkg/enums"
	pkgerrors "github.com/Motasaith/abdulshop-backend/pkg/errors"
	"github.com/Motasaith/abdulshop-backend/pkg/logger"
)

// Service applies stock decrements for fulfilled order lines and raises
// low-stock alerts to the owning vendor.
type Service interface {
	DecrementForOrder(ctx context.Context, items []models.OrderItem) error
}

type service struct {
	products products.Repository
	notifier notifications.Service
	logg     *logger.Logger
	cfg      config.InventoryConfig
}

// NewService wires inventory dependencies.
func NewService(repo products.Repository, notifier notifications.Service, logg *logger.Logger, cfg config.InventoryConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{products: repo, notifier: notifier, logg: logg, cfg: cfg}, nil
}

type lowStockPayload struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Remaining int       `json:"remaining"`
}

// DecrementForOrder decrements stock per line item. A failing line is logged
// and skipped so a single bad product reference never blocks the order; the
// order itself is already committed when this runs.
func (s *service) DecrementForOrder(ctx context.Context, items []models.OrderItem) error {
	for _, item := range items {
		if item.ProductID == nil || item.Qty <= 0 {
			continue
		}

		level, err := s.products.DecrementStock(ctx, *item.ProductID, item.Qty)
		if err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"product_id": item.ProductID.String(),
				"qty":        item.Qty,
			}), "stock decrement skipped: "+err.Error())
			continue
		}

		if level.Remaining <= s.cfg.LowStockThreshold {
			s.alertLowStock(ctx, level)
		}
	}
	return nil
}

// alertLowStock fires on every decrement at or below the threshold; the
// vendor sees repeated alerts while stock stays low rather than a single
// easily-missed one.
func (s *service) alertLowStock(ctx context.Context, level *products.StockLevel) {
	storeID := level.StoreID
	err := s.notifier.Notify(ctx, notifications.Note{
		StoreID: &storeID,
		Type:    enums.NotificationTypeLowStock,
		Title:   "Low stock warning",
		Message: level.Name + " is running low",
		Data: lowStockPayload{
			ProductID: level.ProductID,
			Name:      level.Name,
			Remaining: level.Remaining,
		},
	})
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"product_id": level.ProductID.String(),
		}), "low stock alert failed: "+err.Error())
	}
}
