package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/Motasaith/abdulshop-backend/internal/products"
	"github.com/Motasaith/abdulshop-backend/internal/wallets"
	"github.com/Motasaith/abdulshop-backend/pkg/config"
	"github.com/Motasaith/abdulshop-backend/pkg/db/models"
	pkgerrors "github.com/Motasaith/abdulshop-backend/pkg/errors"
	"github.com/Motasaith/abdulshop-backend/pkg/logger"
)

// Marker flips the order's settled flag exactly once. The flip must be an
// atomic check-and-set so a retried payment confirmation can never distribute
// twice.
type Marker interface {
	MarkSettled(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// Service distributes vendor earnings for a paid order.
type Service interface {
	Distribute(ctx context.Context, order *models.Order) error
}

type service struct {
	marker   Marker
	products products.Repository
	wallets  wallets.Repository
	logg     *logger.Logger
	rate     decimal.Decimal
}

// NewService wires settlement dependencies. The commission rate comes from
// config and is validated once at construction.
func NewService(marker Marker, productRepo products.Repository, walletRepo wallets.Repository, logg *logger.Logger, cfg config.SettlementConfig) (Service, error) {
	if marker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settlement marker required")
	}
	if productRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	if walletRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "wallets repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	rate, err := cfg.Rate()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "commission rate")
	}
	return &service{
		marker:   marker,
		products: productRepo,
		wallets:  walletRepo,
		logg:     logg,
		rate:     rate,
	}, nil
}

type vendorEarning struct {
	StoreID uuid.UUID
	Amount  decimal.Decimal
}

// Distribute credits each vendor's wallet with its share of the order, minus
// platform commission. The settled marker is claimed before any crediting:
// if another call already claimed it this is a no-op. Credit failures are
// logged per vendor with the owed amount for manual reconciliation and the
// order's payment state is never reverted.
func (s *service) Distribute(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	claimed, err := s.marker.MarkSettled(ctx, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim settlement marker")
	}
	if !claimed {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order already settled, skipping distribution")
		return nil
	}

	earnings, err := s.computeEarnings(ctx, order.Items)
	if err != nil {
		return err
	}

	var failures error
	for _, earning := range earnings {
		if err := s.wallets.Credit(ctx, earning.StoreID, earning.Amount); err != nil {
			s.logg.Error(s.logg.WithFields(ctx, map[string]any{
				"order_id": order.ID.String(),
				"store_id": earning.StoreID.String(),
				"amount":   earning.Amount.String(),
			}), "vendor credit failed, manual reconciliation required", err)
			failures = multierr.Append(failures, err)
		}
	}
	if failures != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, failures, "distribute vendor earnings")
	}
	return nil
}

// computeEarnings aggregates net earnings per vendor in order of first
// appearance. Lines whose product no longer resolves to an owner are skipped:
// a deleted product earns nobody anything.
func (s *service) computeEarnings(ctx context.Context, items []models.OrderItem) ([]vendorEarning, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.ProductID != nil {
			ids = append(ids, *item.ProductID)
		}
	}
	owners, err := s.ownersByProduct(ctx, ids)
	if err != nil {
		return nil, err
	}

	multiplier := decimal.NewFromInt(1).Sub(s.rate)
	totals := make(map[uuid.UUID]decimal.Decimal)
	var sequence []uuid.UUID
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		storeID, ok := owners[*item.ProductID]
		if !ok {
			continue
		}
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Qty)))
		earning := lineTotal.Mul(multiplier)
		if _, seen := totals[storeID]; !seen {
			sequence = append(sequence, storeID)
		}
		totals[storeID] = totals[storeID].Add(earning)
	}

	earnings := make([]vendorEarning, 0, len(sequence))
	for _, storeID := range sequence {
		earnings = append(earnings, vendorEarning{
			StoreID: storeID,
			Amount:  totals[storeID].Round(2),
		})
	}
	return earnings, nil
}

func (s *service) ownersByProduct(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product owners")
	}
	owners := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, row := range rows {
		owners[row.ID] = row.StoreID
	}
	return owners, nil
}
