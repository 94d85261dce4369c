package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Motasaith/abdulshop-backend/pkg/db/models"
	"github.com/Motasaith/abdulshop-backend/pkg/enums"
	"github.com/Motasaith/abdulshop-backend/pkg/pagination"
	"github.com/Motasaith/abdulshop-backend/pkg/types"
)

// Repository exposes persistence for the order aggregate. All lifecycle
// mutations are guarded conditional updates: the WHERE clause encodes the
// expected current state and RowsAffected tells the caller whether this
// request won the transition.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error)
	MarkPaid(ctx context.Context, id uuid.UUID, now time.Time, result *types.PaymentResult) (bool, error)
	MarkShipped(ctx context.Context, id uuid.UUID, now time.Time, info *types.TrackingInfo, estimated *time.Time) (bool, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	MarkSettled(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listOrdersParams struct {
	UserID *uuid.UUID
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tracking_number = ?", trackingNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if len(orders) > normalized {
		next := orders[normalized]
		orders = orders[:normalized]
		return orders, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return orders, nil, nil
}

// MarkPaid records payment exactly once. The paid_at IS NULL guard makes a
// retried confirmation a no-op rather than a second settlement trigger.
func (r *repositoryImpl) MarkPaid(ctx context.Context, id uuid.UUID, now time.Time, result *types.PaymentResult) (bool, error) {
	updates := map[string]any{"paid_at": now}
	if result != nil {
		updates["payment_result"] = result
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND paid_at IS NULL", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkShipped moves processing -> shipped. Shipping an unpaid order is
// allowed: fulfillment and payment confirmation can race in either direction.
func (r *repositoryImpl) MarkShipped(ctx context.Context, id uuid.UUID, now time.Time, info *types.TrackingInfo, estimated *time.Time) (bool, error) {
	updates := map[string]any{
		"status":     enums.OrderStatusShipped,
		"shipped_at": now,
	}
	if info != nil {
		updates["tracking_info"] = info
	}
	if estimated != nil {
		updates["estimated_delivery"] = estimated
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusProcessing).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) MarkDelivered(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusShipped).
		Updates(map[string]any{
			"status":       enums.OrderStatusDelivered,
			"delivered_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Cancel succeeds only from processing. A concurrent ship and cancel cannot
// both win: whichever UPDATE matches the status first takes the row.
func (r *repositoryImpl) Cancel(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusProcessing).
		Updates(map[string]any{
			"status":      enums.OrderStatusCancelled,
			"canceled_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkSettled claims the settlement marker. Exactly one caller per order
// observes true; everyone else sees a spent marker.
func (r *repositoryImpl) MarkSettled(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE orders
		SET settled_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND settled_at IS NULL
	`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
