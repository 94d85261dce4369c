package wallets

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Motasaith/abdulshop-backend/pkg/db/models"
)

// Repository exposes vendor wallet balance operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Credit(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal) error
	Balance(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a wallets repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Credit adds amount to the store wallet in a single statement so concurrent
// settlements never lose an increment.
func (r *repositoryImpl) Credit(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stores
		SET wallet_balance = wallet_balance + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, amount, storeID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) Balance(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Select("wallet_balance").Where("id = ?", storeID).First(&store).Error; err != nil {
		return decimal.Zero, err
	}
	return store.WalletBalance, nil
}
