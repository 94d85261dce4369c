package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Motasaith/abdulshop-backend/pkg/db/models"
)

// Repository exposes catalog reads and stock adjustments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (*StockLevel, error)
}

// StockLevel reports the remaining stock after a decrement.
type StockLevel struct {
	ProductID uuid.UUID
	StoreID   uuid.UUID
	Name      string
	Remaining int
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a products repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// DecrementStock subtracts qty from count_in_stock, clamping at zero so an
// oversell never leaves a negative count. The update and the read of the
// remaining level happen in one statement to stay safe under concurrency.
func (r *repositoryImpl) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (*StockLevel, error) {
	if qty <= 0 {
		qty = 0
	}

	var level StockLevel
	err := r.db.WithContext(ctx).Raw(`
		UPDATE products
		SET count_in_stock = CASE
				WHEN count_in_stock > ? THEN count_in_stock - ?
				ELSE 0
			END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING id AS product_id, store_id, name, count_in_stock AS remaining
	`, qty, qty, productID).Scan(&level).Error
	if err != nil {
		return nil, err
	}
	if level.ProductID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &level, nil
}
