package wallets

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Motasaith/abdulshop-backend/pkg/db/models"
)

func setupWalletsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stores := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  owner_user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  wallet_balance NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(stores).Error)
	return db
}

func seedStore(t *testing.T, db *gorm.DB) *models.Store {
	t.Helper()

	store := &models.Store{
		ID:            uuid.New(),
		OwnerUserID:   uuid.New(),
		Name:          "Vendor",
		WalletBalance: decimal.Zero,
	}
	require.NoError(t, db.Create(store).Error)
	return store
}

func TestCreditAccumulates(t *testing.T) {
	db := setupWalletsTestDB(t)
	repo := NewRepository(db)
	store := seedStore(t, db)

	require.NoError(t, repo.Credit(context.Background(), store.ID, decimal.RequireFromString("28.5")))
	require.NoError(t, repo.Credit(context.Background(), store.ID, decimal.RequireFromString("47.5")))

	balance, err := repo.Balance(context.Background(), store.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(76)), "got %s", balance)
}

func TestCreditZeroIsNoOp(t *testing.T) {
	db := setupWalletsTestDB(t)
	repo := NewRepository(db)
	store := seedStore(t, db)

	require.NoError(t, repo.Credit(context.Background(), store.ID, decimal.Zero))

	balance, err := repo.Balance(context.Background(), store.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestCreditUnknownStore(t *testing.T) {
	db := setupWalletsTestDB(t)
	repo := NewRepository(db)

	err := repo.Credit(context.Background(), uuid.New(), decimal.NewFromInt(5))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBalanceUnknownStore(t *testing.T) {
	db := setupWalletsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.Balance(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
