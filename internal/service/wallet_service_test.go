package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
)

type mockWalletRepo struct {
	mock.Mock
}

func (m *mockWalletRepo) GetOrCreate(ctx context.Context, ownerID uuid.UUID, ownerModel string) (*models.Wallet, error) {
	args := m.Called(ctx, ownerID, ownerModel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletRepo) GetPlatform(ctx context.Context) (*models.Wallet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletRepo) Credit(ctx context.Context, ownerID uuid.UUID, ownerModel string, amount float64) (*models.Wallet, error) {
	args := m.Called(ctx, ownerID, ownerModel, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletRepo) Debit(ctx context.Context, ownerID uuid.UUID, ownerModel string, amount float64) (*models.Wallet, error) {
	args := m.Called(ctx, ownerID, ownerModel, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletRepo) AdminSetBalance(ctx context.Context, walletID uuid.UUID, balance float64) (*models.Wallet, error) {
	args := m.Called(ctx, walletID, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletRepo) ListAll(ctx context.Context, limit, offset int) ([]models.Wallet, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Wallet), args.Error(1)
}

func TestWalletService_GetBalance_CreatesOnFirstUse(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := NewWalletService(repo)
	ctx := context.Background()
	freelancerID := uuid.New()

	wallet := &models.Wallet{ID: uuid.New(), OwnerID: freelancerID, OwnerModel: models.WalletOwnerFreelancer}
	repo.On("GetOrCreate", ctx, freelancerID, models.WalletOwnerFreelancer).Return(wallet, nil)

	got, err := svc.GetBalance(ctx, freelancerID)
	assert.NoError(t, err)
	assert.Equal(t, wallet, got)
	repo.AssertExpectations(t)
}

func TestWalletService_Credit_NonPositiveAmount(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := NewWalletService(repo)

	_, err := svc.Credit(context.Background(), uuid.New(), 0)
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Credit(context.Background(), uuid.New(), -10)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Credit")
}

func TestWalletService_Debit_AllowsNegativeBalance(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := NewWalletService(repo)
	ctx := context.Background()
	freelancerID := uuid.New()

	overdrawn := &models.Wallet{OwnerID: freelancerID, Balance: -50}
	repo.On("Debit", ctx, freelancerID, models.WalletOwnerFreelancer, float64(100)).Return(overdrawn, nil)

	wallet, err := svc.Debit(ctx, freelancerID, 100)
	assert.NoError(t, err)
	assert.Equal(t, float64(-50), wallet.Balance)
}
