package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
)

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *mockCartRepo) GetHistory(ctx context.Context, userID uuid.UUID) ([]models.CartHistoryEntry, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.CartHistoryEntry), args.Error(1)
}

func (m *mockCartRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockCartRepo) SetPlatformFee(ctx context.Context, fee float64) error {
	args := m.Called(ctx, fee)
	return args.Error(0)
}

func (m *mockCartRepo) GetPlatformFee(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockCartRepo) Checkout(ctx context.Context, userID uuid.UUID, paymentMethod string, succeed bool) (*models.CartHistoryEntry, []models.Transaction, error) {
	args := m.Called(ctx, userID, paymentMethod, succeed)
	var entry *models.CartHistoryEntry
	if args.Get(0) != nil {
		entry = args.Get(0).(*models.CartHistoryEntry)
	}
	var transactions []models.Transaction
	if args.Get(1) != nil {
		transactions = args.Get(1).([]models.Transaction)
	}
	return entry, transactions, args.Error(2)
}

func (m *mockCartRepo) RetryFailedCheckout(ctx context.Context, userID uuid.UUID, paymentMethod string) (*models.CartHistoryEntry, []models.Transaction, error) {
	args := m.Called(ctx, userID, paymentMethod)
	var entry *models.CartHistoryEntry
	if args.Get(0) != nil {
		entry = args.Get(0).(*models.CartHistoryEntry)
	}
	var transactions []models.Transaction
	if args.Get(1) != nil {
		transactions = args.Get(1).([]models.Transaction)
	}
	return entry, transactions, args.Error(2)
}

func TestCartService_GetCurrent_EmptyCart(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("GetByUserID", ctx, userID).Return(nil, repository.ErrCartNotFound)
	repo.On("GetPlatformFee", ctx).Return(float64(5), nil)

	cart, err := svc.GetCurrent(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	assert.Equal(t, float64(0), cart.Subtotal)
	assert.Equal(t, float64(5), cart.PlatformFee)
	assert.Equal(t, float64(5), cart.Total)
}

func TestCartService_GetCurrent_TotalIsSubtotalPlusFee(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)
	ctx := context.Background()
	userID := uuid.New()

	stored := &models.Cart{UserID: userID, Subtotal: 200, PlatformFee: 5, Total: 205}
	repo.On("GetByUserID", ctx, userID).Return(stored, nil)

	cart, err := svc.GetCurrent(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, cart.Subtotal+cart.PlatformFee, cart.Total)
}

func TestCartService_Checkout_Success(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)
	ctx := context.Background()
	userID := uuid.New()

	entry := &models.CartHistoryEntry{ID: uuid.New(), Total: 205}
	transactions := []models.Transaction{{ID: uuid.New(), Status: models.TransactionStatusSuccess}}
	repo.On("Checkout", ctx, userID, models.PaymentMethodCard, true).Return(entry, transactions, nil)

	result, err := svc.Checkout(ctx, userID, "", "")
	assert.NoError(t, err)
	assert.Equal(t, entry, result.HistoryEntry)
	assert.Len(t, result.Transactions, 1)
	repo.AssertExpectations(t)
}

func TestCartService_Checkout_FailedPayment(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)
	ctx := context.Background()
	userID := uuid.New()

	failed := []models.Transaction{{ID: uuid.New(), Status: models.TransactionStatusFailed}}
	repo.On("Checkout", ctx, userID, models.PaymentMethodCard, false).Return(nil, failed, repository.ErrPaymentFailed)

	_, err := svc.Checkout(ctx, userID, "", models.TransactionStatusFailed)
	assert.ErrorIs(t, err, apperror.ErrPaymentFailed)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 402, appErr.HTTPStatus)
}

func TestCartService_Checkout_EmptyCart(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Checkout", ctx, userID, models.PaymentMethodCard, true).Return(nil, nil, repository.ErrCartEmpty)

	_, err := svc.Checkout(ctx, userID, "", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "корзина пуста")
}

func TestCartService_Checkout_InvalidPaymentStatus(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)

	_, err := svc.Checkout(context.Background(), uuid.New(), "", "maybe")
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Checkout")
}

func TestCartService_Checkout_InvalidPaymentMethod(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)

	_, err := svc.Checkout(context.Background(), uuid.New(), "cash", "")
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Checkout")
}

func TestCartService_RetryFailedCheckout_NothingToRetry(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("RetryFailedCheckout", ctx, userID, models.PaymentMethodCard).Return(nil, nil, repository.ErrNoFailedPayments)

	_, err := svc.RetryFailedCheckout(ctx, userID, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет неуспешных платежей")
}

func TestCartService_RetryFailedCheckout_Success(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)
	ctx := context.Background()
	userID := uuid.New()

	entry := &models.CartHistoryEntry{ID: uuid.New(), Total: 135}
	transactions := []models.Transaction{{ID: uuid.New(), Type: models.TransactionTypeRetryUserPayment}}
	repo.On("RetryFailedCheckout", ctx, userID, models.PaymentMethodPaypal).Return(entry, transactions, nil)

	result, err := svc.RetryFailedCheckout(ctx, userID, models.PaymentMethodPaypal)
	assert.NoError(t, err)
	assert.Equal(t, entry, result.HistoryEntry)
	assert.Equal(t, models.TransactionTypeRetryUserPayment, result.Transactions[0].Type)
}

func TestCartService_SetPlatformFee_Negative(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)

	err := svc.SetPlatformFee(context.Background(), -1)
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "SetPlatformFee")
}

func TestCartService_SetPlatformFee_Zero(t *testing.T) {
	repo := new(mockCartRepo)
	svc := NewCartService(repo)
	ctx := context.Background()

	repo.On("SetPlatformFee", ctx, float64(0)).Return(nil)

	err := svc.SetPlatformFee(ctx, 0)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
