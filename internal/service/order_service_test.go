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

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, order *models.Order, addonIDs []uuid.UUID) error {
	args := m.Called(ctx, order, addonIDs)
	return args.Error(0)
}

func (m *mockOrderRepo) UpdateAddOns(ctx context.Context, orderID uuid.UUID, addonIDs []uuid.UUID, newPrice float64) error {
	args := m.Called(ctx, orderID, addonIDs, newPrice)
	return args.Error(0)
}

func (m *mockOrderRepo) Start(ctx context.Context, orderID, freelancerID uuid.UUID, creditOnStart bool) (*models.Order, error) {
	args := m.Called(ctx, orderID, freelancerID, creditOnStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) End(ctx context.Context, orderID, freelancerID uuid.UUID, paymentMethod string, literal bool) (*models.Order, *models.Transaction, error) {
	args := m.Called(ctx, orderID, freelancerID, paymentMethod, literal)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Order), args.Get(1).(*models.Transaction), args.Error(2)
}

func (m *mockOrderRepo) Delete(ctx context.Context, orderID, userID uuid.UUID) error {
	args := m.Called(ctx, orderID, userID)
	return args.Error(0)
}

func (m *mockOrderRepo) Rate(ctx context.Context, orderID, userID uuid.UUID, value int, comment *string) (*models.Rating, error) {
	args := m.Called(ctx, orderID, userID, value, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, freelancerID, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) HasActiveOrder(ctx context.Context, freelancerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, freelancerID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) ListRatingsByService(ctx context.Context, serviceID uuid.UUID) ([]models.Rating, error) {
	args := m.Called(ctx, serviceID)
	return args.Get(0).([]models.Rating), args.Error(1)
}

type mockServiceResolver struct {
	mock.Mock
}

func (m *mockServiceResolver) GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *mockServiceResolver) ResolveAddOns(ctx context.Context, ids []uuid.UUID) ([]models.AddOn, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AddOn), args.Error(1)
}

func approvedService(freelancerID uuid.UUID, price float64) *models.Service {
	return &models.Service{
		ID:           uuid.New(),
		FreelancerID: freelancerID,
		Price:        price,
		IsApproved:   true,
	}
}

func TestOrderService_Create_PriceIncludesAddOns(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	userID := uuid.New()
	freelancerID := uuid.New()
	srv := approvedService(freelancerID, 100)
	addonIDs := []uuid.UUID{uuid.New(), uuid.New()}
	addons := []models.AddOn{
		{ID: addonIDs[0], ServiceID: srv.ID, Price: 25},
		{ID: addonIDs[1], ServiceID: srv.ID, Price: 10},
	}

	catalog.On("GetServiceByID", ctx, srv.ID).Return(srv, nil)
	catalog.On("ResolveAddOns", ctx, addonIDs).Return(addons, nil)
	repo.On("HasActiveOrder", ctx, freelancerID).Return(false, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Order"), addonIDs).Return(nil)

	order, err := svc.Create(ctx, userID, srv.ID, addonIDs)
	assert.NoError(t, err)
	assert.Equal(t, float64(135), order.OrderPrice)
	assert.Equal(t, freelancerID, order.FreelancerID)
	repo.AssertExpectations(t)
}

func TestOrderService_Create_BusyFreelancer(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	freelancerID := uuid.New()
	srv := approvedService(freelancerID, 100)

	catalog.On("GetServiceByID", ctx, srv.ID).Return(srv, nil)
	repo.On("HasActiveOrder", ctx, freelancerID).Return(true, nil)

	_, err := svc.Create(ctx, uuid.New(), srv.ID, nil)
	assert.ErrorIs(t, err, apperror.ErrFreelancerBusy)
	repo.AssertNotCalled(t, "Create")
}

func TestOrderService_Create_UnapprovedServiceHidden(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	srv := approvedService(uuid.New(), 100)
	srv.IsApproved = false
	catalog.On("GetServiceByID", ctx, srv.ID).Return(srv, nil)

	_, err := svc.Create(ctx, uuid.New(), srv.ID, nil)
	assert.ErrorIs(t, err, apperror.ErrServiceNotFound)
	repo.AssertNotCalled(t, "Create")
}

func TestOrderService_Create_ForeignAddOnRejected(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	srv := approvedService(uuid.New(), 100)
	addonID := uuid.New()
	foreign := []models.AddOn{{ID: addonID, ServiceID: uuid.New(), Price: 25}}

	catalog.On("GetServiceByID", ctx, srv.ID).Return(srv, nil)
	repo.On("HasActiveOrder", ctx, srv.FreelancerID).Return(false, nil)
	catalog.On("ResolveAddOns", ctx, []uuid.UUID{addonID}).Return(foreign, nil)

	_, err := svc.Create(ctx, uuid.New(), srv.ID, []uuid.UUID{addonID})
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create")
}

func TestOrderService_Start_BusyFreelancer(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	freelancerID := uuid.New()
	repo.On("HasActiveOrder", ctx, freelancerID).Return(true, nil)

	_, err := svc.Start(ctx, freelancerID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrFreelancerBusy)
	repo.AssertNotCalled(t, "Start")
}

func TestOrderService_Start_RaceLostMapsToConflict(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	freelancerID := uuid.New()
	orderID := uuid.New()
	repo.On("HasActiveOrder", ctx, freelancerID).Return(false, nil)
	repo.On("Start", ctx, orderID, freelancerID, true).Return(nil, repository.ErrFreelancerBusy)

	_, err := svc.Start(ctx, freelancerID, orderID)
	assert.ErrorIs(t, err, apperror.ErrFreelancerBusy)
}

func TestOrderService_Start_PassesSettlementMode(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, false)
	ctx := context.Background()

	freelancerID := uuid.New()
	orderID := uuid.New()
	started := &models.Order{ID: orderID, Status: models.OrderStatusInProgress}

	repo.On("HasActiveOrder", ctx, freelancerID).Return(false, nil)
	repo.On("Start", ctx, orderID, freelancerID, false).Return(started, nil)

	order, err := svc.Start(ctx, freelancerID, orderID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, order.Status)
	repo.AssertExpectations(t)
}

func TestOrderService_UpdateAddOns_NotPending(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	userID := uuid.New()
	order := &models.Order{ID: uuid.New(), UserID: userID, Status: models.OrderStatusInProgress}
	repo.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.UpdateAddOns(ctx, userID, order.ID, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "уже в работе")
	repo.AssertNotCalled(t, "UpdateAddOns")
}

func TestOrderService_End_DefaultsPaymentMethod(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	freelancerID := uuid.New()
	orderID := uuid.New()
	completed := &models.Order{ID: orderID, Status: models.OrderStatusCompleted}
	payout := &models.Transaction{ID: uuid.New(), Amount: 135}

	repo.On("End", ctx, orderID, freelancerID, models.PaymentMethodCard, true).Return(completed, payout, nil)

	order, tx, err := svc.End(ctx, freelancerID, orderID, "")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.Equal(t, payout, tx)
}

func TestOrderService_End_InvalidPaymentMethod(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)

	_, _, err := svc.End(context.Background(), uuid.New(), uuid.New(), "bitcoin")
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "End")
}

func TestOrderService_Delete_NotPending(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	userID := uuid.New()
	orderID := uuid.New()
	repo.On("Delete", ctx, orderID, userID).Return(repository.ErrOrderNotPending)

	err := svc.Delete(ctx, userID, orderID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pending")
}

func TestOrderService_Rate_InvalidValue(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)

	_, err := svc.Rate(context.Background(), uuid.New(), uuid.New(), 6, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Rate")
}

func TestOrderService_Rate_AlreadyRated(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	userID := uuid.New()
	orderID := uuid.New()
	repo.On("Rate", ctx, orderID, userID, 5, (*string)(nil)).Return(nil, repository.ErrOrderAlreadyRated)

	_, err := svc.Rate(ctx, userID, orderID, 5, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestOrderService_Get_StrangerForbidden(t *testing.T) {
	repo := new(mockOrderRepo)
	catalog := new(mockServiceResolver)
	svc := NewOrderService(repo, catalog, true)
	ctx := context.Background()

	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), FreelancerID: uuid.New()}
	repo.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.Get(ctx, uuid.New(), models.PrincipalUser, order.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// Админ видит любой заказ.
	got, err := svc.Get(ctx, uuid.New(), models.PrincipalAdmin, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, order, got)
}
