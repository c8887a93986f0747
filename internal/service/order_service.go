package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
	"github.com/ignatzorin/marketplace-backend/internal/validation"
)

// OrderRepository описывает зависимости OrderService от слоя хранилища.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order, addonIDs []uuid.UUID) error
	UpdateAddOns(ctx context.Context, orderID uuid.UUID, addonIDs []uuid.UUID, newPrice float64) error
	Start(ctx context.Context, orderID, freelancerID uuid.UUID, creditOnStart bool) (*models.Order, error)
	End(ctx context.Context, orderID, freelancerID uuid.UUID, paymentMethod string, literal bool) (*models.Order, *models.Transaction, error)
	Delete(ctx context.Context, orderID, userID uuid.UUID) error
	Rate(ctx context.Context, orderID, userID uuid.UUID, value int, comment *string) (*models.Rating, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Order, error)
	HasActiveOrder(ctx context.Context, freelancerID uuid.UUID) (bool, error)
	ListRatingsByService(ctx context.Context, serviceID uuid.UUID) ([]models.Rating, error)
}

// ServiceResolver отдаёт услуги и дополнения для расчёта цены заказа.
type ServiceResolver interface {
	GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ResolveAddOns(ctx context.Context, ids []uuid.UUID) ([]models.AddOn, error)
}

// OrderService управляет жизненным циклом заказа: pending -> in_progress -> completed.
// Режим расчёта literal повторяет историческое поведение (кредит при старте,
// двойной дебет при завершении); escrow платит фрилансеру один раз при завершении.
type OrderService struct {
	repo    OrderRepository
	catalog ServiceResolver
	literal bool
}

// NewOrderService создаёт сервис заказов.
func NewOrderService(repo OrderRepository, catalog ServiceResolver, literalSettlement bool) *OrderService {
	return &OrderService{
		repo:    repo,
		catalog: catalog,
		literal: literalSettlement,
	}
}

// Create создаёт заказ на услугу с выбранными дополнениями.
// Цена фиксируется в момент создания: service.price + сумма дополнений.
func (s *OrderService) Create(ctx context.Context, userID, serviceID uuid.UUID, addonIDs []uuid.UUID) (*models.Order, error) {
	service, err := s.catalog.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, apperror.ErrServiceNotFound
		}
		return nil, err
	}
	if !service.IsApproved {
		return nil, apperror.ErrServiceNotFound
	}

	// Занятому фрилансеру заказ не создаётся: конфликт отдаём сразу.
	busy, err := s.repo.HasActiveOrder(ctx, service.FreelancerID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, apperror.ErrFreelancerBusy
	}

	price, err := s.computePrice(ctx, service, addonIDs)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:       userID,
		ServiceID:    service.ID,
		FreelancerID: service.FreelancerID,
		OrderPrice:   price,
	}
	if err := s.repo.Create(ctx, order, addonIDs); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateAddOns заменяет набор дополнений и пересчитывает цену заказа.
func (s *OrderService) UpdateAddOns(ctx context.Context, userID, orderID uuid.UUID, addonIDs []uuid.UUID) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "заказ уже в работе, менять дополнения нельзя")
	}

	service, err := s.catalog.GetServiceByID(ctx, order.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, apperror.ErrServiceNotFound
		}
		return nil, err
	}

	price, err := s.computePrice(ctx, service, addonIDs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAddOns(ctx, orderID, addonIDs, price); err != nil {
		return nil, mapOrderError(err)
	}

	return s.repo.GetByID(ctx, orderID)
}

// Start берёт заказ в работу. У фрилансера может быть только один активный
// заказ: гонка конкурентных стартов разрешается на уровне БД и отдаёт 409.
func (s *OrderService) Start(ctx context.Context, freelancerID, orderID uuid.UUID) (*models.Order, error) {
	// Быстрая проверка до транзакции; решает индекс, а не она.
	busy, err := s.repo.HasActiveOrder(ctx, freelancerID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, apperror.ErrFreelancerBusy
	}

	order, err := s.repo.Start(ctx, orderID, freelancerID, s.literal)
	if err != nil {
		return nil, mapOrderError(err)
	}
	return order, nil
}

// End завершает заказ и проводит выплату фрилансеру.
func (s *OrderService) End(ctx context.Context, freelancerID, orderID uuid.UUID, paymentMethod string) (*models.Order, *models.Transaction, error) {
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCard
	}
	if _, ok := models.ValidPaymentMethods[paymentMethod]; !ok {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "недопустимый способ оплаты")
	}

	order, payout, err := s.repo.End(ctx, orderID, freelancerID, paymentMethod, s.literal)
	if err != nil {
		return nil, nil, mapOrderError(err)
	}
	return order, payout, nil
}

// Delete удаляет заказ владельцем. Только pending: оплаченный или взятый
// в работу заказ удалить нельзя, корзина при отказе не меняется.
func (s *OrderService) Delete(ctx context.Context, userID, orderID uuid.UUID) error {
	if err := s.repo.Delete(ctx, orderID, userID); err != nil {
		return mapOrderError(err)
	}
	return nil
}

// Rate ставит оценку завершённому заказу.
func (s *OrderService) Rate(ctx context.Context, userID, orderID uuid.UUID, value int, comment *string) (*models.Rating, error) {
	if err := validation.ValidateRatingValue(value); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if comment != nil {
		if err := validation.ValidateLength("комментарий", *comment, 0, validation.MaxRatingCommentLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	rating, err := s.repo.Rate(ctx, orderID, userID, value, comment)
	if err != nil {
		return nil, mapOrderError(err)
	}
	return rating, nil
}

// Get возвращает заказ его участнику или администратору.
func (s *OrderService) Get(ctx context.Context, principalID uuid.UUID, role string, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderError(err)
	}

	if role != models.PrincipalAdmin && order.UserID != principalID && order.FreelancerID != principalID {
		return nil, apperror.ErrForbidden
	}
	return order, nil
}

// ListByUser возвращает заказы покупателя.
func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListByFreelancer возвращает заказы фрилансера.
func (s *OrderService) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByFreelancer(ctx, freelancerID, limit, offset)
}

// ListServiceRatings возвращает оценки услуги.
func (s *OrderService) ListServiceRatings(ctx context.Context, serviceID uuid.UUID) ([]models.Rating, error) {
	return s.repo.ListRatingsByService(ctx, serviceID)
}

// computePrice считает цену заказа и проверяет принадлежность дополнений услуге.
func (s *OrderService) computePrice(ctx context.Context, service *models.Service, addonIDs []uuid.UUID) (float64, error) {
	addons, err := s.catalog.ResolveAddOns(ctx, addonIDs)
	if err != nil {
		if errors.Is(err, repository.ErrAddOnNotFound) {
			return 0, apperror.New(apperror.ErrCodeNotFound, "дополнение не найдено")
		}
		return 0, err
	}

	price := service.Price
	for _, addon := range addons {
		if addon.ServiceID != service.ID {
			return 0, apperror.New(apperror.ErrCodeValidation, "дополнение не относится к этой услуге")
		}
		price += addon.Price
	}
	return price, nil
}

// ownedOrder возвращает заказ, если он принадлежит покупателю.
func (s *OrderService) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderError(err)
	}
	if order.UserID != userID {
		return nil, apperror.ErrOrderNotFound
	}
	return order, nil
}

// mapOrderError переводит ошибки хранилища в ошибки уровня API.
func mapOrderError(err error) error {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return apperror.ErrOrderNotFound
	case errors.Is(err, repository.ErrFreelancerBusy):
		return apperror.ErrFreelancerBusy
	case errors.Is(err, repository.ErrOrderNotPending):
		return apperror.New(apperror.ErrCodeBadRequest, "заказ не в статусе pending")
	case errors.Is(err, repository.ErrOrderNotInProgress):
		return apperror.New(apperror.ErrCodeBadRequest, "заказ не в работе")
	case errors.Is(err, repository.ErrOrderNotCompleted):
		return apperror.New(apperror.ErrCodeBadRequest, "заказ ещё не завершён")
	case errors.Is(err, repository.ErrOrderAlreadyRated):
		return apperror.New(apperror.ErrCodeConflict, "заказ уже оценён")
	default:
		return err
	}
}
