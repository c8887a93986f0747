package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
)

// CartRepository описывает зависимости CartService от слоя хранилища.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetHistory(ctx context.Context, userID uuid.UUID) ([]models.CartHistoryEntry, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	SetPlatformFee(ctx context.Context, fee float64) error
	GetPlatformFee(ctx context.Context) (float64, error)
	Checkout(ctx context.Context, userID uuid.UUID, paymentMethod string, succeed bool) (*models.CartHistoryEntry, []models.Transaction, error)
	RetryFailedCheckout(ctx context.Context, userID uuid.UUID, paymentMethod string) (*models.CartHistoryEntry, []models.Transaction, error)
}

// CheckoutResult возвращает итог оплаты корзины.
type CheckoutResult struct {
	HistoryEntry *models.CartHistoryEntry
	Transactions []models.Transaction
}

// CartService управляет корзиной и проведением оплаты.
type CartService struct {
	repo CartRepository
}

// NewCartService создаёт сервис корзины.
func NewCartService(repo CartRepository) *CartService {
	return &CartService{repo: repo}
}

// GetCurrent возвращает живую корзину пользователя.
// Отсутствие корзины — не ошибка: пользователь ещё ничего не заказывал.
func (s *CartService) GetCurrent(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			fee, feeErr := s.repo.GetPlatformFee(ctx)
			if feeErr != nil {
				return nil, feeErr
			}
			return &models.Cart{UserID: userID, PlatformFee: fee, Total: fee}, nil
		}
		return nil, err
	}
	return cart, nil
}

// GetHistory возвращает архив покупок.
func (s *CartService) GetHistory(ctx context.Context, userID uuid.UUID) ([]models.CartHistoryEntry, error) {
	return s.repo.GetHistory(ctx, userID)
}

// Clear очищает корзину от неоплаченных заказов.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return apperror.ErrCartNotFound
		}
		return err
	}
	return nil
}

// SetPlatformFee задаёт комиссию платформы (админ).
// Комиссия применяется ко всем корзинам атомарно.
func (s *CartService) SetPlatformFee(ctx context.Context, fee float64) error {
	if fee < 0 {
		return apperror.New(apperror.ErrCodeValidation, "комиссия не может быть отрицательной")
	}
	return s.repo.SetPlatformFee(ctx, fee)
}

// GetPlatformFee возвращает текущую комиссию платформы.
func (s *CartService) GetPlatformFee(ctx context.Context) (float64, error) {
	return s.repo.GetPlatformFee(ctx)
}

// Checkout проводит оплату корзины. Статус платежа приходит от платёжной
// заглушки: failed-платёж фиксируется в журнале и возвращает 402,
// корзина при этом остаётся нетронутой.
func (s *CartService) Checkout(ctx context.Context, userID uuid.UUID, paymentMethod string, paymentStatus string) (*CheckoutResult, error) {
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCard
	}
	if _, ok := models.ValidPaymentMethods[paymentMethod]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый способ оплаты")
	}

	succeed := true
	switch paymentStatus {
	case "", models.TransactionStatusSuccess:
	case models.TransactionStatusFailed:
		succeed = false
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый статус платежа")
	}

	entry, transactions, err := s.repo.Checkout(ctx, userID, paymentMethod, succeed)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPaymentFailed):
			return nil, apperror.ErrPaymentFailed
		case errors.Is(err, repository.ErrCartNotFound):
			return nil, apperror.ErrCartNotFound
		case errors.Is(err, repository.ErrCartEmpty):
			return nil, apperror.New(apperror.ErrCodeBadRequest, "корзина пуста")
		default:
			return nil, err
		}
	}

	return &CheckoutResult{HistoryEntry: entry, Transactions: transactions}, nil
}

// RetryFailedCheckout перепроводит неуспешные платежи пользователя.
func (s *CartService) RetryFailedCheckout(ctx context.Context, userID uuid.UUID, paymentMethod string) (*CheckoutResult, error) {
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCard
	}
	if _, ok := models.ValidPaymentMethods[paymentMethod]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый способ оплаты")
	}

	entry, transactions, err := s.repo.RetryFailedCheckout(ctx, userID, paymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			return nil, apperror.ErrCartNotFound
		case errors.Is(err, repository.ErrNoFailedPayments):
			return nil, apperror.New(apperror.ErrCodeBadRequest, "нет неуспешных платежей для повтора")
		default:
			return nil, err
		}
	}

	return &CheckoutResult{HistoryEntry: entry, Transactions: transactions}, nil
}
