package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
	"github.com/ignatzorin/marketplace-backend/internal/validation"
)

// SubscriptionRepository описывает зависимости SubscriptionService от слоя хранилища.
type SubscriptionRepository interface {
	CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error)
	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
	Subscribe(ctx context.Context, influencerID uuid.UUID, plan *models.SubscriptionPlan, paymentMethod string) (*models.Transaction, time.Time, error)
	ExpireLapsed(ctx context.Context) (int64, error)
}

// SubscribeResult возвращает итог оформления подписки.
type SubscribeResult struct {
	Transaction *models.Transaction
	ExpiresAt   time.Time
}

// SubscriptionService управляет тарифными планами и подписками инфлюенсеров.
type SubscriptionService struct {
	repo SubscriptionRepository
}

// NewSubscriptionService создаёт сервис подписок.
func NewSubscriptionService(repo SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{repo: repo}
}

// CreatePlan создаёт тарифный план (админ).
func (s *SubscriptionService) CreatePlan(ctx context.Context, name string, price float64, durationDays int) (*models.SubscriptionPlan, error) {
	if err := validation.ValidateNonEmpty("название плана", name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice(price); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if durationDays <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "срок подписки должен быть положительным")
	}

	plan := &models.SubscriptionPlan{Name: name, Price: price, DurationDays: durationDays}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans возвращает все тарифные планы.
func (s *SubscriptionService) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	return s.repo.ListPlans(ctx)
}

// DeletePlan удаляет тарифный план (админ).
func (s *SubscriptionService) DeletePlan(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "тарифный план не найден")
		}
		return err
	}
	return nil
}

// Subscribe оформляет подписку инфлюенсера на план.
func (s *SubscriptionService) Subscribe(ctx context.Context, influencerID, planID uuid.UUID, paymentMethod string) (*SubscribeResult, error) {
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCard
	}
	if _, ok := models.ValidPaymentMethods[paymentMethod]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый способ оплаты")
	}

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "тарифный план не найден")
		}
		return nil, err
	}

	payment, expiresAt, err := s.repo.Subscribe(ctx, influencerID, plan, paymentMethod)
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			return nil, apperror.ErrPrincipalNotFound
		}
		return nil, err
	}

	return &SubscribeResult{Transaction: payment, ExpiresAt: expiresAt}, nil
}

// ExpireLapsed снимает истёкшие подписки. Запускается фоновой задачей.
func (s *SubscriptionService) ExpireLapsed(ctx context.Context) (int64, error) {
	return s.repo.ExpireLapsed(ctx)
}
