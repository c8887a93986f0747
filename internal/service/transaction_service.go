package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
)

// TransactionLogRepository описывает зависимости TransactionService от слоя хранилища.
type TransactionLogRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListByPrincipal(ctx context.Context, principalID uuid.UUID, model string, limit, offset int) ([]models.Transaction, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Transaction, error)
}

// TransactionService отдаёт журнал движений средств.
type TransactionService struct {
	repo TransactionLogRepository
}

// NewTransactionService создаёт сервис журнала транзакций.
func NewTransactionService(repo TransactionLogRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// Get возвращает запись журнала её участнику или администратору.
func (s *TransactionService) Get(ctx context.Context, principalID uuid.UUID, role string, id uuid.UUID) (*models.Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, apperror.ErrTransactionNotFound
		}
		return nil, err
	}

	if role != models.PrincipalAdmin {
		isParty := (t.FromID == principalID && t.FromModel == role) ||
			(t.ToID == principalID && t.ToModel == role)
		if !isParty {
			return nil, apperror.ErrForbidden
		}
	}
	return t, nil
}

// ListOwn возвращает движения принципала.
func (s *TransactionService) ListOwn(ctx context.Context, principalID uuid.UUID, role string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByPrincipal(ctx, principalID, role, limit, offset)
}

// ListAll возвращает весь журнал (админ).
func (s *TransactionService) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListAll(ctx, limit, offset)
}

// UpdateStatus правит статус записи журнала (админ).
// Кошельки при этом не пересчитываются: правка журнала не проводит деньги.
func (s *TransactionService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Transaction, error) {
	if _, ok := models.ValidTransactionStatuses[status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый статус транзакции")
	}

	t, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, apperror.ErrTransactionNotFound
		}
		return nil, err
	}
	return t, nil
}
