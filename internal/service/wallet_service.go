package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
)

// WalletRepository описывает зависимости WalletService от слоя хранилища.
type WalletRepository interface {
	GetOrCreate(ctx context.Context, ownerID uuid.UUID, ownerModel string) (*models.Wallet, error)
	GetPlatform(ctx context.Context) (*models.Wallet, error)
	Credit(ctx context.Context, ownerID uuid.UUID, ownerModel string, amount float64) (*models.Wallet, error)
	Debit(ctx context.Context, ownerID uuid.UUID, ownerModel string, amount float64) (*models.Wallet, error)
	AdminSetBalance(ctx context.Context, walletID uuid.UUID, balance float64) (*models.Wallet, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Wallet, error)
}

// WalletService управляет кошельками фрилансеров и платформенным кошельком.
type WalletService struct {
	repo WalletRepository
}

// NewWalletService создаёт сервис кошельков.
func NewWalletService(repo WalletRepository) *WalletService {
	return &WalletService{repo: repo}
}

// GetBalance возвращает кошелёк фрилансера, создавая его при первом обращении.
func (s *WalletService) GetBalance(ctx context.Context, freelancerID uuid.UUID) (*models.Wallet, error) {
	return s.repo.GetOrCreate(ctx, freelancerID, models.WalletOwnerFreelancer)
}

// GetPlatformBalance возвращает платформенный кошелёк (админ).
func (s *WalletService) GetPlatformBalance(ctx context.Context) (*models.Wallet, error) {
	wallet, err := s.repo.GetPlatform(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, apperror.ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, nil
}

// Credit пополняет кошелёк фрилансера.
func (s *WalletService) Credit(ctx context.Context, freelancerID uuid.UUID, amount float64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма должна быть положительной")
	}
	return s.repo.Credit(ctx, freelancerID, models.WalletOwnerFreelancer, amount)
}

// Debit списывает с кошелька фрилансера.
// Баланс может уйти в минус: защиты нет, поведение унаследовано.
func (s *WalletService) Debit(ctx context.Context, freelancerID uuid.UUID, amount float64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма должна быть положительной")
	}
	return s.repo.Debit(ctx, freelancerID, models.WalletOwnerFreelancer, amount)
}

// AdminSetBalance напрямую перезаписывает баланс кошелька (админ).
func (s *WalletService) AdminSetBalance(ctx context.Context, walletID uuid.UUID, balance float64) (*models.Wallet, error) {
	wallet, err := s.repo.AdminSetBalance(ctx, walletID, balance)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, apperror.ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, nil
}

// ListAll возвращает все кошельки (админский обзор).
func (s *WalletService) ListAll(ctx context.Context, limit, offset int) ([]models.Wallet, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListAll(ctx, limit, offset)
}
