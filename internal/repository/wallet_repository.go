package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/marketplace-backend/internal/models"
)

var ErrWalletNotFound = errors.New("wallet not found")

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetOrCreate возвращает кошелёк владельца, создавая его при первом обращении.
func (r *WalletRepository) GetOrCreate(ctx context.Context, ownerID uuid.UUID, ownerModel string) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `
		INSERT INTO wallets (owner_id, owner_model, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (owner_id, owner_model) DO UPDATE SET updated_at = NOW()
		RETURNING id, owner_id, owner_model, balance, created_at, updated_at
	`
	if err := r.db.GetContext(ctx, &wallet, query, ownerID, ownerModel); err != nil {
		return nil, fmt.Errorf("wallet repository: get or create: %w", err)
	}
	return &wallet, nil
}

// GetPlatform возвращает единственный платформенный кошелёк.
func (r *WalletRepository) GetPlatform(ctx context.Context) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.GetContext(ctx, &wallet, `
		SELECT id, owner_id, owner_model, balance, created_at, updated_at
		FROM wallets WHERE owner_model = $1
	`, models.WalletOwnerAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("wallet repository: get platform wallet: %w", err)
	}
	return &wallet, nil
}

// Credit увеличивает баланс владельца.
func (r *WalletRepository) Credit(ctx context.Context, ownerID uuid.UUID, ownerModel string, amount float64) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `
		INSERT INTO wallets (owner_id, owner_model, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, owner_model)
		DO UPDATE SET balance = wallets.balance + $3, updated_at = NOW()
		RETURNING id, owner_id, owner_model, balance, created_at, updated_at
	`
	if err := r.db.GetContext(ctx, &wallet, query, ownerID, ownerModel, amount); err != nil {
		return nil, fmt.Errorf("wallet repository: credit: %w", err)
	}
	return &wallet, nil
}

// Debit уменьшает баланс владельца. Защиты от минуса нет — унаследованное поведение.
func (r *WalletRepository) Debit(ctx context.Context, ownerID uuid.UUID, ownerModel string, amount float64) (*models.Wallet, error) {
	return r.Credit(ctx, ownerID, ownerModel, -amount)
}

// AdminSetBalance напрямую перезаписывает баланс кошелька.
func (r *WalletRepository) AdminSetBalance(ctx context.Context, walletID uuid.UUID, balance float64) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.GetContext(ctx, &wallet, `
		UPDATE wallets SET balance = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, owner_id, owner_model, balance, created_at, updated_at
	`, walletID, balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("wallet repository: admin set balance: %w", err)
	}
	return &wallet, nil
}

// ListAll возвращает все кошельки (админский обзор).
func (r *WalletRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Wallet, error) {
	var wallets []models.Wallet
	err := r.db.SelectContext(ctx, &wallets, `
		SELECT id, owner_id, owner_model, balance, created_at, updated_at
		FROM wallets ORDER BY created_at LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: list: %w", err)
	}
	return wallets, nil
}

// --- Помощники для денежных транзакций БД. Вызываются только внутри tx. ---

// lockPlatformWalletTx блокирует платформенный кошелёк до конца транзакции.
func lockPlatformWalletTx(ctx context.Context, tx *sqlx.Tx) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.GetContext(ctx, &wallet, `
		SELECT id, owner_id, owner_model, balance, created_at, updated_at
		FROM wallets WHERE owner_model = $1 FOR UPDATE
	`, models.WalletOwnerAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("wallet tx: lock platform wallet: %w", err)
	}
	return &wallet, nil
}

// creditWalletTx изменяет баланс владельца внутри транзакции.
// Отрицательный amount означает списание.
func creditWalletTx(ctx context.Context, tx *sqlx.Tx, ownerID uuid.UUID, ownerModel string, amount float64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (owner_id, owner_model, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, owner_model)
		DO UPDATE SET balance = wallets.balance + $3, updated_at = NOW()
	`, ownerID, ownerModel, amount)
	if err != nil {
		return fmt.Errorf("wallet tx: credit %s: %w", ownerModel, err)
	}
	return nil
}

// insertTransactionTx добавляет запись в журнал внутри транзакции.
func insertTransactionTx(ctx context.Context, tx *sqlx.Tx, t *models.Transaction) error {
	row := tx.QueryRowxContext(ctx, `
		INSERT INTO transactions (from_id, from_model, to_id, to_model, type, amount, payment_method, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		        CASE WHEN $8 = 'success' THEN NOW() ELSE NULL END)
		RETURNING id, paid_at, created_at
	`, t.FromID, t.FromModel, t.ToID, t.ToModel, t.Type, t.Amount, t.PaymentMethod, t.Status)
	if err := row.Scan(&t.ID, &t.PaidAt, &t.CreatedAt); err != nil {
		return fmt.Errorf("wallet tx: insert transaction: %w", err)
	}
	return nil
}
