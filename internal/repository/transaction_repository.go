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

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetByID возвращает запись журнала.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.GetContext(ctx, &t, `
		SELECT id, from_id, from_model, to_id, to_model, type, amount,
		       payment_method, status, paid_at, created_at
		FROM transactions WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("transaction repository: get by id: %w", err)
	}
	return &t, nil
}

// ListByPrincipal возвращает движения, где принципал был отправителем или получателем.
func (r *TransactionRepository) ListByPrincipal(ctx context.Context, principalID uuid.UUID, model string, limit, offset int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT id, from_id, from_model, to_id, to_model, type, amount,
		       payment_method, status, paid_at, created_at
		FROM transactions
		WHERE (from_id = $1 AND from_model = $2) OR (to_id = $1 AND to_model = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4
	`, principalID, model, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("transaction repository: list by principal: %w", err)
	}
	return transactions, nil
}

// ListAll возвращает весь журнал постранично (админский обзор).
func (r *TransactionRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT id, from_id, from_model, to_id, to_model, type, amount,
		       payment_method, status, paid_at, created_at
		FROM transactions ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("transaction repository: list: %w", err)
	}
	return transactions, nil
}

// UpdateStatus переписывает статус записи журнала.
// Кошельки сознательно не пересчитываются: это административная правка
// журнала, а не повторное проведение платежа.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.GetContext(ctx, &t, `
		UPDATE transactions
		SET status = $2,
		    paid_at = CASE WHEN $2 = 'success' AND paid_at IS NULL THEN NOW() ELSE paid_at END
		WHERE id = $1
		RETURNING id, from_id, from_model, to_id, to_model, type, amount,
		          payment_method, status, paid_at, created_at
	`, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("transaction repository: update status: %w", err)
	}
	return &t, nil
}
