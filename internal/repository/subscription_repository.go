package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/repository/common"
)

var ErrPlanNotFound = errors.New("subscription plan not found")

type SubscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// CreatePlan создаёт тарифный план.
func (r *SubscriptionRepository) CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO subscription_plans (name, price, duration_days)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, plan.Name, plan.Price, plan.DurationDays)
	if err := row.Scan(&plan.ID, &plan.CreatedAt); err != nil {
		return fmt.Errorf("subscription repository: create plan: %w", err)
	}
	return nil
}

// GetPlan возвращает план по идентификатору.
func (r *SubscriptionRepository) GetPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.GetContext(ctx, &plan, `
		SELECT id, name, price, duration_days, created_at
		FROM subscription_plans WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("subscription repository: get plan: %w", err)
	}
	return &plan, nil
}

// ListPlans возвращает все тарифные планы.
func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.SelectContext(ctx, &plans, `
		SELECT id, name, price, duration_days, created_at
		FROM subscription_plans ORDER BY price
	`)
	if err != nil {
		return nil, fmt.Errorf("subscription repository: list plans: %w", err)
	}
	return plans, nil
}

// DeletePlan удаляет тарифный план.
func (r *SubscriptionRepository) DeletePlan(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscription_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("subscription repository: delete plan: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// Subscribe оформляет подписку инфлюенсера одной транзакцией БД:
// запись в журнал, кредит платформенного кошелька и штамп срока действия.
func (r *SubscriptionRepository) Subscribe(ctx context.Context, influencerID uuid.UUID, plan *models.SubscriptionPlan, paymentMethod string) (*models.Transaction, time.Time, error) {
	var (
		payment   *models.Transaction
		expiresAt time.Time
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		platform, err := lockPlatformWalletTx(ctx, tx)
		if err != nil {
			return err
		}

		payment = &models.Transaction{
			FromID:        influencerID,
			FromModel:     models.PrincipalInfluencer,
			ToID:          platform.OwnerID,
			ToModel:       models.PrincipalAdmin,
			Type:          models.TransactionTypeSubscription,
			Amount:        plan.Price,
			PaymentMethod: paymentMethod,
			Status:        models.TransactionStatusSuccess,
		}
		if err := insertTransactionTx(ctx, tx, payment); err != nil {
			return err
		}

		if err := creditWalletTx(ctx, tx, platform.OwnerID, models.WalletOwnerAdmin, plan.Price); err != nil {
			return err
		}

		// Продление считается от текущего срока, если подписка ещё жива.
		err = tx.GetContext(ctx, &expiresAt, `
			UPDATE influencers
			SET subscription_plan_id = $2,
			    subscription_expires_at = GREATEST(COALESCE(subscription_expires_at, NOW()), NOW()) + ($3 || ' days')::interval,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING subscription_expires_at
		`, influencerID, plan.ID, plan.DurationDays)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPrincipalNotFound
			}
			return fmt.Errorf("subscription repository: stamp expiry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return payment, expiresAt, nil
}

// ExpireLapsed снимает план с инфлюенсеров с истёкшей подпиской.
// Возвращает число затронутых аккаунтов.
func (r *SubscriptionRepository) ExpireLapsed(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE influencers
		SET subscription_plan_id = NULL, subscription_expires_at = NULL, updated_at = NOW()
		WHERE subscription_expires_at IS NOT NULL AND subscription_expires_at < NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("subscription repository: expire lapsed: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
