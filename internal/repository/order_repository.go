package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/repository/common"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPending    = errors.New("order is not pending")
	ErrOrderNotInProgress = errors.New("order is not in progress")
	ErrOrderAlreadyRated  = errors.New("order already rated")
	ErrOrderNotCompleted  = errors.New("order is not completed")
	ErrFreelancerBusy     = errors.New("freelancer already has an active order")
)

// Имя частичного уникального индекса, ограничивающего фрилансера одним активным заказом.
const freelancerBusyConstraint = "uniq_orders_freelancer_in_progress"

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create создаёт заказ, кладёт его в корзину покупателя и пересчитывает итоги.
// Всё в одной транзакции: заказ не может существовать вне корзины.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, addonIDs []uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		cartID, err := upsertCartTx(ctx, tx, order.UserID)
		if err != nil {
			return err
		}
		order.CartID = &cartID

		row := tx.QueryRowxContext(ctx, `
			INSERT INTO orders (user_id, service_id, freelancer_id, cart_id, status, order_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`, order.UserID, order.ServiceID, order.FreelancerID, cartID, models.OrderStatusPending, order.OrderPrice)
		if err := row.Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return fmt.Errorf("order repository: create: %w", err)
		}
		order.Status = models.OrderStatusPending

		if err := replaceOrderAddOnsTx(ctx, tx, order.ID, addonIDs); err != nil {
			return err
		}

		return recomputeCartTx(ctx, tx, cartID)
	})
}

// UpdateAddOns заменяет набор дополнений заказа и фиксирует новую цену.
// Разрешено только пока заказ не оплачен и не взят в работу.
func (r *OrderRepository) UpdateAddOns(ctx context.Context, orderID uuid.UUID, addonIDs []uuid.UUID, newPrice float64) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		order, err := lockOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusPending {
			return ErrOrderNotPending
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_addons WHERE order_id = $1`, orderID); err != nil {
			return fmt.Errorf("order repository: clear addons: %w", err)
		}
		if err := replaceOrderAddOnsTx(ctx, tx, orderID, addonIDs); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET order_price = $2, updated_at = NOW() WHERE id = $1
		`, orderID, newPrice); err != nil {
			return fmt.Errorf("order repository: update price: %w", err)
		}

		if order.CartID != nil {
			return recomputeCartTx(ctx, tx, *order.CartID)
		}
		return nil
	})
}

// Start переводит заказ из pending в in_progress.
// В режиме literal кошелёк фрилансера кредитуется на цену заказа ещё до
// подтверждения работы. Гонка двух конкурентных стартов по одному фрилансеру
// разрешается частичным уникальным индексом, а не проверкой перед записью.
func (r *OrderRepository) Start(ctx context.Context, orderID, freelancerID uuid.UUID, creditOnStart bool) (*models.Order, error) {
	var started *models.Order
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		order, err := lockOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.FreelancerID != freelancerID {
			return ErrOrderNotFound
		}
		if order.Status != models.OrderStatusPending {
			return ErrOrderNotPending
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
		`, orderID, models.OrderStatusInProgress); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == freelancerBusyConstraint {
				return ErrFreelancerBusy
			}
			return fmt.Errorf("order repository: start: %w", err)
		}

		if creditOnStart {
			if err := creditWalletTx(ctx, tx, order.FreelancerID, models.WalletOwnerFreelancer, order.OrderPrice); err != nil {
				return err
			}
		}

		order.Status = models.OrderStatusInProgress
		started = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// End завершает заказ и проводит расчёт.
// literal: запись о выплате создаётся, но оба кошелька дебетуются на цену
// заказа — суммарно по start+end баланс фрилансера не меняется (историческое
// поведение). escrow: платформа дебетуется, фрилансер кредитуется один раз.
func (r *OrderRepository) End(ctx context.Context, orderID, freelancerID uuid.UUID, paymentMethod string, literal bool) (*models.Order, *models.Transaction, error) {
	var (
		ended  *models.Order
		payout *models.Transaction
	)
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		order, err := lockOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.FreelancerID != freelancerID {
			return ErrOrderNotFound
		}
		if order.Status != models.OrderStatusInProgress {
			return ErrOrderNotInProgress
		}

		platform, err := lockPlatformWalletTx(ctx, tx)
		if err != nil {
			return err
		}

		payout = &models.Transaction{
			FromID:        platform.OwnerID,
			FromModel:     models.PrincipalAdmin,
			ToID:          order.FreelancerID,
			ToModel:       models.PrincipalFreelancer,
			Type:          models.TransactionTypeFreelancePayment,
			Amount:        order.OrderPrice,
			PaymentMethod: paymentMethod,
			Status:        models.TransactionStatusSuccess,
		}
		if err := insertTransactionTx(ctx, tx, payout); err != nil {
			return err
		}

		if err := creditWalletTx(ctx, tx, platform.OwnerID, models.WalletOwnerAdmin, -order.OrderPrice); err != nil {
			return err
		}
		if literal {
			// Дебет вместо кредита: вместе со стартовым кредитом даёт ноль.
			if err := creditWalletTx(ctx, tx, order.FreelancerID, models.WalletOwnerFreelancer, -order.OrderPrice); err != nil {
				return err
			}
		} else {
			if err := creditWalletTx(ctx, tx, order.FreelancerID, models.WalletOwnerFreelancer, order.OrderPrice); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
		`, orderID, models.OrderStatusCompleted); err != nil {
			return fmt.Errorf("order repository: end: %w", err)
		}

		order.Status = models.OrderStatusCompleted
		ended = order
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return ended, payout, nil
}

// Delete удаляет заказ покупателя. Разрешено только в статусе pending;
// для любого другого статуса корзина остаётся нетронутой.
func (r *OrderRepository) Delete(ctx context.Context, orderID, userID uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		order, err := lockOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return ErrOrderNotFound
		}
		if order.Status != models.OrderStatusPending {
			return ErrOrderNotPending
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
			return fmt.Errorf("order repository: delete: %w", err)
		}

		if order.CartID != nil {
			return recomputeCartTx(ctx, tx, *order.CartID)
		}
		return nil
	})
}

// Rate прикрепляет единственную оценку к завершённому заказу.
func (r *OrderRepository) Rate(ctx context.Context, orderID, userID uuid.UUID, value int, comment *string) (*models.Rating, error) {
	var rating *models.Rating
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		order, err := lockOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return ErrOrderNotFound
		}
		if order.Status != models.OrderStatusCompleted {
			return ErrOrderNotCompleted
		}
		if order.RatingID != nil {
			return ErrOrderAlreadyRated
		}

		rating = &models.Rating{OrderID: orderID, UserID: userID, Value: value, Comment: comment}
		row := tx.QueryRowxContext(ctx, `
			INSERT INTO ratings (order_id, user_id, value, comment)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, orderID, userID, value, comment)
		if err := row.Scan(&rating.ID, &rating.CreatedAt); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return ErrOrderAlreadyRated
			}
			return fmt.Errorf("order repository: rate: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET rating_id = $2, updated_at = NOW() WHERE id = $1
		`, orderID, rating.ID); err != nil {
			return fmt.Errorf("order repository: attach rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// GetByID возвращает заказ вместе с выбранными дополнениями.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `
		SELECT id, user_id, service_id, freelancer_id, cart_id, status, order_price,
		       rating_id, transaction_id, created_at, updated_at
		FROM orders WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get by id: %w", err)
	}

	addons, err := r.orderAddOns(ctx, id)
	if err != nil {
		return nil, err
	}
	order.AddOns = addons
	return &order, nil
}

// ListByUser возвращает заказы покупателя.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT id, user_id, service_id, freelancer_id, cart_id, status, order_price,
		       rating_id, transaction_id, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list by user: %w", err)
	}
	return orders, nil
}

// ListByFreelancer возвращает заказы на услуги фрилансера.
func (r *OrderRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT id, user_id, service_id, freelancer_id, cart_id, status, order_price,
		       rating_id, transaction_id, created_at, updated_at
		FROM orders WHERE freelancer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, freelancerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list by freelancer: %w", err)
	}
	return orders, nil
}

// HasActiveOrder быстрая предварительная проверка занятости фрилансера.
// Финальную защиту даёт уникальный индекс при переводе в in_progress.
func (r *OrderRepository) HasActiveOrder(ctx context.Context, freelancerID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM orders WHERE freelancer_id = $1 AND status = $2
	`, freelancerID, models.OrderStatusInProgress)
	if err != nil {
		return false, fmt.Errorf("order repository: has active order: %w", err)
	}
	return count > 0, nil
}

// ListRatingsByService возвращает оценки всех заказов одной услуги.
func (r *OrderRepository) ListRatingsByService(ctx context.Context, serviceID uuid.UUID) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.SelectContext(ctx, &ratings, `
		SELECT r.id, r.order_id, r.user_id, r.value, r.comment, r.created_at
		FROM ratings r
		JOIN orders o ON o.id = r.order_id
		WHERE o.service_id = $1
		ORDER BY r.created_at DESC
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("order repository: list ratings by service: %w", err)
	}
	return ratings, nil
}

func (r *OrderRepository) orderAddOns(ctx context.Context, orderID uuid.UUID) ([]models.AddOn, error) {
	var addons []models.AddOn
	err := r.db.SelectContext(ctx, &addons, `
		SELECT a.id, a.service_id, a.title, a.duration_days, a.price, a.created_at
		FROM addons a
		JOIN order_addons oa ON oa.addon_id = a.id
		WHERE oa.order_id = $1
		ORDER BY a.created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("order repository: order addons: %w", err)
	}
	return addons, nil
}

// lockOrderTx блокирует строку заказа до конца транзакции.
func lockOrderTx(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := tx.GetContext(ctx, &order, `
		SELECT id, user_id, service_id, freelancer_id, cart_id, status, order_price,
		       rating_id, transaction_id, created_at, updated_at
		FROM orders WHERE id = $1 FOR UPDATE
	`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: lock order: %w", err)
	}
	return &order, nil
}

// replaceOrderAddOnsTx вставляет связи заказа с дополнениями пачкой.
func replaceOrderAddOnsTx(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID, addonIDs []uuid.UUID) error {
	if len(addonIDs) == 0 {
		return nil
	}

	inserter := common.NewBatchInserter(tx, `INSERT INTO order_addons (order_id, addon_id)`, 2, 100)
	for _, addonID := range addonIDs {
		if err := inserter.Add(ctx, orderID, addonID); err != nil {
			return fmt.Errorf("order repository: add addon link: %w", err)
		}
	}
	return inserter.Flush(ctx)
}
