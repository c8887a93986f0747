package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/repository/common"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrNoFailedPayments = errors.New("no failed payments to retry")
	ErrPaymentFailed    = errors.New("payment failed")
)

type CartRepository struct {
	db *sqlx.DB
}

func NewCartRepository(db *sqlx.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetByUserID возвращает живую корзину с заказами и их дополнениями.
func (r *CartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.GetContext(ctx, &cart, `
		SELECT id, user_id, subtotal, platform_fee, total, created_at, updated_at
		FROM carts WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("cart repository: get by user: %w", err)
	}

	orders, err := r.cartOrders(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Orders = orders
	return &cart, nil
}

// GetHistory возвращает архивные партии покупок пользователя.
func (r *CartRepository) GetHistory(ctx context.Context, userID uuid.UUID) ([]models.CartHistoryEntry, error) {
	var entries []models.CartHistoryEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT h.id, h.cart_id, h.total, h.purchased_at
		FROM cart_history h
		JOIN carts c ON c.id = h.cart_id
		WHERE c.user_id = $1
		ORDER BY h.purchased_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("cart repository: get history: %w", err)
	}

	for i := range entries {
		var orders []models.Order
		err := r.db.SelectContext(ctx, &orders, `
			SELECT o.id, o.user_id, o.service_id, o.freelancer_id, o.cart_id, o.status,
			       o.order_price, o.rating_id, o.transaction_id, o.created_at, o.updated_at
			FROM orders o
			JOIN cart_history_orders ho ON ho.order_id = o.id
			WHERE ho.history_id = $1
			ORDER BY o.created_at
		`, entries[i].ID)
		if err != nil {
			return nil, fmt.Errorf("cart repository: history orders: %w", err)
		}
		entries[i].Orders = orders
	}

	return entries, nil
}

// Clear удаляет неоплаченные заказы корзины и обнуляет итоги.
func (r *CartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		cart, err := lockCartByUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM orders WHERE cart_id = $1 AND status = $2
		`, cart.ID, models.OrderStatusPending); err != nil {
			return fmt.Errorf("cart repository: clear: %w", err)
		}

		return recomputeCartTx(ctx, tx, cart.ID)
	})
}

// SetPlatformFee обновляет глобальную комиссию и переписывает все корзины
// одним UPDATE. Никакого цикла по корзинам: частичное применение невозможно.
func (r *CartRepository) SetPlatformFee(ctx context.Context, fee float64) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE platform_settings SET value = $1, updated_at = NOW() WHERE key = 'platform_fee'
		`, fee); err != nil {
			return fmt.Errorf("cart repository: set platform fee setting: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE carts SET platform_fee = $1, total = subtotal + $1, updated_at = NOW()
		`, fee); err != nil {
			return fmt.Errorf("cart repository: set platform fee carts: %w", err)
		}
		return nil
	})
}

// GetPlatformFee возвращает текущую комиссию платформы.
func (r *CartRepository) GetPlatformFee(ctx context.Context) (float64, error) {
	var fee float64
	err := r.db.GetContext(ctx, &fee, `
		SELECT value FROM platform_settings WHERE key = 'platform_fee'
	`)
	if err != nil {
		return 0, fmt.Errorf("cart repository: get platform fee: %w", err)
	}
	return fee, nil
}

// Checkout проводит оплату корзины одной транзакцией БД.
//
// Неуспешная оплата фиксируется: failed-транзакции привязываются к заказам
// и коммитятся, но кошельки и история не трогаются, корзина остаётся живой,
// вызывающему возвращается ErrPaymentFailed уже после коммита.
func (r *CartRepository) Checkout(ctx context.Context, userID uuid.UUID, paymentMethod string, succeed bool) (*models.CartHistoryEntry, []models.Transaction, error) {
	var (
		entry        *models.CartHistoryEntry
		transactions []models.Transaction
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		cart, err := lockCartByUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		var orders []models.Order
		if err := tx.SelectContext(ctx, &orders, `
			SELECT id, user_id, service_id, freelancer_id, cart_id, status, order_price,
			       rating_id, transaction_id, created_at, updated_at
			FROM orders WHERE cart_id = $1 ORDER BY created_at FOR UPDATE
		`, cart.ID); err != nil {
			return fmt.Errorf("cart repository: checkout orders: %w", err)
		}
		if len(orders) == 0 {
			return ErrCartEmpty
		}

		platform, err := lockPlatformWalletTx(ctx, tx)
		if err != nil {
			return err
		}

		status := models.TransactionStatusSuccess
		if !succeed {
			status = models.TransactionStatusFailed
		}

		for i := range orders {
			t := models.Transaction{
				FromID:        userID,
				FromModel:     models.PrincipalUser,
				ToID:          platform.OwnerID,
				ToModel:       models.PrincipalAdmin,
				Type:          models.TransactionTypeUserPayment,
				Amount:        orders[i].OrderPrice,
				PaymentMethod: paymentMethod,
				Status:        status,
			}
			if err := insertTransactionTx(ctx, tx, &t); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE orders SET transaction_id = $2, updated_at = NOW() WHERE id = $1
			`, orders[i].ID, t.ID); err != nil {
				return fmt.Errorf("cart repository: attach transaction: %w", err)
			}
			transactions = append(transactions, t)
		}

		if !succeed {
			// Коммитим failed-записи журнала и выходим без движения денег.
			return nil
		}

		if err := creditWalletTx(ctx, tx, platform.OwnerID, models.WalletOwnerAdmin, cart.Total); err != nil {
			return err
		}

		entry = &models.CartHistoryEntry{CartID: cart.ID, Total: cart.Total}
		row := tx.QueryRowxContext(ctx, `
			INSERT INTO cart_history (cart_id, total) VALUES ($1, $2)
			RETURNING id, purchased_at
		`, cart.ID, cart.Total)
		if err := row.Scan(&entry.ID, &entry.PurchasedAt); err != nil {
			return fmt.Errorf("cart repository: create history entry: %w", err)
		}

		inserter := common.NewBatchInserter(tx, `INSERT INTO cart_history_orders (history_id, order_id)`, 2, 100)
		for i := range orders {
			if err := inserter.Add(ctx, entry.ID, orders[i].ID); err != nil {
				return fmt.Errorf("cart repository: link history order: %w", err)
			}
		}
		if err := inserter.Flush(ctx); err != nil {
			return fmt.Errorf("cart repository: link history orders: %w", err)
		}
		entry.Orders = orders

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET cart_id = NULL, updated_at = NOW() WHERE cart_id = $1
		`, cart.ID); err != nil {
			return fmt.Errorf("cart repository: detach orders: %w", err)
		}

		return recomputeCartTx(ctx, tx, cart.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	if !succeed {
		return nil, transactions, ErrPaymentFailed
	}
	return entry, transactions, nil
}

// RetryFailedCheckout перепроводит заказы с неуспешной оплатой.
// Каждый такой заказ получает свежую success-транзакцию типа
// "Retry User Payment"; кошельки сознательно не трогаются и состояние
// корзины не перепроверяется — унаследованное поведение.
func (r *CartRepository) RetryFailedCheckout(ctx context.Context, userID uuid.UUID, paymentMethod string) (*models.CartHistoryEntry, []models.Transaction, error) {
	var (
		entry        *models.CartHistoryEntry
		transactions []models.Transaction
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		cart, err := lockCartByUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		var orders []models.Order
		if err := tx.SelectContext(ctx, &orders, `
			SELECT o.id, o.user_id, o.service_id, o.freelancer_id, o.cart_id, o.status,
			       o.order_price, o.rating_id, o.transaction_id, o.created_at, o.updated_at
			FROM orders o
			JOIN transactions t ON t.id = o.transaction_id
			WHERE o.user_id = $1 AND t.status = $2
			ORDER BY o.created_at
			FOR UPDATE OF o
		`, userID, models.TransactionStatusFailed); err != nil {
			return fmt.Errorf("cart repository: retry orders: %w", err)
		}
		if len(orders) == 0 {
			return ErrNoFailedPayments
		}

		platform, err := lockPlatformWalletTx(ctx, tx)
		if err != nil {
			return err
		}

		var total float64
		for i := range orders {
			t := models.Transaction{
				FromID:        userID,
				FromModel:     models.PrincipalUser,
				ToID:          platform.OwnerID,
				ToModel:       models.PrincipalAdmin,
				Type:          models.TransactionTypeRetryUserPayment,
				Amount:        orders[i].OrderPrice,
				PaymentMethod: paymentMethod,
				Status:        models.TransactionStatusSuccess,
			}
			if err := insertTransactionTx(ctx, tx, &t); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE orders SET transaction_id = $2, updated_at = NOW() WHERE id = $1
			`, orders[i].ID, t.ID); err != nil {
				return fmt.Errorf("cart repository: reattach transaction: %w", err)
			}
			transactions = append(transactions, t)
			total += orders[i].OrderPrice
		}

		entry = &models.CartHistoryEntry{CartID: cart.ID, Total: total}
		row := tx.QueryRowxContext(ctx, `
			INSERT INTO cart_history (cart_id, total) VALUES ($1, $2)
			RETURNING id, purchased_at
		`, cart.ID, total)
		if err := row.Scan(&entry.ID, &entry.PurchasedAt); err != nil {
			return fmt.Errorf("cart repository: retry history entry: %w", err)
		}

		inserter := common.NewBatchInserter(tx, `INSERT INTO cart_history_orders (history_id, order_id)`, 2, 100)
		for i := range orders {
			if err := inserter.Add(ctx, entry.ID, orders[i].ID); err != nil {
				return fmt.Errorf("cart repository: retry link order: %w", err)
			}
		}
		if err := inserter.Flush(ctx); err != nil {
			return fmt.Errorf("cart repository: retry link orders: %w", err)
		}
		entry.Orders = orders

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET cart_id = NULL, updated_at = NOW() WHERE cart_id = $1
		`, cart.ID); err != nil {
			return fmt.Errorf("cart repository: retry detach orders: %w", err)
		}

		return recomputeCartTx(ctx, tx, cart.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	return entry, transactions, nil
}

func (r *CartRepository) cartOrders(ctx context.Context, cartID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT id, user_id, service_id, freelancer_id, cart_id, status, order_price,
		       rating_id, transaction_id, created_at, updated_at
		FROM orders WHERE cart_id = $1 ORDER BY created_at
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("cart repository: cart orders: %w", err)
	}

	for i := range orders {
		var addons []models.AddOn
		err := r.db.SelectContext(ctx, &addons, `
			SELECT a.id, a.service_id, a.title, a.duration_days, a.price, a.created_at
			FROM addons a
			JOIN order_addons oa ON oa.addon_id = a.id
			WHERE oa.order_id = $1
			ORDER BY a.created_at
		`, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("cart repository: order addons: %w", err)
		}
		orders[i].AddOns = addons
	}

	return orders, nil
}

// --- Помощники корзины внутри транзакций. ---

// upsertCartTx возвращает id корзины пользователя, создавая её при
// необходимости. Комиссия новой корзины берётся из глобальной настройки.
func upsertCartTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (uuid.UUID, error) {
	var cartID uuid.UUID
	err := tx.GetContext(ctx, &cartID, `
		INSERT INTO carts (user_id, platform_fee)
		VALUES ($1, (SELECT value FROM platform_settings WHERE key = 'platform_fee'))
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("cart tx: upsert cart: %w", err)
	}
	return cartID, nil
}

// lockCartByUserTx блокирует корзину пользователя до конца транзакции.
func lockCartByUserTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := tx.GetContext(ctx, &cart, `
		SELECT id, user_id, subtotal, platform_fee, total, created_at, updated_at
		FROM carts WHERE user_id = $1 FOR UPDATE
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("cart tx: lock cart: %w", err)
	}
	return &cart, nil
}

// recomputeCartTx пересчитывает subtotal из живых заказов корзины.
// Итоги никогда не накапливаются инкрементально: источником истины
// всегда служат сами заказы, total = subtotal + platform_fee.
func recomputeCartTx(ctx context.Context, tx *sqlx.Tx, cartID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE carts
		SET subtotal = s.sum,
		    total = s.sum + carts.platform_fee,
		    updated_at = NOW()
		FROM (SELECT COALESCE(SUM(order_price), 0) AS sum FROM orders WHERE cart_id = $1) s
		WHERE carts.id = $1
	`, cartID)
	if err != nil {
		return fmt.Errorf("cart tx: recompute cart: %w", err)
	}
	return nil
}
