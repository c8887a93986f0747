//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/marketplace-backend/internal/db"
	"github.com/ignatzorin/marketplace-backend/internal/models"
)

// Интеграционные тесты денежной арифметики. Гоняются против живого Postgres:
//
//	TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/
//
// Каждый тест работает со своими принципалами, поэтому между прогонами базу
// чистить не обязательно; баланс платформенного кошелька общий, и все проверки
// по нему сделаны через дельту.

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL не задан")
	}

	conn, err := db.NewPostgres(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(context.Background(), conn, "../../migrations"))
	return conn
}

func seedUser(t *testing.T, conn *sqlx.DB) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	tag := uuid.NewString()
	err := conn.Get(&id, `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, 'x') RETURNING id
	`, "user-"+tag+"@test.local", "user-"+tag)
	require.NoError(t, err)
	return id
}

func seedFreelancer(t *testing.T, conn *sqlx.DB) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	tag := uuid.NewString()
	err := conn.Get(&id, `
		INSERT INTO freelancers (email, username, password_hash)
		VALUES ($1, $2, 'x') RETURNING id
	`, "fl-"+tag+"@test.local", "fl-"+tag)
	require.NoError(t, err)
	return id
}

func seedService(t *testing.T, conn *sqlx.DB, freelancerID uuid.UUID, price float64) uuid.UUID {
	t.Helper()
	tag := uuid.NewString()

	var categoryID uuid.UUID
	err := conn.Get(&categoryID, `
		INSERT INTO categories (name, slug) VALUES ('cat', $1) RETURNING id
	`, "cat-"+tag)
	require.NoError(t, err)

	var subcategoryID uuid.UUID
	err = conn.Get(&subcategoryID, `
		INSERT INTO subcategories (category_id, name, slug) VALUES ($1, 'sub', $2) RETURNING id
	`, categoryID, "sub-"+tag)
	require.NoError(t, err)

	var serviceID uuid.UUID
	err = conn.Get(&serviceID, `
		INSERT INTO services (freelancer_id, category_id, subcategory_id, title, description, price, is_approved)
		VALUES ($1, $2, $3, 'svc', 'svc', $4, TRUE) RETURNING id
	`, freelancerID, categoryID, subcategoryID, price)
	require.NoError(t, err)
	return serviceID
}

func createOrder(t *testing.T, repo *OrderRepository, userID, serviceID, freelancerID uuid.UUID, price float64) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:       userID,
		ServiceID:    serviceID,
		FreelancerID: freelancerID,
		OrderPrice:   price,
	}
	require.NoError(t, repo.Create(context.Background(), order, nil))
	return order
}

func freelancerBalance(t *testing.T, wallets *WalletRepository, freelancerID uuid.UUID) float64 {
	t.Helper()
	w, err := wallets.GetOrCreate(context.Background(), freelancerID, models.WalletOwnerFreelancer)
	require.NoError(t, err)
	return w.Balance
}

func platformBalance(t *testing.T, wallets *WalletRepository) float64 {
	t.Helper()
	w, err := wallets.GetPlatform(context.Background())
	require.NoError(t, err)
	return w.Balance
}

func TestOrderRepository_LiteralSettlementNetsToZero(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(conn)
	wallets := NewWalletRepository(conn)

	userID := seedUser(t, conn)
	freelancerID := seedFreelancer(t, conn)
	serviceID := seedService(t, conn, freelancerID, 100)
	order := createOrder(t, orders, userID, serviceID, freelancerID, 100)

	platformBefore := platformBalance(t, wallets)

	// literal: кредит фрилансеру при старте.
	started, err := orders.Start(ctx, order.ID, freelancerID, true)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, started.Status)
	assert.Equal(t, float64(100), freelancerBalance(t, wallets, freelancerID))

	// При завершении дебетуются оба кошелька: по итогу start+end фрилансер в нуле.
	ended, payout, err := orders.End(ctx, order.ID, freelancerID, models.PaymentMethodCard, true)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, ended.Status)
	assert.Equal(t, float64(0), freelancerBalance(t, wallets, freelancerID))
	assert.Equal(t, platformBefore-100, platformBalance(t, wallets))

	require.NotNil(t, payout)
	assert.Equal(t, models.TransactionTypeFreelancePayment, payout.Type)
	assert.Equal(t, models.TransactionStatusSuccess, payout.Status)
	assert.Equal(t, float64(100), payout.Amount)
}

func TestOrderRepository_EscrowSettlementSingleCredit(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(conn)
	wallets := NewWalletRepository(conn)

	userID := seedUser(t, conn)
	freelancerID := seedFreelancer(t, conn)
	serviceID := seedService(t, conn, freelancerID, 80)
	order := createOrder(t, orders, userID, serviceID, freelancerID, 80)

	platformBefore := platformBalance(t, wallets)

	// escrow: старт денег не двигает.
	_, err := orders.Start(ctx, order.ID, freelancerID, false)
	require.NoError(t, err)
	assert.Equal(t, float64(0), freelancerBalance(t, wallets, freelancerID))

	// Единственный кредит фрилансеру при завершении.
	_, _, err = orders.End(ctx, order.ID, freelancerID, models.PaymentMethodCard, false)
	require.NoError(t, err)
	assert.Equal(t, float64(80), freelancerBalance(t, wallets, freelancerID))
	assert.Equal(t, platformBefore-80, platformBalance(t, wallets))
}

func TestOrderRepository_BusyIndexRejectsSecondStart(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(conn)

	userID := seedUser(t, conn)
	freelancerID := seedFreelancer(t, conn)
	serviceID := seedService(t, conn, freelancerID, 50)
	first := createOrder(t, orders, userID, serviceID, freelancerID, 50)
	second := createOrder(t, orders, userID, serviceID, freelancerID, 50)

	_, err := orders.Start(ctx, first.ID, freelancerID, false)
	require.NoError(t, err)

	_, err = orders.Start(ctx, second.ID, freelancerID, false)
	assert.ErrorIs(t, err, ErrFreelancerBusy)
}

func TestCartRepository_CheckoutCreditsPlatformTotal(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(conn)
	carts := NewCartRepository(conn)
	wallets := NewWalletRepository(conn)

	userID := seedUser(t, conn)
	freelancerID := seedFreelancer(t, conn)
	serviceID := seedService(t, conn, freelancerID, 100)
	createOrder(t, orders, userID, serviceID, freelancerID, 100)
	createOrder(t, orders, userID, serviceID, freelancerID, 40)

	// Итоги корзины пересчитаны из заказов, total = subtotal + fee.
	cart, err := carts.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, float64(140), cart.Subtotal)
	assert.Equal(t, cart.Subtotal+cart.PlatformFee, cart.Total)

	platformBefore := platformBalance(t, wallets)

	entry, transactions, err := carts.Checkout(ctx, userID, models.PaymentMethodCard, true)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, cart.Total, entry.Total)
	assert.Len(t, transactions, 2)
	for _, tr := range transactions {
		assert.Equal(t, models.TransactionTypeUserPayment, tr.Type)
		assert.Equal(t, models.TransactionStatusSuccess, tr.Status)
	}

	// Платформа получает ровно сумму заказов плюс комиссию.
	assert.Equal(t, platformBefore+cart.Total, platformBalance(t, wallets))

	// Заказы откреплены, корзина пересчитана в ноль.
	after, err := carts.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, after.Orders)
	assert.Equal(t, float64(0), after.Subtotal)
	assert.Equal(t, after.PlatformFee, after.Total)
}

func TestCartRepository_FailedCheckoutCommitsJournalOnly(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(conn)
	carts := NewCartRepository(conn)
	wallets := NewWalletRepository(conn)

	userID := seedUser(t, conn)
	freelancerID := seedFreelancer(t, conn)
	serviceID := seedService(t, conn, freelancerID, 60)
	createOrder(t, orders, userID, serviceID, freelancerID, 60)

	platformBefore := platformBalance(t, wallets)

	entry, transactions, err := carts.Checkout(ctx, userID, models.PaymentMethodCard, false)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Nil(t, entry)

	// Failed-записи закоммичены и привязаны к заказам.
	require.Len(t, transactions, 1)
	assert.Equal(t, models.TransactionStatusFailed, transactions[0].Status)

	var attached int
	require.NoError(t, conn.Get(&attached, `
		SELECT COUNT(*) FROM orders WHERE transaction_id = $1
	`, transactions[0].ID))
	assert.Equal(t, 1, attached)

	// Деньги не двигались, корзина жива.
	assert.Equal(t, platformBefore, platformBalance(t, wallets))
	cart, err := carts.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, cart.Orders, 1)
	assert.Equal(t, float64(60), cart.Subtotal)
}

func TestOrderRepository_DeleteRecomputesSubtotal(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(conn)
	carts := NewCartRepository(conn)

	userID := seedUser(t, conn)
	freelancerID := seedFreelancer(t, conn)
	serviceID := seedService(t, conn, freelancerID, 100)
	keep := createOrder(t, orders, userID, serviceID, freelancerID, 100)
	drop := createOrder(t, orders, userID, serviceID, freelancerID, 40)

	require.NoError(t, orders.Delete(ctx, drop.ID, userID))

	cart, err := carts.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Orders, 1)
	assert.Equal(t, keep.ID, cart.Orders[0].ID)
	assert.Equal(t, float64(100), cart.Subtotal)
	assert.Equal(t, cart.Subtotal+cart.PlatformFee, cart.Total)
}
