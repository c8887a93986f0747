package models

// PrincipalModel типы аккаунтов платформы
const (
	PrincipalUser       = "user"
	PrincipalFreelancer = "freelancer"
	PrincipalInfluencer = "influencer"
	PrincipalAdmin      = "admin"
)

// OrderStatus константы статусов заказов
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
)

// TransactionType типы движений средств
const (
	TransactionTypeUserPayment      = "User Payment"
	TransactionTypeFreelancePayment = "Freelance Payment"
	TransactionTypeSubscription     = "Subscription"
	TransactionTypeRetryUserPayment = "Retry User Payment"
)

// TransactionStatus статусы транзакций
const (
	TransactionStatusSuccess = "success"
	TransactionStatusFailed  = "failed"
	TransactionStatusPending = "pending"
)

// PaymentMethod способы оплаты
const (
	PaymentMethodCard   = "card"
	PaymentMethodPaypal = "paypal"
	PaymentMethodVisa   = "visa"
)

// WalletOwner владельцы кошельков: фрилансеры и единственный платформенный
const (
	WalletOwnerFreelancer = "freelancer"
	WalletOwnerAdmin      = "admin"
)

// ValidPrincipalModels список валидных типов аккаунтов
var ValidPrincipalModels = map[string]struct{}{
	PrincipalUser:       {},
	PrincipalFreelancer: {},
	PrincipalInfluencer: {},
	PrincipalAdmin:      {},
}

// ValidOrderStatuses список валидных статусов заказов
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusPending:    {},
	OrderStatusInProgress: {},
	OrderStatusCompleted:  {},
}

// ValidTransactionStatuses список валидных статусов транзакций
var ValidTransactionStatuses = map[string]struct{}{
	TransactionStatusSuccess: {},
	TransactionStatusFailed:  {},
	TransactionStatusPending: {},
}

// ValidPaymentMethods список валидных способов оплаты
var ValidPaymentMethods = map[string]struct{}{
	PaymentMethodCard:   {},
	PaymentMethodPaypal: {},
	PaymentMethodVisa:   {},
}
