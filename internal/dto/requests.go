package dto

import (
	"github.com/google/uuid"
)

// RegisterRequest представляет запрос на регистрацию аккаунта.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginRequest представляет запрос на вход.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// RefreshRequest представляет запрос на обновление токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateUsernameRequest представляет запрос на смену имени.
type UpdateUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// UpdateFreelancerProfileRequest представляет запрос на смену профиля фрилансера.
type UpdateFreelancerProfileRequest struct {
	Bio      *string `json:"bio"`
	PhotoKey *string `json:"photo_key"`
}

// SetActiveRequest представляет админский запрос на блокировку аккаунта.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreateCategoryRequest представляет запрос на создание категории.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateServiceRequest представляет запрос на создание услуги.
type CreateServiceRequest struct {
	CategoryID    string  `json:"category_id" binding:"required"`
	SubcategoryID string  `json:"subcategory_id" binding:"required"`
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description" binding:"required"`
	Price         float64 `json:"price" binding:"required,gt=0"`
}

// UpdateServiceRequest представляет запрос на обновление услуги.
type UpdateServiceRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	PhotoKey    *string `json:"photo_key"`
}

// CreateAddOnRequest представляет запрос на создание дополнения.
type CreateAddOnRequest struct {
	Title        string  `json:"title" binding:"required"`
	DurationDays int     `json:"duration_days" binding:"required,gt=0"`
	Price        float64 `json:"price" binding:"required,gt=0"`
}

// CreateOrderRequest представляет запрос на создание заказа.
type CreateOrderRequest struct {
	ServiceID string   `json:"service_id" binding:"required"`
	AddOnIDs  []string `json:"addon_ids"`
}

// UpdateOrderAddOnsRequest представляет запрос на замену дополнений заказа.
type UpdateOrderAddOnsRequest struct {
	AddOnIDs []string `json:"addon_ids"`
}

// EndOrderRequest представляет запрос на завершение заказа.
type EndOrderRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// RateOrderRequest представляет запрос на оценку заказа.
type RateOrderRequest struct {
	Value   int     `json:"value" binding:"required"`
	Comment *string `json:"comment"`
}

// CheckoutRequest представляет запрос на оплату корзины.
// PaymentStatus приходит от платёжной заглушки: success или failed.
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status"`
}

// RetryCheckoutRequest представляет запрос на повтор неуспешной оплаты.
type RetryCheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// SetPlatformFeeRequest представляет админский запрос на смену комиссии.
type SetPlatformFeeRequest struct {
	Fee *float64 `json:"fee" binding:"required"`
}

// WalletAmountRequest представляет запрос на пополнение или списание.
type WalletAmountRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// SetBalanceRequest представляет админский запрос на перезапись баланса.
type SetBalanceRequest struct {
	Balance *float64 `json:"balance" binding:"required"`
}

// UpdateTransactionStatusRequest представляет админскую правку журнала.
type UpdateTransactionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreatePostRequest представляет запрос на создание поста.
type CreatePostRequest struct {
	Title    string  `json:"title" binding:"required"`
	Body     string  `json:"body" binding:"required"`
	PhotoKey *string `json:"photo_key"`
}

// CreateCommentRequest представляет запрос на создание комментария.
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// SendMessageRequest представляет запрос на отправку сообщения в комнату.
type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// CreatePlanRequest представляет запрос на создание тарифного плана.
type CreatePlanRequest struct {
	Name         string  `json:"name" binding:"required"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	DurationDays int     `json:"duration_days" binding:"required,gt=0"`
}

// SubscribeRequest представляет запрос на оформление подписки.
type SubscribeRequest struct {
	PlanID        string `json:"plan_id" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

// ParseAddOnIDs возвращает идентификаторы дополнений заказа.
func (r *CreateOrderRequest) ParseAddOnIDs() ([]uuid.UUID, error) {
	return parseUUIDSlice(r.AddOnIDs)
}

// ParseAddOnIDs возвращает идентификаторы дополнений заказа.
func (r *UpdateOrderAddOnsRequest) ParseAddOnIDs() ([]uuid.UUID, error) {
	return parseUUIDSlice(r.AddOnIDs)
}

// parseUUIDSlice конвертирует срез строк в срез UUID.
func parseUUIDSlice(strs []string) ([]uuid.UUID, error) {
	if strs == nil {
		return nil, nil
	}

	var uuids []uuid.UUID
	for _, str := range strs {
		if str == "" {
			continue
		}
		parsed, err := uuid.Parse(str)
		if err != nil {
			return nil, err
		}
		uuids = append(uuids, parsed)
	}
	return uuids, nil
}
