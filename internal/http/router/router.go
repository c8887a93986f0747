package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-backend/internal/config"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers"
	"github.com/ignatzorin/marketplace-backend/internal/http/middleware"
	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// Handlers собирает все хэндлеры приложения для роутера.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Catalog      *handlers.CatalogHandler
	Order        *handlers.OrderHandler
	Cart         *handlers.CartHandler
	Wallet       *handlers.WalletHandler
	Transaction  *handlers.TransactionHandler
	Post         *handlers.PostHandler
	Chat         *handlers.ChatHandler
	Subscription *handlers.SubscriptionHandler
	Media        *handlers.MediaHandler
	WS           *handlers.WSHandler
	Health       *handlers.HealthHandler
}

// SetupRouter настраивает маршруты и middleware.
func SetupRouter(cfg *config.Config, h Handlers, tokens *service.TokenManager) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	// Локальные файлы отдаются статикой; для S3 ссылки подписываются.
	if cfg.AWSS3Bucket == "" {
		r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokens))
	{
		protectedAuth.POST("/logout", h.Auth.Logout)
		protectedAuth.GET("/me", h.Auth.Me)
		protectedAuth.PATCH("/me/username", h.Auth.UpdateUsername)
		protectedAuth.GET("/sessions", h.Auth.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), h.Auth.DeleteSession)
	}

	// Публичные маршруты
	api.GET("/categories", h.Catalog.ListCategories)
	api.GET("/subcategories/:id/services", middleware.UUIDValidator("id"), h.Catalog.ListServices)
	api.GET("/services/:id", middleware.UUIDValidator("id"), h.Catalog.GetService)
	api.GET("/services/:id/ratings", middleware.UUIDValidator("id"), h.Order.ListServiceRatings)
	api.GET("/posts", h.Post.ListFeed)
	api.GET("/plans", h.Subscription.ListPlans)
	api.GET("/cart/fee", h.Cart.GetPlatformFee)
	api.GET("/ws/rooms/:id", h.WS.Handle)

	// Защищённые маршруты: доступ гейтится по типу аккаунта.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	user := protected.Group("/")
	user.Use(middleware.RequireRole(models.PrincipalUser))
	{
		user.POST("/orders", h.Order.Create)
		user.GET("/orders", h.Order.ListOwn)
		user.PATCH("/orders/:id/addons", middleware.UUIDValidator("id"), h.Order.UpdateAddOns)
		user.DELETE("/orders/:id", middleware.UUIDValidator("id"), h.Order.Delete)
		user.POST("/orders/:id/rate", middleware.UUIDValidator("id"), h.Order.Rate)

		user.GET("/cart", h.Cart.Get)
		user.DELETE("/cart", h.Cart.Clear)
		user.GET("/cart/history", h.Cart.GetHistory)
		user.POST("/cart/checkout", h.Cart.Checkout)
		user.POST("/cart/checkout/retry", h.Cart.RetryCheckout)
	}

	freelancer := protected.Group("/")
	freelancer.Use(middleware.RequireRole(models.PrincipalFreelancer))
	{
		freelancer.POST("/services", h.Catalog.CreateService)
		freelancer.PUT("/services/:id", middleware.UUIDValidator("id"), h.Catalog.UpdateService)
		freelancer.DELETE("/services/:id", middleware.UUIDValidator("id"), h.Catalog.DeleteService)
		freelancer.POST("/services/:id/addons", middleware.UUIDValidator("id"), h.Catalog.CreateAddOn)
		freelancer.DELETE("/services/:id/addons/:addonId", middleware.UUIDValidator("id"), middleware.UUIDValidator("addonId"), h.Catalog.DeleteAddOn)

		freelancer.GET("/freelancers/me/services", h.Catalog.ListOwnServices)
		freelancer.GET("/freelancers/me/orders", h.Order.ListAssigned)
		freelancer.PATCH("/freelancers/me/profile", h.Auth.UpdateFreelancerProfile)

		freelancer.POST("/orders/:id/start", middleware.UUIDValidator("id"), h.Order.Start)
		freelancer.POST("/orders/:id/end", middleware.UUIDValidator("id"), h.Order.End)

		freelancer.GET("/wallet", h.Wallet.GetOwn)
		freelancer.POST("/wallet/credit", h.Wallet.Credit)
		freelancer.POST("/wallet/debit", h.Wallet.Debit)
	}

	influencer := protected.Group("/")
	influencer.Use(middleware.RequireRole(models.PrincipalInfluencer))
	{
		influencer.POST("/subscriptions", h.Subscription.Subscribe)
	}

	// Общие маршруты для всех авторизованных
	{
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), h.Order.Get)
		protected.POST("/orders/:id/chat", middleware.UUIDValidator("id"), h.Chat.OpenOrderRoom)

		protected.GET("/transactions", h.Transaction.ListOwn)
		protected.GET("/transactions/:id", middleware.UUIDValidator("id"), h.Transaction.Get)

		protected.POST("/posts", h.Post.Create)
		protected.GET("/posts/mine", h.Post.ListOwn)
		protected.GET("/posts/:id", middleware.UUIDValidator("id"), h.Post.Get)
		protected.DELETE("/posts/:id", middleware.UUIDValidator("id"), h.Post.Delete)
		protected.POST("/posts/:id/comments", middleware.UUIDValidator("id"), h.Post.AddComment)
		protected.DELETE("/comments/:id", middleware.UUIDValidator("id"), h.Post.DeleteComment)

		protected.GET("/chat/rooms", h.Chat.ListRooms)
		protected.GET("/chat/rooms/:id/messages", middleware.UUIDValidator("id"), h.Chat.History)
		protected.POST("/chat/rooms/:id/messages", middleware.UUIDValidator("id"), h.Chat.SendMessage)

		protected.POST("/media/photos", h.Media.UploadPhoto)
		protected.DELETE("/media/photos", h.Media.DeletePhoto)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.PrincipalAdmin))
	{
		admin.GET("/principals/:role", h.Auth.ListPrincipals)
		admin.PATCH("/principals/:role/:id/active", middleware.UUIDValidator("id"), h.Auth.SetActive)

		admin.POST("/categories", h.Catalog.CreateCategory)
		admin.DELETE("/categories/:id", middleware.UUIDValidator("id"), h.Catalog.DeleteCategory)
		admin.POST("/categories/:id/subcategories", middleware.UUIDValidator("id"), h.Catalog.CreateSubcategory)
		admin.DELETE("/subcategories/:id", middleware.UUIDValidator("id"), h.Catalog.DeleteSubcategory)
		admin.GET("/services/unapproved", h.Catalog.ListUnapproved)
		admin.POST("/services/:id/approve", middleware.UUIDValidator("id"), h.Catalog.ApproveService)

		admin.PUT("/cart/fee", h.Cart.SetPlatformFee)

		admin.GET("/wallet/platform", h.Wallet.GetPlatform)
		admin.GET("/wallets", h.Wallet.ListAll)
		admin.PUT("/wallets/:id/balance", middleware.UUIDValidator("id"), h.Wallet.SetBalance)

		admin.GET("/transactions", h.Transaction.ListAll)
		admin.PATCH("/transactions/:id/status", middleware.UUIDValidator("id"), h.Transaction.UpdateStatus)

		admin.POST("/plans", h.Subscription.CreatePlan)
		admin.DELETE("/plans/:id", middleware.UUIDValidator("id"), h.Subscription.DeletePlan)
	}

	return r
}
