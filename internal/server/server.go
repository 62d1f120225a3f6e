package server

import (
	"context"
	"net/http"

	"mawid/internal/auth"
	"mawid/internal/booking"
	"mawid/internal/chat"
	"mawid/internal/config"
	"mawid/internal/email"
	"mawid/internal/payment"
	"mawid/internal/payment/gateway"
	"mawid/internal/payout"
	"mawid/internal/provider"
	"mawid/internal/review"
	"mawid/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	db         *sqlx.DB
	config     *config.Config
	email      *email.Service

	// Sweeper is started by the caller alongside the HTTP server.
	Sweeper *booking.Sweeper
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	userHandler := user.NewHandler(userService)

	providerRepo := provider.NewRepository(db)
	providerHandler := provider.NewHandler(providerRepo)

	bookingRepo := booking.NewRepository(db)
	bookingService := booking.NewService(bookingRepo, providerRepo, emailService)
	bookingHandler := booking.NewHandler(bookingService)

	moyasar := gateway.NewMoyasar(cfg.MoyasarAPIKey, cfg.MoyasarBaseURL, cfg.MoyasarCallbackURL)
	paypal := gateway.NewPayPal(cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalBaseURL,
		gateway.NewFixedFXSource(cfg.SARToUSDRate))
	stripe := gateway.NewStripe(cfg.StripeSecretKey, cfg.StripeBaseURL)
	adapters := map[string]gateway.Adapter{
		gateway.GatewayMoyasar: moyasar,
		gateway.GatewayPayPal:  paypal,
		gateway.GatewayStripe:  stripe,
	}

	paymentRepo := payment.NewRepository(db)
	payoutRepo := payout.NewRepository(db)
	paymentService := payment.NewService(db, paymentRepo, bookingRepo, payoutRepo, adapters, emailService, cfg.PlatformFeeBps)
	paymentHandler := payment.NewHandler(paymentService, paymentRepo, bookingRepo, moyasar, paypal,
		cfg.WebhookSecret, cfg.ApplePayDisplayName, cfg.ApplePayDomainName)

	reviewHandler := review.NewHandler(review.NewRepository(db), bookingRepo)
	chatHandler := chat.NewHandler(chat.NewRepository(db), bookingRepo)
	payoutHandler := payout.NewHandler(payoutRepo, providerRepo)

	authRoutes := router.Group("/auth")
	authRoutes.Use(RateLimitMiddleware(5, 10))
	{
		authRoutes.POST("/register", userHandler.Register)
		authRoutes.POST("/login", userHandler.Login)
		authRoutes.POST("/refresh", userHandler.RefreshToken)
	}

	router.GET("/providers", providerHandler.ListProfiles)
	router.GET("/providers/:providerID", providerHandler.GetProfile)
	router.GET("/providers/:providerID/services", providerHandler.ListOfferings)
	router.GET("/providers/:providerID/reviews", reviewHandler.ListForProvider)
	router.GET("/categories", providerHandler.ListCategories)

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/moyasar", paymentHandler.MoyasarWebhook)
		webhooks.POST("/paypal", paymentHandler.PayPalWebhook)
		webhooks.POST("/stripe", paymentHandler.StripeWebhook)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTAccessSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.POST("/bookings", bookingHandler.Create)
		protected.GET("/bookings", bookingHandler.ListMine)
		protected.GET("/bookings/:bookingID", bookingHandler.Get)
		protected.GET("/bookings/:bookingID/payments", paymentHandler.ListBookingPayments)
		protected.POST("/bookings/:bookingID/review", reviewHandler.Create)
		protected.POST("/bookings/:bookingID/chat", chatHandler.OpenThread)
		protected.POST("/bookings/:bookingID/:action", bookingHandler.Transition)

		protected.GET("/chats", chatHandler.ListThreads)
		protected.GET("/chats/:threadID/messages", chatHandler.ListMessages)
		protected.POST("/chats/:threadID/messages", chatHandler.SendMessage)

		protected.POST("/payments/moyasar", paymentHandler.CreateMoyasarPayment)
		protected.GET("/payments/moyasar/:id", paymentHandler.GetMoyasarPayment)
		protected.POST("/payments/moyasar/:id/refund", auth.RequireRole(auth.RoleAdmin), paymentHandler.RefundMoyasarPayment)
		protected.POST("/payments/moyasar/apple-pay-session", paymentHandler.ApplePaySession)
		protected.POST("/payments/paypal", paymentHandler.CreatePayPalOrder)
		protected.GET("/payments/paypal/order-meta", paymentHandler.PayPalOrderMeta)
		protected.POST("/payments/stripe", paymentHandler.CreateStripeIntent)
	}

	providerOnly := router.Group("/")
	providerOnly.Use(authMiddleware, auth.RequireRole(auth.RoleProvider))
	{
		providerOnly.POST("/providers", providerHandler.CreateProfile)
		providerOnly.GET("/providers/me/bookings", bookingHandler.ListForProvider)
		providerOnly.POST("/providers/me/services", providerHandler.CreateOffering)
		providerOnly.DELETE("/providers/me/services/:serviceID", providerHandler.DeactivateOffering)
		providerOnly.GET("/payouts/balance", payoutHandler.Balance)
		providerOnly.GET("/payouts/transactions", payoutHandler.Transactions)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/categories", providerHandler.CreateCategory)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))
	SetupSwagger(router)

	sweeper := booking.NewSweeper(bookingRepo, emailService, cfg.SweepInterval, cfg.PendingMaxAge)

	return &Server{
		router:  router,
		db:      db,
		config:  cfg,
		email:   emailService,
		Sweeper: sweeper,
	}
}

func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
