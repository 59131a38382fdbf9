package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tycoon-backend/internal/auth"
	"tycoon-backend/internal/bot"
	"tycoon-backend/internal/config"
	"tycoon-backend/internal/database"
	"tycoon-backend/internal/handlers"
	"tycoon-backend/internal/jobs"
	"tycoon-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	tokenManager := auth.NewTokenManager(
		cfg.App.JWTSecret,
		time.Duration(cfg.App.AccessTokenTTLMinutes)*time.Minute,
	)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Connect to redis (bot session state)
	rdb, err := database.ConnectRedis(cfg.GetRedisAddr(), cfg.Redis.Password)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	db := database.GetDB()

	// Initialize services
	rewardService := services.NewRewardService(db)
	referralService := services.NewReferralService(db, rewardService)
	userService := services.NewUserService(db, cfg.Game, referralService, rewardService)
	marketService := services.NewMarketService(db)
	enterpriseService := services.NewEnterpriseService(db)
	boostService := services.NewBoostService(db)
	caseService := services.NewCaseService(db)
	paymentService := services.NewPaymentService(db, userService, enterpriseService, boostService, caseService)
	authService := services.NewAuthService(db, tokenManager, userService, cfg.App, cfg.Telegram.BotToken)

	if pruned, err := authService.PruneExpiredSessions(); err != nil {
		log.Printf("Failed to prune expired sessions: %v", err)
	} else if pruned > 0 {
		log.Printf("Pruned %d expired refresh sessions", pruned)
	}

	// Initialize bot
	gameBot, err := bot.NewBot(cfg.Telegram, rdb, userService, paymentService)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	go gameBot.Start()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.App)
	userHandler := handlers.NewUserHandler(userService, referralService, rewardService, enterpriseService, caseService)
	marketHandler := handlers.NewMarketHandler(marketService)
	paymentHandler := handlers.NewPaymentHandler(gameBot.Instance, paymentService, enterpriseService, boostService, caseService)
	adminHandler := handlers.NewAdminHandler(userService)
	webhookHandler := handlers.NewWebhookHandler(cfg.Telegram.WebhookSecret, gameBot.Updates)

	// Start background jobs
	ratingJob := jobs.NewRatingJob(db, 5*time.Minute)
	go ratingJob.Start()
	log.Println("Rating job started")

	energyJob := jobs.NewEnergyJob(db, boostService, cfg.Game.EnergyLimit, cfg.Game.EnergyLimit/100, time.Minute)
	go energyJob.Start()
	log.Println("Energy job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.App.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.App.FrontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Telegram webhook
	router.POST("/webhook/telegram", webhookHandler.Handle)

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/swagger_login", authHandler.SwaggerLogin)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated auth routes
	authProtected := router.Group("/auth")
	authProtected.Use(auth.Middleware(tokenManager))
	{
		authProtected.POST("/logout_all", authHandler.LogoutAll)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.Middleware(tokenManager))
	{
		// User endpoints
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
			userRoutes.PATCH("/profile", userHandler.UpdateProfile)
			userRoutes.POST("/tap", userHandler.Tap)
			userRoutes.GET("/referrals", userHandler.GetReferrals)
			userRoutes.GET("/rewards/referral", userHandler.GetReferralRewards)
			userRoutes.POST("/rewards/referral/claim", userHandler.ClaimReferralReward)
			userRoutes.GET("/rewards/daily", userHandler.GetDailyRewards)
			userRoutes.POST("/rewards/daily/claim", userHandler.ClaimDailyReward)
			userRoutes.GET("/enterprises", userHandler.GetEnterprises)
			userRoutes.POST("/enterprises/buy", userHandler.BuyEnterprise)
			userRoutes.POST("/cases/open", userHandler.OpenCase)
		}

		// Rating endpoints
		api.GET("/rating/region", userHandler.RegionRating)

		// Market endpoints
		marketRoutes := api.Group("/market")
		{
			marketRoutes.GET("/listings", marketHandler.Browse)
			marketRoutes.POST("/listings", marketHandler.CreateListing)
			marketRoutes.POST("/listings/:id/prices", marketHandler.AddPrice)
			marketRoutes.POST("/listings/:id/buy", marketHandler.Buy)
			marketRoutes.GET("/my/listings", marketHandler.MyListings)
			marketRoutes.GET("/my/history", marketHandler.MyHistory)
		}

		// Stars payment endpoints
		paymentRoutes := api.Group("/stars_payment")
		{
			paymentRoutes.POST("/getInvoiceLink", paymentHandler.GetInvoiceLink)
			paymentRoutes.GET("/my", paymentHandler.MyPayments)
		}
	}

	// Admin routes (protected + superuser only)
	admin := router.Group("/api/admin")
	admin.Use(auth.Middleware(tokenManager))
	admin.Use(adminHandler.SuperuserMiddleware())
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/users", adminHandler.GetUsers)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.POST("/stars_payment/makeRefund", paymentHandler.MakeRefund)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ratingJob.Stop()
	energyJob.Stop()
	gameBot.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
