package main

import (
	"fmt"
	"log"
	"os"

	"remindme/internal/auth"
	"remindme/internal/database"
	"remindme/internal/handlers"
	"remindme/internal/services"
	"remindme/internal/store"
	"remindme/internal/whatsapp"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// This is our main function - the entry point of our application
func main() {
	// Load .env in development; production sets real env vars
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Initialize Google OAuth
	if err := auth.InitOAuth(); err != nil {
		log.Fatal("Failed to initialize OAuth:", err)
	}

	// WhatsApp gateway bridge
	gateway, err := whatsapp.NewGatewayFromEnv()
	if err != nil {
		log.Fatal("Failed to initialize WhatsApp gateway:", err)
	}

	st := store.NewGormStore(database.GetDB())
	registry := services.NewSessionRegistry()

	// Optional side services; the app runs fine without either
	var emailService *services.EmailService
	if os.Getenv("SENDGRID_API_KEY") != "" {
		emailService = services.NewEmailService()
	}
	avatarService, err := services.NewAvatarService()
	if err != nil {
		log.Printf("Avatar mirroring disabled: %v", err)
		avatarService = nil
	}

	sessionManager := services.NewSessionManager(st, registry, gateway, emailService, avatarService)
	sessionManager.Start()

	// Re-establish handles for sessions that were live before restart
	sessionManager.RestoreSessions()

	webhookService := services.NewWebhookService()
	worker := services.NewReminderWorker(st, registry, webhookService)
	worker.Start()

	// Initialize Gin router
	router := gin.Default()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = []string{origins}
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	sessionHandler := handlers.NewSessionHandler(sessionManager)
	gatewayWebhook := handlers.NewGatewayWebhookHandler(sessionManager)
	opsHandler := handlers.NewOpsHandler(worker)

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	// Auth routes (no auth required)
	router.GET("/auth/login", handlers.LoginHandler)
	router.GET("/auth/google/callback", handlers.GoogleCallbackHandler)

	// Gateway callbacks (token-guarded, no cookie auth)
	router.POST("/webhooks/gateway", gatewayWebhook.Handle)

	// Ops routes (token-guarded)
	router.POST("/admin/scheduler/tick", opsHandler.RunSchedulerTick)

	// Protected routes (auth required)
	protected := router.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/auth/logout", handlers.LogoutHandler)
		protected.GET("/auth/me", handlers.GetCurrentUser)

		protected.POST("/accounts/complete", handlers.CompleteProfile)
		protected.GET("/accounts/me", handlers.GetAccount)
		protected.PATCH("/accounts/me", handlers.UpdateAccount)

		protected.POST("/reminders", handlers.CreateReminder)
		protected.GET("/reminders", handlers.ListReminders)
		protected.GET("/reminders/:id", handlers.GetReminder)
		protected.PATCH("/reminders/:id", handlers.UpdateReminder)
		protected.DELETE("/reminders/:id", handlers.DeleteReminder)
		protected.GET("/reminders/:id/deliveries", handlers.ListDeliveries)

		protected.POST("/session/start", sessionHandler.Start)
		protected.POST("/session/stop", sessionHandler.Stop)
		protected.POST("/session/logout", sessionHandler.Logout)
		protected.GET("/session", sessionHandler.Status)
	}

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Server starting on port %s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
