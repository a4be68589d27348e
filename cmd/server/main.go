package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/hirokisan/task-tracker-api/internal/config"
	"github.com/hirokisan/task-tracker-api/internal/database"
	"github.com/hirokisan/task-tracker-api/internal/handlers"
	"github.com/hirokisan/task-tracker-api/internal/identity"
	"github.com/hirokisan/task-tracker-api/internal/middleware"
	"github.com/hirokisan/task-tracker-api/internal/repository"
	"github.com/hirokisan/task-tracker-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// External identity provider
	provider := identity.NewOIDCProvider(cfg)

	// Initialize repositories and services
	userRepo := repository.NewUserRepository(database.GetDB())
	taskRepo := repository.NewTaskRepository(database.GetDB())
	authService := services.NewAuthService(userRepo, provider)
	taskService := services.NewTaskService(taskRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, authService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	// Auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", authHandler.SignIn)
		auth.GET("/me", middleware.RequireAuth(provider), authHandler.GetCurrentUser)
		auth.GET("/logout", middleware.RequireAuth(provider), authHandler.Logout)
	}

	// Task routes (protected)
	tasks := r.Group("/tasks")
	tasks.Use(middleware.RequireAuth(provider))
	{
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("", taskHandler.ListTasks)
		tasks.GET("/status/:status", taskHandler.ListTasksByStatus)
		tasks.GET("/:id", middleware.RequireTaskOwnership(), taskHandler.GetTask)
		tasks.PUT("/:id", middleware.RequireTaskOwnership(), taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
