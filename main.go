package main

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"clinic-api-server/internal/config"
	"clinic-api-server/internal/logger"
	"clinic-api-server/internal/models"
	"clinic-api-server/internal/routes"
)

func main() {
	logger.Init()

	// Load environment variables; a missing .env is fine in production.
	if err := godotenv.Load(); err != nil {
		logger.Log.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatalf("Error loading config: %v", err)
	}

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		logger.Log.Fatalf("Error connecting to database: %v", err)
	}

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, cfg)

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	logger.WithField("port", cfg.Port).Info("server starting")
	if err := router.Run(serverAddr); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
