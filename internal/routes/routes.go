package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-api-server/internal/config"
	"clinic-api-server/internal/handlers"
	"clinic-api-server/internal/middleware"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	doctorHandler := handlers.NewDoctorHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	mappingHandler := handlers.NewMappingHandler(db)

	// Public routes (no authentication required)
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/token/refresh", authHandler.RefreshToken)
	}

	// Authenticated routes
	private := router.Group("")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authPrivate := private.Group("/auth")
		{
			authPrivate.POST("/logout", authHandler.Logout)
			authPrivate.GET("/profile", authHandler.GetProfile)
			authPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		doctors := private.Group("/doctors")
		{
			doctors.GET("", doctorHandler.ListDoctors)
			doctors.POST("", doctorHandler.CreateDoctor)
			doctors.GET("/specializations", doctorHandler.ListSpecializations)
			doctors.GET("/:id", doctorHandler.GetDoctor)
			doctors.PUT("/:id", doctorHandler.UpdateDoctor)
			doctors.PATCH("/:id", doctorHandler.PartialUpdateDoctor)
			doctors.DELETE("/:id", doctorHandler.DeleteDoctor)
		}

		patients := private.Group("/patients")
		{
			patients.GET("", patientHandler.ListPatients)
			patients.POST("", patientHandler.CreatePatient)
			patients.GET("/:id", patientHandler.GetPatient)
			patients.PUT("/:id", patientHandler.UpdatePatient)
			patients.PATCH("/:id", patientHandler.PartialUpdatePatient)
			patients.DELETE("/:id", patientHandler.DeletePatient)
		}

		mappings := private.Group("/mappings")
		{
			mappings.GET("", mappingHandler.ListMappings)
			mappings.POST("", mappingHandler.CreateMapping)
			mappings.GET("/by_patient", mappingHandler.ListByPatient)
			mappings.GET("/statuses", mappingHandler.ListStatuses)
			mappings.GET("/:id", mappingHandler.GetMapping)
			mappings.PUT("/:id", mappingHandler.UpdateMapping)
			mappings.PATCH("/:id", mappingHandler.PartialUpdateMapping)
			mappings.DELETE("/:id", mappingHandler.DeleteMapping)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
