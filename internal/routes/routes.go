package routes

import (
	"net/http"

	"clinic-appointments-server/internal/config"
	"clinic-appointments-server/internal/handlers"
	"clinic-appointments-server/internal/middleware"
	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) {
	// Services
	directory := services.NewUserDirectory(db)
	audit := services.NewAuditService(db, logger)
	appointmentService := services.NewAppointmentService(db, directory, audit, logger)
	recordService := services.NewRecordService(db, audit, logger)
	medicationService := services.NewMedicationService(db, audit, logger)
	announcementService := services.NewAnnouncementService(db, audit, logger)

	// Handlers
	userHandler := handlers.NewUserHandler(directory)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(recordService)
	medicationHandler := handlers.NewMedicationHandler(medicationService)
	auditLogHandler := handlers.NewAuditLogHandler(audit)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/doctors", userHandler.GetDoctors)
			userRoutes.GET("/me", userHandler.GetProfile)
			userRoutes.GET("/patients", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), userHandler.GetPatients)
			userRoutes.GET("/patients/:id", userHandler.GetPatient)
		}

		// Ownership checks live in the services
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.ListAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PUT("/:id", appointmentHandler.TransitionAppointment)
			appointmentRoutes.PUT("/:id/cancel", appointmentHandler.CancelAppointment)

			appointmentRoutes.GET("/:id/record", medicalRecordHandler.GetRecord)
			appointmentRoutes.PUT("/:id/record", medicalRecordHandler.UpdateRecord)
			appointmentRoutes.DELETE("/:id/prescriptions/:prescriptionId", medicalRecordHandler.DeletePrescription)
		}

		medicationRoutes := private.Group("/medications")
		{
			medicationRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), medicationHandler.ListMedications)

			adminRoutes := medicationRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", medicationHandler.CreateMedication)
				adminRoutes.PUT("/:id", medicationHandler.UpdateMedication)
				adminRoutes.DELETE("/:id", medicationHandler.DeleteMedication)
			}
		}

		announcementRoutes := private.Group("/announcements")
		{
			announcementRoutes.GET("", announcementHandler.ListAnnouncements)

			adminRoutes := announcementRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", announcementHandler.CreateAnnouncement)
				adminRoutes.PUT("/:id", announcementHandler.UpdateAnnouncement)
				adminRoutes.DELETE("/:id", announcementHandler.DeleteAnnouncement)
			}
		}

		private.GET("/logs", middleware.RoleAuthMiddleware(models.RoleAdmin), auditLogHandler.ListLogs)
	}

	// Health check pings the database
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
