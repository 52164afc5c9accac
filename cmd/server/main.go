package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/medtrackhq/medtrack/internal/bootstrap"
	"github.com/medtrackhq/medtrack/internal/config"
	"github.com/medtrackhq/medtrack/internal/handler"
	"github.com/medtrackhq/medtrack/internal/middleware"
	"github.com/medtrackhq/medtrack/internal/repository"
	"github.com/medtrackhq/medtrack/internal/service"
	"github.com/medtrackhq/medtrack/pkg/database"
	"github.com/medtrackhq/medtrack/pkg/mail"
	"github.com/medtrackhq/medtrack/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedDevUsers(db); err != nil {
			log.Fatalf("failed to seed dev users: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set, rate limiting and live notifications disabled")
	}

	var searchClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		searchClient = meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		log.Println("MEILISEARCH_HOST not set, directory search disabled")
	}

	var fileStorage storage.FileStorage
	if cfg.StorageBackend == "cloudinary" {
		fileStorage, err = storage.NewCloudinaryStorage()
		if err != nil {
			log.Fatalf("failed to initialize cloudinary storage: %v", err)
		}
	} else {
		fileStorage, err = storage.NewLocalStorage(cfg.UploadDir)
		if err != nil {
			log.Fatalf("failed to initialize local storage: %v", err)
		}
	}

	var mailSender mail.Sender
	if sender, err := mail.NewSMTPSender(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	}); err != nil {
		log.Printf("outbound mail disabled: %v", err)
	} else {
		mailSender = sender
	}

	userRepo := repository.NewUserRepository(db)
	medicineRepo := repository.NewMedicineRepository(db)
	diagnosisRepo := repository.NewDiagnosisRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	authService := service.NewAuthService(userRepo, redisClient)
	authHandler := handler.NewAuthHandler(authService)

	notificationService := service.NewNotificationService(notificationRepo, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationService, redisClient)

	clinicalService := service.NewClinicalService(medicineRepo, diagnosisRepo, userRepo)
	clinicalHandler := handler.NewClinicalHandler(clinicalService)
	patientHandler := handler.NewPatientHandler(userRepo, clinicalService)

	appointmentService := service.NewAppointmentService(appointmentRepo, userRepo, notificationService, redisClient)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)

	reportService := service.NewReportService(reportRepo, appointmentRepo, clinicalService, fileStorage)
	reportHandler := handler.NewReportHandler(reportService, reportRepo)

	directoryService := service.NewDirectoryService(searchClient)
	directoryHandler := handler.NewDirectoryHandler(directoryService)

	profileHandler := handler.NewProfileHandler(userRepo)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)

		directory := api.Group("/directory")
		directory.GET("/specialties", directoryHandler.Specialties)
		directory.GET("/doctors", directoryHandler.FindDoctor)
	}

	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/profile", profileHandler.GetProfile)
		api.GET("/uploads/:filename", reportHandler.ServeUpload)

		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread_count", notificationHandler.UnreadCount)
			notifications.GET("/stream", notificationHandler.HandleWebSocket)
			notifications.PATCH("/:id/read", notificationHandler.MarkAsRead)
			notifications.PATCH("/read_all", notificationHandler.MarkAllAsRead)
		}

		patient := api.Group("")
		patient.Use(authMiddleware.RequireRole("patient"))
		{
			patient.POST("/appointments", appointmentHandler.Book)
			patient.GET("/appointments", appointmentHandler.ListOwn)
			patient.DELETE("/appointments/:id", appointmentHandler.Cancel)

			patient.GET("/medicines", clinicalHandler.ListOwnMedicines)
			patient.POST("/medicines", clinicalHandler.AddOwnMedicine)
			patient.GET("/diagnoses", clinicalHandler.ListOwnDiagnoses)

			patient.POST("/reports", reportHandler.Upload)
		}

		doctor := api.Group("")
		doctor.Use(authMiddleware.RequireRole("doctor"))
		{
			doctor.GET("/patients", patientHandler.List)
			doctor.GET("/patients/:id/history", patientHandler.History)
			doctor.POST("/patients/:id/diagnoses", patientHandler.AddDiagnosis)
			doctor.POST("/patients/:id/medicines", patientHandler.AddMedicine)
			doctor.GET("/patients/:id/reports", reportHandler.ListForPatient)
			doctor.GET("/patients/:id/report.pdf", reportHandler.HistoryPDF)

			doctor.GET("/appointments/assigned", appointmentHandler.ListAssigned)
			doctor.GET("/appointments/summary", appointmentHandler.Summary)
			doctor.PATCH("/appointments/:id/accept", appointmentHandler.Accept)
			doctor.PATCH("/appointments/:id/reject", appointmentHandler.Reject)
			doctor.POST("/appointments/:id/solve", appointmentHandler.Solve)
		}
	}

	// Drain the email outbox in the background
	dispatcher := service.NewOutboxDispatcher(outboxRepo, mailSender, cfg.OutboxInterval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	log.Printf("medtrack server listening on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
