package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/asistia/care-api/internal/config"
	"github.com/asistia/care-api/internal/email"
	"github.com/asistia/care-api/internal/handler"
	assignmentHandler "github.com/asistia/care-api/internal/handler/assignment"
	historyHandler "github.com/asistia/care-api/internal/handler/history"
	indicationHandler "github.com/asistia/care-api/internal/handler/indication"
	patientHandler "github.com/asistia/care-api/internal/handler/patient"
	prescriptionHandler "github.com/asistia/care-api/internal/handler/prescription"
	professionalHandler "github.com/asistia/care-api/internal/handler/professional"
	userHandler "github.com/asistia/care-api/internal/handler/user"
	"github.com/asistia/care-api/internal/middleware"
	"github.com/asistia/care-api/internal/repository/postgres"
	"github.com/asistia/care-api/internal/router"
	assignmentService "github.com/asistia/care-api/internal/service/assignment"
	eventService "github.com/asistia/care-api/internal/service/event"
	historyService "github.com/asistia/care-api/internal/service/history"
	indicationService "github.com/asistia/care-api/internal/service/indication"
	notificationService "github.com/asistia/care-api/internal/service/notification"
	patientService "github.com/asistia/care-api/internal/service/patient"
	prescriptionService "github.com/asistia/care-api/internal/service/prescription"
	professionalService "github.com/asistia/care-api/internal/service/professional"
	"github.com/asistia/care-api/internal/service/scope"
	userService "github.com/asistia/care-api/internal/service/user"
	"github.com/asistia/care-api/pkg/auth"
	"github.com/asistia/care-api/pkg/logger"
	"github.com/asistia/care-api/pkg/metrics"
	"github.com/asistia/care-api/pkg/security"
	"github.com/asistia/care-api/pkg/validator"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	historyRepo := postgres.NewMedicalHistoryRepository(base)
	prescriptionRepo := postgres.NewPrescriptionRepository(base)
	indicationRepo := postgres.NewIndicationRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	professionalRepo := postgres.NewProfessionalRepository(base)
	userRepo := postgres.NewUserRepository(base)
	assignmentRepo := postgres.NewAssignmentRepository(base)
	caregiverRepo := postgres.NewCaregiverAssignmentRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	m := metrics.New("care_api")
	validate := validator.New()
	resolver := scope.NewResolver(caregiverRepo)
	events := eventService.NewService(outboxRepo, log)

	var notifier *notificationService.Service
	if cfg.SMTP.Enabled {
		sender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		notifier = notificationService.NewService(sender, userRepo, log)
	}

	historySvc := historyService.NewService(historyRepo, resolver, validate, events, log, m)
	prescriptionSvc := prescriptionService.NewService(prescriptionRepo, resolver, validate, events, log, m)
	indicationSvc := indicationService.NewService(indicationRepo, resolver, validate, events, log, m)
	patientSvc := patientService.NewService(patientRepo, resolver, validate, log)
	professionalSvc := professionalService.NewService(professionalRepo, validate, log)
	userSvc := userService.NewService(userRepo, security.NewBcryptHasher(0), validate, log)
	assignmentSvc := assignmentService.NewService(assignmentRepo, caregiverRepo, patientRepo, validate, notifier, log)

	authMiddleware := middleware.NewAuthMiddleware(auth.NewTokenValidator(cfg.JWT.Secret), userRepo)

	engine := router.New(
		log.Zerolog(),
		authMiddleware,
		router.Config{
			RateLimit: rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst: cfg.RateLimit.Burst,
		},
		handler.NewHealthHandler(db),
		historyHandler.NewHandler(historySvc),
		prescriptionHandler.NewHandler(prescriptionSvc),
		indicationHandler.NewHandler(indicationSvc),
		patientHandler.NewHandler(patientSvc),
		professionalHandler.NewHandler(professionalSvc),
		userHandler.NewHandler(userSvc),
		assignmentHandler.NewHandler(assignmentSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
