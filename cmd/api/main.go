package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/telemed-api/internal/config"
	"github.com/jwalitptl/telemed-api/internal/email"
	authHandler "github.com/jwalitptl/telemed-api/internal/handler/auth"
	consultationHandler "github.com/jwalitptl/telemed-api/internal/handler/consultation"
	healthHandler "github.com/jwalitptl/telemed-api/internal/handler/health"
	prescriptionHandler "github.com/jwalitptl/telemed-api/internal/handler/prescription"
	userHandler "github.com/jwalitptl/telemed-api/internal/handler/user"
	"github.com/jwalitptl/telemed-api/internal/middleware"
	"github.com/jwalitptl/telemed-api/internal/repository/postgres"
	redisrepo "github.com/jwalitptl/telemed-api/internal/repository/redis"
	"github.com/jwalitptl/telemed-api/internal/router"
	authService "github.com/jwalitptl/telemed-api/internal/service/auth"
	consultationService "github.com/jwalitptl/telemed-api/internal/service/consultation"
	prescriptionService "github.com/jwalitptl/telemed-api/internal/service/prescription"
	userService "github.com/jwalitptl/telemed-api/internal/service/user"
	"github.com/jwalitptl/telemed-api/pkg/auth"
	"github.com/jwalitptl/telemed-api/pkg/logger"
	"github.com/jwalitptl/telemed-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Pretty)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redisrepo.NewClient(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	userRepo := postgres.NewUserRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	tokenRepo := redisrepo.NewTokenRepository(redisClient)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	emailSvc := email.NewService(cfg.SMTP)

	userSvc := userService.NewService(userRepo)
	authSvc := authService.NewService(userRepo, tokenRepo, jwtSvc, hasher, emailSvc, userSvc)
	consultationSvc := consultationService.NewService(consultationRepo, userRepo, prescriptionRepo, cfg.Server.MeetingBaseURL)
	prescriptionSvc := prescriptionService.NewService(prescriptionRepo, consultationRepo)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, authSvc)

	r := router.New(cfg, authMiddleware, router.Handlers{
		Auth:         authHandler.NewHandler(authSvc),
		User:         userHandler.NewHandler(userSvc),
		Consultation: consultationHandler.NewHandler(consultationSvc),
		Prescription: prescriptionHandler.NewHandler(prescriptionSvc),
		Health:       healthHandler.NewHandler(db, redisClient),
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
