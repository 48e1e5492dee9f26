// EventFlow is an event discovery and RSVP backend. Events carry a fixed seat
// capacity and RSVPs are admitted atomically so the event never oversells.
//
// @title EventFlow API
// @version 1.0
// @description Event discovery and capacity-bounded RSVP API.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventflow/config"
	_ "eventflow/docs"
	authadapter "eventflow/internal/adapters/auth"
	"eventflow/internal/adapters/cloudinary"
	"eventflow/internal/adapters/email"
	"eventflow/internal/adapters/openai"
	"eventflow/internal/db"
	"eventflow/internal/db/migrate"
	delivery "eventflow/internal/delivery/http"
	"eventflow/internal/delivery/http/controllers"
	"eventflow/internal/delivery/http/middleware"
	"eventflow/internal/repository/postgres"
	"eventflow/internal/services"

	"golang.org/x/crypto/bcrypt"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	if err := migrate.Up(cfg.DBUrl); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	database, err := db.Open(cfg.DBUrl)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer database.Close()

	imageStore, err := cloudinary.NewImageStore(cloudinary.Config{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
	})
	if err != nil {
		logger.Error("image store init failed", "err", err)
		os.Exit(1)
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: email.SESConfig{
			Region:          cfg.Mailer.SES.Region,
			AccessKeyID:     cfg.Mailer.SES.AccessKeyID,
			SecretAccessKey: cfg.Mailer.SES.SecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("mailer init failed", "err", err)
		os.Exit(1)
	}
	enhancer := openai.NewEnhancer(openai.Config{
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		ClientURL: cfg.AI.ClientURL,
	})

	hasher := authadapter.NewBcryptHasher(bcrypt.DefaultCost)
	tokenIssuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	userRepo := postgres.NewUserRepository(database)
	eventRepo := postgres.NewEventRepository(database)
	rsvpRepo := postgres.NewRSVPRepository(database)

	authService := services.NewAuthService(userRepo, hasher, tokenIssuer, cfg.TokenExpiry, mailer, logger)
	eventService := services.NewEventService(eventRepo, rsvpRepo, imageStore)
	admissionService := services.NewAdmissionService(rsvpRepo)
	userService := services.NewUserService(userRepo, eventRepo, rsvpRepo, hasher, imageStore)
	descriptionService := services.NewDescriptionService(enhancer)

	mux := delivery.NewRouter(delivery.Controllers{
		Auth:  controllers.NewAuthController(logger, authService),
		Event: controllers.NewEventController(logger, eventService),
		RSVP:  controllers.NewRSVPController(logger, admissionService),
		User:  controllers.NewUserController(logger, userService),
		AI:    controllers.NewAIController(logger, descriptionService),
	}, tokenVerifier)

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
