package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/anahisv/whisperbox-be/internal/api"
	"github.com/anahisv/whisperbox-be/internal/config"
	"github.com/anahisv/whisperbox-be/internal/database"
	"github.com/anahisv/whisperbox-be/internal/logger"
	"github.com/anahisv/whisperbox-be/internal/mailer"
	"github.com/anahisv/whisperbox-be/internal/monitoring"
	"github.com/anahisv/whisperbox-be/internal/services"
	"github.com/anahisv/whisperbox-be/internal/websocket"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up mail delivery
	mail, err := mailer.New(cfg.SMTP)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize mailer")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	accountService := services.NewAccountService(db, mail)
	messageService := services.NewMessageService(db)

	// Optionally run the stale-account cleaner
	var cleaner *monitoring.Cleaner
	if cfg.CleanupEnabled {
		cleaner, err = monitoring.NewCleaner(accountService, cfg.CleanupSchedule, cfg.CleanupRetention)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize stale-account cleaner")
		}
		go cleaner.Run()
	}

	// Set up router
	router := api.NewRouter(cfg.CORSOrigin, hub, accountService, messageService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if cleaner != nil {
		cleaner.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
