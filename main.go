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

	"fileshare/internal/api"
	"fileshare/internal/auth"
	"fileshare/internal/config"
	"fileshare/internal/database"
	"fileshare/internal/logger"
	"fileshare/internal/maintenance"
	"fileshare/internal/services"
)

func main() {
	// A missing .env file is fine; env vars still apply.
	_ = godotenv.Load()

	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.InsecureSecret() {
		log.Warn().Msg("SECRET_KEY is unset; running on the insecure development key")
	}

	// Ensure the upload directory exists
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload directory")
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

	// Set up services
	userService := services.NewUserService(db)
	fileService := services.NewFileService(db, cfg.UploadDir)
	tokenService := auth.NewTokenService(cfg.SecretKey, cfg.TokenTTL)

	if err := userService.EnsureAdmin(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin account")
	}

	// Set up and run the orphan file sweeper
	sweeper, err := maintenance.NewSweeper(fileService, cfg.SweepSchedule, 24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid sweep schedule")
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(tokenService, userService, fileService, db)

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

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
