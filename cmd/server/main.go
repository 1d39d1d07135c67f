package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"plate-events-service/internal/config"
	"plate-events-service/internal/db"
	httphandler "plate-events-service/internal/http"
	"plate-events-service/internal/logger"
	"plate-events-service/internal/repository"
	"plate-events-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	conn, err := db.Open(cfg.DB.DSN(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	repo := repository.NewReadsRepository(conn)
	readsService := service.NewReadsService(repo, cfg.Camera.ID, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Retention.Days > 0 {
		go readsService.RunRetention(ctx, cfg.Retention.Days, 24*time.Hour)
	}

	gin.SetMode(cfg.HTTP.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), httphandler.RequestID(), httphandler.RequestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.HTTP.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	handler := httphandler.NewHandler(readsService, cfg, log)
	handler.Register(router, httphandler.JWTAuth(cfg.Auth.JWTSecret))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTP.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
