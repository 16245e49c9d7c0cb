package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"andespos/internal/config"
	"andespos/internal/infra"
	"andespos/internal/repository"
	"andespos/internal/router"
	"andespos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mysql")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Composition root for the async side: SUNAT client, throttle and
	// circuit breaker are process-wide singletons shared by the worker
	// pool, the retry cron and the health endpoint.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sunatClient := infra.NewSunatClient(cfg.SunatAPIURL, cfg.SunatToken)
	throttle := infra.NewSubmitThrottle(cfg.SunatEnv)
	sunatCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg)

	dispatcher := worker.NewDispatcher(rdb)
	comprobanteRepo := repository.NewComprobanteRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	empresaRepo := repository.NewEmpresaRepository(db)

	sunatWorker := worker.NewSunatWorker(sunatClient, throttle, sunatCB, comprobanteRepo, ventaRepo, empresaRepo, dispatcher)
	alertWorker := worker.NewAlertWorker(mailer, cfg.AlertEmail)

	workerHandlers := &worker.WorkerHandlers{
		Emision: worker.HandlerFunc(sunatWorker.ProcessEmision),
		Baja:    worker.HandlerFunc(sunatWorker.ProcessBaja),
		Alertas: worker.HandlerFunc(alertWorker.Process),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		ComprobanteRepo: comprobanteRepo,
		VentaRepo:       ventaRepo,
		Dispatcher:      dispatcher,
		CB:              sunatCB,
	})

	r := router.New(cfg, db, rdb, dispatcher, sunatCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("AndesPOS backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
