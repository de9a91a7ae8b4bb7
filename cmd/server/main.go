package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/config"
	httpd "github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/delivery/http"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/gateway"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/logging"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/metrics"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/repository"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	store, err := repository.NewStore(cfg.SQLiteDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.SeedMerchant(ctx, &domain.Merchant{
		ID:     cfg.MerchantID,
		Key:    cfg.MerchantKey,
		Salt:   cfg.MerchantSalt,
		Active: true,
	}); err != nil {
		log.Fatalf("seed merchant: %v", err)
	}

	logger := &logging.StdoutLogger{}
	counters := &metrics.Counters{}
	gw := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayTimeout)

	initiator := &usecase.Initiator{
		Store:   store,
		Gateway: gw,
		Logger:  logger,
		Metrics: counters,
	}

	ingestor := &usecase.Ingestor{
		Store:             store,
		Logger:            logger,
		Metrics:           counters,
		DefaultMerchantID: cfg.MerchantID,
	}

	refunder := &usecase.Refunder{
		Store:   store,
		Gateway: gw,
		Logger:  logger,
	}

	sweeper := &usecase.Sweeper{
		Store:     store,
		Logger:    logger,
		Metrics:   counters,
		Interval:  cfg.SweepInterval,
		Threshold: cfg.StaleThreshold,
	}
	go sweeper.Run(ctx)

	h := httpd.NewHandler(initiator, ingestor, refunder, store, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: h.Routes(cfg.CORSOrigin),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
