package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/money-transfer-engine/internal/adapter/http/controller"
	"github.com/api-sage/money-transfer-engine/internal/adapter/http/middleware"
	"github.com/api-sage/money-transfer-engine/internal/adapter/http/router"
	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/memory"
	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/postgres"
	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/money-transfer-engine/internal/config"
	"github.com/api-sage/money-transfer-engine/internal/events"
	eventskafka "github.com/api-sage/money-transfer-engine/internal/events/kafka"
	"github.com/api-sage/money-transfer-engine/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	accountRepo, transactionRepo, transferStore, cleanup, err := buildStorage(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("initialize storage: %v", err)
	}
	defer cleanup()

	var publisher events.EventPublisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := eventskafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	rateService := services.NewRateService(memory.NewRateRepository())
	transferService := services.NewTransferService(transferStore, accountRepo, transactionRepo, rateService, publisher)
	accountService := services.NewAccountService(accountRepo)

	scheduler := services.NewScheduler(transferService, cfg.SchedulerInterval)
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	mux := router.New(
		controller.NewAccountController(accountService),
		controller.NewTransactionController(transferService),
		middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKeyHash),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("http server listening on %s", cfg.HTTPAddr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown: %v", err)
	}
}

func buildStorage(ctx context.Context, cfg config.Config) (
	repo_interfaces.AccountRepository,
	repo_interfaces.TransactionRepository,
	repo_interfaces.TransferStore,
	func(),
	error,
) {
	if cfg.StorageBackend == "memory" {
		store := memory.NewStore()
		return memory.NewAccountRepository(store), memory.NewTransactionRepository(store), store, func() {}, nil
	}

	if err := postgres.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		return nil, nil, nil, nil, err
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cleanup := func() { _ = db.Close() }
	return postgres.NewAccountRepository(db), postgres.NewTransactionRepository(db), postgres.NewTransferStore(db), cleanup, nil
}
