package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"

	"github.com/ap2stellar/gateway/pkg/api"
	"github.com/ap2stellar/gateway/pkg/auth"
	"github.com/ap2stellar/gateway/pkg/callback"
	"github.com/ap2stellar/gateway/pkg/circuitbreaker"
	"github.com/ap2stellar/gateway/pkg/config"
	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/health"
	"github.com/ap2stellar/gateway/pkg/intent"
	"github.com/ap2stellar/gateway/pkg/ledger"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/pathfind"
	"github.com/ap2stellar/gateway/pkg/settlement"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	stdLogger := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	signer, err := keypair.ParseFull(cfg.SigningSeed)
	if err != nil {
		log.Fatalf("Invalid signing seed: %v", err)
	}

	horizon := &horizonclient.Client{
		HorizonURL: cfg.HorizonURL,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
	}

	breaker := circuitbreaker.New(
		cfg.CircuitBreaker.Enabled,
		cfg.CircuitBreaker.Threshold,
		cfg.CircuitBreaker.WindowDuration,
		cfg.CircuitBreaker.ResetTimeout,
		stdLogger,
	)

	gateway := ledger.NewGateway(
		horizon,
		signer,
		cfg.NetworkPassphrase,
		cfg.BaseFee,
		cfg.TxTimeoutSeconds,
		breaker,
		stdLogger,
	)

	resolver := currency.NewResolver(cfg.USDCIssuer, cfg.EURCIssuer)
	validator := intent.NewValidator(resolver)
	verifier := auth.NewVerifier(cfg.JWTSecret, stdLogger)
	router := pathfind.NewRouter(gateway, gateway.AccountID(), stdLogger)
	dispatcher := callback.NewDispatcher(cfg.CallbackTimeout, stdLogger)
	executor := settlement.NewExecutor(gateway, router, stdLogger)
	payments := settlement.NewService(validator, verifier, resolver, executor, dispatcher, stdLogger)
	status := settlement.NewStatusResolver(gateway, cfg.StatusLookbackLimit, stdLogger)

	server := api.NewServer(cfg.Port, payments, status, router, resolver, cfg.BaseFee, stdLogger)

	healthServer := health.NewServer(
		cfg.MetricsPort,
		cfg.HorizonURL,
		gateway.AccountID(),
		breaker,
		func(ctx context.Context) error {
			_, err := horizon.Root()
			return err
		},
		cfg.MetricsAPIKey,
	)
	go func() {
		if err := healthServer.Start(); err != nil {
			stdLogger.Error("health server error: %v", err)
		}
	}()

	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		stdLogger.Notice("Received termination signal, shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			stdLogger.Error("API server shutdown error: %v", err)
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			stdLogger.Error("health server shutdown error: %v", err)
		}
	}()

	stdLogger.Notice("Starting the settlement gateway (account %s)...", gateway.AccountID())
	if err := server.Start(); err != nil {
		log.Fatalf("API server error: %v", err)
	}
}
