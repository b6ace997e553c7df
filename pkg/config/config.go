package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/ap2stellar/gateway/pkg/logger"
)

// Config holds the configuration for the payment gateway
type Config struct {
	Port                string
	MetricsPort         string
	MetricsAPIKey       string
	HorizonURL          string
	NetworkPassphrase   string
	SigningSeed         string
	JWTSecret           string
	USDCIssuer          string
	EURCIssuer          string
	BaseFee             int64
	TxTimeoutSeconds    int64
	CallbackTimeout     time.Duration
	StatusLookbackLimit int
	CircuitBreaker      CircuitBreakerConfig
	LoggerConfig        LoggerConfig
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	port, err := GetEnvPort()
	if err != nil {
		return nil, err
	}

	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	horizonURL, err := GetEnvHorizonURL()
	if err != nil {
		return nil, err
	}

	baseFee, err := GetEnvBaseFee()
	if err != nil {
		return nil, err
	}

	txTimeout, err := GetEnvTxTimeout()
	if err != nil {
		return nil, err
	}

	callbackTimeout, err := GetEnvCallbackTimeout()
	if err != nil {
		return nil, err
	}

	lookback, err := GetEnvStatusLookbackLimit()
	if err != nil {
		return nil, err
	}

	cbEnabled, err := GetEnvCircuitBreakerEnabled()
	if err != nil {
		return nil, err
	}

	cbThreshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return nil, err
	}

	cbWindow, err := GetEnvCircuitBreakerWindow()
	if err != nil {
		return nil, err
	}

	cbReset, err := GetEnvCircuitBreakerReset()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                port,
		MetricsPort:         metricsPort,
		MetricsAPIKey:       getEnv("METRICS_API_KEY"),
		HorizonURL:          horizonURL,
		NetworkPassphrase:   GetEnvNetworkPassphrase(),
		SigningSeed:         getEnv("STELLAR_SECRET_SEED"),
		JWTSecret:           getEnv("JWT_SECRET"),
		USDCIssuer:          GetEnvUSDCIssuer(),
		EURCIssuer:          GetEnvEURCIssuer(),
		BaseFee:             baseFee,
		TxTimeoutSeconds:    txTimeout,
		CallbackTimeout:     callbackTimeout,
		StatusLookbackLimit: lookback,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:        cbEnabled,
			Threshold:      cbThreshold,
			WindowDuration: cbWindow,
			ResetTimeout:   cbReset,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	// Validate required environment variables
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.SigningSeed == "" {
		return fmt.Errorf("STELLAR_SECRET_SEED environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.USDCIssuer == "" {
		return fmt.Errorf("USDC_ISSUER must not be empty")
	}
	if cfg.EURCIssuer == "" {
		return fmt.Errorf("EURC_ISSUER must not be empty")
	}
	return nil
}
