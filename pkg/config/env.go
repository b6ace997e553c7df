package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/stellar/go/network"

	"github.com/ap2stellar/gateway/pkg/logger"
)

const (
	// DefaultPort is the port the payment API listens on
	DefaultPort = "3000"

	// DefaultMetricsPort defines the default port for the health and metrics server
	DefaultMetricsPort = "8080"

	// DefaultHorizonURL is the Horizon instance to talk to
	DefaultHorizonURL = "https://horizon-testnet.stellar.org"

	// DefaultBaseFee is the per-operation fee in stroops
	DefaultBaseFee = 100

	// DefaultTxTimeoutSeconds bounds how long a broadcast transaction stays valid
	DefaultTxTimeoutSeconds = 300

	// DefaultCallbackTimeoutSeconds bounds a confirmation callback delivery
	DefaultCallbackTimeoutSeconds = 5

	// DefaultStatusLookbackLimit is the history window searched during status lookups
	DefaultStatusLookbackLimit = 200

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker in seconds
	DefaultCircuitBreakerWindow = 60

	// DefaultCircuitBreakerReset defines the reset timeout for the circuit breaker in seconds
	DefaultCircuitBreakerReset = 30

	// DefaultUSDCIssuer is the well-known USDC anchor account
	DefaultUSDCIssuer = "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN"

	// DefaultEURCIssuer is the well-known EURC anchor account
	DefaultEURCIssuer = "GDHU6WRG4IEQXM5NZ4BMPKOXHW76MZM4Y2IEMFDVXBSDP6SJY4ITNPP2"
)

// GetEnvPort returns the API port from environment variables
func GetEnvPort() (string, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return DefaultPort, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("invalid PORT value: %s, must be a valid integer", port)
	}
	return port, nil
}

// GetEnvMetricsPort returns the metrics server port from environment variables
func GetEnvMetricsPort() (string, error) {
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		return DefaultMetricsPort, nil
	}

	if _, err := strconv.Atoi(metricsPort); err != nil {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s, must be a valid integer", metricsPort)
	}
	return metricsPort, nil
}

// GetEnvHorizonURL returns the Horizon endpoint from environment variables
func GetEnvHorizonURL() (string, error) {
	horizonURL := os.Getenv("HORIZON_URL")
	if horizonURL == "" {
		return DefaultHorizonURL, nil
	}

	if _, err := url.ParseRequestURI(horizonURL); err != nil {
		return "", fmt.Errorf("invalid HORIZON_URL value: %s, must be a valid URL", horizonURL)
	}
	return horizonURL, nil
}

// GetEnvNetworkPassphrase returns the network passphrase, defaulting to testnet
func GetEnvNetworkPassphrase() string {
	passphrase := os.Getenv("NETWORK_PASSPHRASE")
	if passphrase == "" {
		return network.TestNetworkPassphrase
	}
	return passphrase
}

// GetEnvUSDCIssuer returns the USDC issuing account
func GetEnvUSDCIssuer() string {
	if issuer := os.Getenv("USDC_ISSUER"); issuer != "" {
		return issuer
	}
	return DefaultUSDCIssuer
}

// GetEnvEURCIssuer returns the EURC issuing account
func GetEnvEURCIssuer() string {
	if issuer := os.Getenv("EURC_ISSUER"); issuer != "" {
		return issuer
	}
	return DefaultEURCIssuer
}

// GetEnvBaseFee returns the per-operation fee in stroops
func GetEnvBaseFee() (int64, error) {
	baseFee := os.Getenv("BASE_FEE")
	if baseFee == "" {
		return DefaultBaseFee, nil
	}

	fee, err := strconv.ParseInt(baseFee, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid BASE_FEE value: %s, must be an integer", baseFee)
	}
	if fee < DefaultBaseFee {
		return 0, fmt.Errorf("BASE_FEE must be at least %d stroops", DefaultBaseFee)
	}
	return fee, nil
}

// GetEnvTxTimeout returns the transaction time bound in seconds
func GetEnvTxTimeout() (int64, error) {
	txTimeout := os.Getenv("TX_TIMEOUT_SECONDS")
	if txTimeout == "" {
		return DefaultTxTimeoutSeconds, nil
	}

	seconds, err := strconv.ParseInt(txTimeout, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid TX_TIMEOUT_SECONDS value: %s, must be an integer", txTimeout)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("TX_TIMEOUT_SECONDS must be greater than 0")
	}
	return seconds, nil
}

// GetEnvCallbackTimeout returns the callback delivery timeout
func GetEnvCallbackTimeout() (time.Duration, error) {
	timeout := os.Getenv("CALLBACK_TIMEOUT_SECONDS")
	if timeout == "" {
		return DefaultCallbackTimeoutSeconds * time.Second, nil
	}

	seconds, err := strconv.Atoi(timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid CALLBACK_TIMEOUT_SECONDS value: %s, must be an integer", timeout)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("CALLBACK_TIMEOUT_SECONDS must be greater than 0")
	}
	return time.Duration(seconds) * time.Second, nil
}

// GetEnvStatusLookbackLimit returns the history window for status lookups
func GetEnvStatusLookbackLimit() (int, error) {
	lookback := os.Getenv("STATUS_LOOKBACK_LIMIT")
	if lookback == "" {
		return DefaultStatusLookbackLimit, nil
	}

	limit, err := strconv.Atoi(lookback)
	if err != nil {
		return 0, fmt.Errorf("invalid STATUS_LOOKBACK_LIMIT value: %s, must be an integer", lookback)
	}
	if limit <= 0 {
		return 0, fmt.Errorf("STATUS_LOOKBACK_LIMIT must be greater than 0")
	}
	return limit, nil
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled from environment variables
func GetEnvCircuitBreakerEnabled() (bool, error) {
	enabled := os.Getenv("CIRCUIT_BREAKER_ENABLED")
	if enabled == "" {
		return DefaultCircuitBreakerEnabled, nil
	}

	if enabled == "true" {
		return true, nil
	} else if enabled == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED value: %s, must be 'true' or 'false'", enabled)
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker threshold from environment variables
func GetEnvCircuitBreakerThreshold() (int, error) {
	threshold := os.Getenv("CIRCUIT_BREAKER_THRESHOLD")
	if threshold == "" {
		return DefaultCircuitBreakerThreshold, nil
	}

	thresholdInt, err := strconv.Atoi(threshold)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_THRESHOLD value: %s, must be an integer", threshold)
	}
	if thresholdInt <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_THRESHOLD must be greater than 0")
	}
	return thresholdInt, nil
}

// GetEnvCircuitBreakerWindow returns the circuit breaker window duration from environment variables
func GetEnvCircuitBreakerWindow() (time.Duration, error) {
	window := os.Getenv("CIRCUIT_BREAKER_WINDOW")
	if window == "" {
		return DefaultCircuitBreakerWindow * time.Second, nil
	}

	parsed, err := time.ParseDuration(window)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_WINDOW value: %s, must be a valid duration string", window)
	}
	return parsed, nil
}

// GetEnvCircuitBreakerReset returns the circuit breaker reset timeout from environment variables
func GetEnvCircuitBreakerReset() (time.Duration, error) {
	reset := os.Getenv("CIRCUIT_BREAKER_RESET")
	if reset == "" {
		return DefaultCircuitBreakerReset * time.Second, nil
	}

	parsed, err := time.ParseDuration(reset)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_RESET value: %s, must be a valid duration string", reset)
	}
	return parsed, nil
}

// GetEnvLogLevel returns the logging level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return logger.InfoLevel, nil
	}

	switch level {
	case "debug", "info", "notice", "error":
		return logger.ParseLevel(level), nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL value: %s, must be one of debug, info, notice, error", level)
}

// GetEnvLogColoring returns whether log coloring is enabled
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return true, nil
	}

	if coloring == "true" {
		return true, nil
	} else if coloring == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be 'true' or 'false'", coloring)
}

// getEnv is a small helper for optional string values
func getEnv(key string) string {
	return os.Getenv(key)
}
