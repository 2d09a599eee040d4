// Package adapter provides clients for external data providers.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/tron-address-info/internal/circuitbreaker"
	"github.com/tron-address-info/internal/config"
	"github.com/tron-address-info/internal/logging"
	"github.com/tron-address-info/internal/types"
)

// Account represents the raw account data returned by wallet/getaccount.
// Missing fields unmarshal to zero, which is the documented default.
type Account struct {
	Address    string `json:"address"`
	Balance    int64  `json:"balance"`
	CreateTime int64  `json:"create_time"`
}

// AccountResource represents the raw resource data returned by
// wallet/getaccountresource. Field casing follows the TRON node wire format.
type AccountResource struct {
	FreeNetLimit      int64 `json:"freeNetLimit"`
	NetLimit          int64 `json:"NetLimit"`
	FreeNetUsed       int64 `json:"freeNetUsed"`
	NetUsed           int64 `json:"NetUsed"`
	EnergyLimit       int64 `json:"EnergyLimit"`
	EnergyUsed        int64 `json:"EnergyUsed"`
	TotalNetLimit     int64 `json:"TotalNetLimit"`
	TotalNetWeight    int64 `json:"TotalNetWeight"`
	TotalEnergyLimit  int64 `json:"TotalEnergyLimit"`
	TotalEnergyWeight int64 `json:"TotalEnergyWeight"`
}

// TronClient queries a TronGrid full node over HTTP.
type TronClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
}

// NewTronClient creates a client for the node endpoint selected by the config.
func NewTronClient(cfg *config.TronConfig) *TronClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	return &TronClient{
		baseURL: cfg.Network.Endpoint(),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig("trongrid")),
	}
}

// GetAccount fetches raw account info for an address.
// An account unknown to the node comes back as an empty object; that is
// surfaced as a query failure, matching the node's own client libraries.
func (c *TronClient) GetAccount(ctx context.Context, address string) (*Account, error) {
	body, err := c.post(ctx, "/wallet/getaccount", address)
	if err != nil {
		return nil, err
	}

	var account Account
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, queryError("failed to parse account response", err, address)
	}

	if account.Address == "" && account.CreateTime == 0 {
		return nil, queryError(fmt.Sprintf("account not found: %s", address), nil, address)
	}

	return &account, nil
}

// GetAccountResource fetches raw bandwidth/energy data for an address.
func (c *TronClient) GetAccountResource(ctx context.Context, address string) (*AccountResource, error) {
	body, err := c.post(ctx, "/wallet/getaccountresource", address)
	if err != nil {
		return nil, err
	}

	var resource AccountResource
	if err := json.Unmarshal(body, &resource); err != nil {
		return nil, queryError("failed to parse account resource response", err, address)
	}

	return &resource, nil
}

// post performs a node request under the circuit breaker, with rate limiting
// and bounded retry on transient failures (network errors, 429, 5xx).
func (c *TronClient) post(ctx context.Context, path, address string) ([]byte, error) {
	var body []byte
	err := c.breaker.Execute(ctx, func() error {
		var postErr error
		body, postErr = c.doPost(ctx, path, address)
		return postErr
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return nil, queryError("TRON node temporarily unavailable", err, address)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *TronClient) doPost(ctx context.Context, path, address string) ([]byte, error) {
	const maxRetries = 3
	baseDelay := 500 * time.Millisecond

	payload, err := json.Marshal(map[string]interface{}{
		"address": address,
		"visible": true,
	})
	if err != nil {
		return nil, queryError("failed to encode request", err, address)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, queryError("request cancelled", err, address)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, queryError("failed to create request", err, address)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("TRON-PRO-API-KEY", c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if retryErr := c.backoff(ctx, attempt, maxRetries, baseDelay, ""); retryErr != nil {
				return nil, queryError("failed to reach TRON node", lastErr, address)
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, queryError("failed to read node response", err, address)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("node returned HTTP %d", resp.StatusCode)
			if retryErr := c.backoff(ctx, attempt, maxRetries, baseDelay, resp.Header.Get("Retry-After")); retryErr != nil {
				return nil, queryError("TRON node unavailable", lastErr, address)
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, queryError(
				fmt.Sprintf("node returned HTTP %d: %s", resp.StatusCode, string(body)), nil, address)
		}

		return body, nil
	}

	return nil, queryError("max retries exceeded", lastErr, address)
}

// backoff sleeps before the next retry attempt. It returns an error when the
// retry budget is exhausted or the context is done.
func (c *TronClient) backoff(ctx context.Context, attempt, maxRetries int, baseDelay time.Duration, retryAfter string) error {
	if attempt >= maxRetries {
		return fmt.Errorf("retries exhausted")
	}

	delay := baseDelay * time.Duration(1<<uint(attempt))
	if retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			delay = time.Duration(seconds) * time.Second
		}
	}
	if delay > 10*time.Second {
		delay = 10 * time.Second
	}

	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"attempt": attempt + 1,
		"delay":   delay.String(),
	}).Warn("TRON node request failed, retrying")

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func queryError(message string, cause error, address string) *types.ServiceError {
	return &types.ServiceError{
		Code:    types.CodeTronQueryFailed,
		Message: message,
		Details: map[string]interface{}{
			"address": address,
		},
		Cause: cause,
	}
}
