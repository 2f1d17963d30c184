package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/metrics"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

const defaultAPIVersion = "2024-01"

// RetryConfig bounds the client's retry discipline for throttled and failed
// calls. Backoff starts at BaseBackoff and doubles per attempt unless the
// server supplies its own wait duration.
type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

// DefaultRetryConfig returns the production retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseBackoff: time.Second,
	}
}

// AdminClient posts paginated queries to the admin GraphQL endpoint of a
// tenant's store, authenticated per call with the tenant's access token.
type AdminClient struct {
	httpClient *http.Client
	apiVersion string
	scheme     string
	retry      RetryConfig
	logger     zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewAdminClient creates a client with default retry settings.
func NewAdminClient(logger zerolog.Logger) ports.AdminAPI {
	return NewAdminClientWithOptions(nil, defaultAPIVersion, DefaultRetryConfig(), logger)
}

// NewAdminClientWithOptions creates a client with explicit transport and
// retry options. A nil httpClient falls back to a 30s-timeout default.
func NewAdminClientWithOptions(
	httpClient *http.Client,
	apiVersion string,
	retry RetryConfig,
	logger zerolog.Logger,
) *AdminClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	return &AdminClient{
		httpClient: httpClient,
		apiVersion: apiVersion,
		scheme:     "https",
		retry:      retry,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// graphqlEnvelope is the admin API response shape.
type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query executes one query against the tenant's store. HTTP 429 and
// transport-level failures are retried within the attempt budget, honoring a
// server-supplied Retry-After when present. A response carrying both data
// and errors is a partial success: the data is returned and the errors are
// logged as warnings.
func (c *AdminClient) Query(ctx context.Context, cred domain.Credential, query string, vars map[string]any) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s://%s/admin/api/%s/graphql.json",
		c.scheme, cleanShopDomain(cred.ShopDomain), c.apiVersion)

	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": vars,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := c.retry.BaseBackoff << (attempt - 1)
			if retryAfter, ok := retryAfterHint(lastErr); ok {
				wait = retryAfter
			}
			c.logger.Warn().
				Str("shop", cred.ShopDomain).
				Dur("wait", wait).
				Int("attempt", attempt+1).
				Msg("Retrying admin API call")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		data, err := c.doRequest(ctx, endpoint, cred.AccessToken, body)
		if err == nil {
			return data, nil
		}
		if !retryable(err) {
			return nil, err
		}
		metrics.APIRetries.WithLabelValues(retryReason(err)).Inc()
		lastErr = err
	}

	return nil, fmt.Errorf("%w: gave up after %d attempts: %v",
		domain.ErrUpstreamUnavailable, c.retry.MaxAttempts, lastErr)
}

// doRequest performs a single HTTP round trip and classifies the outcome.
func (c *AdminClient) doRequest(ctx context.Context, endpoint, accessToken string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return nil, &rateLimitError{retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, &transportError{err: fmt.Errorf("admin API returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("admin API returned status %d", resp.StatusCode)
	}

	var envelope graphqlEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
			return nil, &domain.GraphQLError{Messages: messages}
		}
		c.logger.Warn().
			Strs("errors", messages).
			Msg("Admin API returned partial success, keeping data")
	}

	return envelope.Data, nil
}

// rateLimitError carries the server's wait hint through a retry iteration.
type rateLimitError struct {
	retryAfter *time.Duration
}

func (e *rateLimitError) Error() string { return domain.ErrRateLimited.Error() }
func (e *rateLimitError) Unwrap() error { return domain.ErrRateLimited }

type transportError struct {
	err error
}

func (e *transportError) Error() string { return "transport failure: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func retryable(err error) bool {
	switch err.(type) {
	case *rateLimitError, *transportError:
		return true
	}
	return false
}

func retryReason(err error) string {
	if _, ok := err.(*rateLimitError); ok {
		return "rate_limited"
	}
	return "transport"
}

func retryAfterHint(err error) (time.Duration, bool) {
	if rl, ok := err.(*rateLimitError); ok && rl.retryAfter != nil {
		return *rl.retryAfter, true
	}
	return 0, false
}

func parseRetryAfter(header string) *time.Duration {
	if header == "" {
		return nil
	}
	secs, err := strconv.ParseFloat(header, 64)
	if err != nil || secs < 0 {
		return nil
	}
	d := time.Duration(secs * float64(time.Second))
	return &d
}

func cleanShopDomain(shop string) string {
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	return strings.TrimSuffix(shop, "/")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
