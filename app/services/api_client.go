package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// APIError is a non-2xx answer from the storefront API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.Status, e.Body)
}

type apiResult struct {
	status int
	body   []byte
}

// APIClient talks JSON to the storefront backend. Transport errors and 5xx
// answers count against the circuit breaker; 4xx answers are returned to the
// caller as results.
type APIClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[apiResult]
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	settings := gobreaker.Settings{
		Name:        "storefront-api",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[apiResult](settings),
	}
}

// doRequest helper function
func (c *APIClient) doRequest(ctx context.Context, method, path string, payload any) (apiResult, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return apiResult{}, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	return c.breaker.Execute(func() (apiResult, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return apiResult{}, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return apiResult{}, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return apiResult{}, fmt.Errorf("read response body: %w", err)
		}

		res := apiResult{status: resp.StatusCode, body: respBody}
		if resp.StatusCode >= http.StatusInternalServerError {
			return res, &APIError{Status: resp.StatusCode, Body: string(respBody)}
		}
		return res, nil
	})
}

func (r apiResult) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r apiResult) decode(v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("decode response (status %d): %w", r.status, err)
	}
	return nil
}

func (r apiResult) err() error {
	return &APIError{Status: r.status, Body: string(r.body)}
}

// IsUnavailable reports whether err came from the breaker refusing the call.
func IsUnavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
