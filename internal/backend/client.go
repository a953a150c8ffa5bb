package backend

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

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20 // 1MB

type Config struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Client talks to the remote ordering backend. It never retries; repeated
// transport or 5xx failures open the breaker so later calls fail fast.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
	log     *zap.Logger
}

type response struct {
	status int
	body   []byte
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:        "ordering-backend",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		log:     log,
	}
}

// FetchMenu returns the menu. Any failure is reported as *MenuLoadError.
func (c *Client) FetchMenu(ctx context.Context) ([]domain.MenuItem, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/menu", nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return nil, &MenuLoadError{StatusCode: se.status}
		}
		return nil, &MenuLoadError{Err: err}
	}
	if !isSuccess(resp.status) {
		return nil, &MenuLoadError{StatusCode: resp.status}
	}

	var items []domain.MenuItem
	if err := json.Unmarshal(resp.body, &items); err != nil {
		return nil, &MenuLoadError{Err: fmt.Errorf("decode menu: %w", err)}
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	return items, nil
}

func (c *Client) CreateMenuItem(ctx context.Context, item domain.NewMenuItem) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/menu", item)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrCreateMenuItem, item.Name, err)
	}
	if !isSuccess(resp.status) {
		return fmt.Errorf("%w %q: status %d", ErrCreateMenuItem, item.Name, resp.status)
	}
	return nil
}

// SubmitOrder performs the single order request. Failures are returned as
// *order.SubmissionError.
func (c *Client) SubmitOrder(ctx context.Context, req order.Request) (order.Response, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/order", req)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return order.Response{}, &order.SubmissionError{Reason: "failed to place order", StatusCode: se.status}
		}
		return order.Response{}, &order.SubmissionError{Reason: "transport error", Err: err}
	}
	if !isSuccess(resp.status) {
		return order.Response{}, &order.SubmissionError{Reason: "failed to place order", StatusCode: resp.status}
	}

	var out order.Response
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return order.Response{}, &order.SubmissionError{Reason: "invalid order response", StatusCode: resp.status, Err: err}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (response, error) {
	return c.breaker.Execute(func() (response, error) {
		var body io.Reader
		if payload != nil {
			data, err := json.Marshal(payload)
			if err != nil {
				return response{}, fmt.Errorf("encode request: %w", err)
			}
			body = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return response{}, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		res, err := c.http.Do(req)
		if err != nil {
			return response{}, err
		}
		defer res.Body.Close()

		data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
		if err != nil {
			return response{}, fmt.Errorf("read response: %w", err)
		}
		c.log.Debug("backend call",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", res.StatusCode),
			zap.Duration("elapsed", time.Since(start)))

		if res.StatusCode >= http.StatusInternalServerError {
			return response{status: res.StatusCode, body: data}, &statusError{status: res.StatusCode}
		}
		return response{status: res.StatusCode, body: data}, nil
	})
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
