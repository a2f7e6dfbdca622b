package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"wikirelay/internal/config"
	"wikirelay/internal/logger"
	"wikirelay/internal/relay"
	"wikirelay/pkg/circuitbreaker"
	"wikirelay/pkg/metrics"
)

// userAgent identifies the tool to the webhook host.
const userAgent = "wikirelay/1.2.0 (+https://github.com/wikirelay/wikirelay)"

const defaultTimeout = 10 * time.Second

// Client posts notification payloads to the configured webhook.
// Delivery is best effort: one POST per payload, bounded by the connect
// and total timeouts, no retries. The response body and status are
// discarded beyond error accounting.
type Client struct {
	httpClient *http.Client
	url        string
	limiter    *rate.Limiter
	breaker    *circuitbreaker.Wrapper
	logger     logger.Logger
}

func NewClient(cfg config.WebhookConfig, cbCfg config.CircuitBreakerConfig, log logger.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		// Redirects are followed by default, matching the webhook
		// host's occasional use of them.
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: timeout,
				}).DialContext,
			},
		},
		url:    cfg.URL,
		logger: log,
	}

	if cfg.RateLimit.Enabled {
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	if cbCfg.Enabled {
		cbConfig := circuitbreaker.DefaultConfig("webhook")
		if cbCfg.MaxRequests > 0 {
			cbConfig.MaxRequests = cbCfg.MaxRequests
		}
		if cbCfg.Interval > 0 {
			cbConfig.Interval = cbCfg.Interval
		}
		if cbCfg.Timeout > 0 {
			cbConfig.Timeout = cbCfg.Timeout
		}
		if cbCfg.FailureRatio > 0 {
			minRequests := cbCfg.MinRequests
			if minRequests == 0 {
				minRequests = 3
			}
			failureRatio := cbCfg.FailureRatio
			cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= minRequests && ratio >= failureRatio
			}
		}
		client.breaker = circuitbreaker.NewWrapper(cbConfig)
	}

	return client
}

func (c *Client) Send(ctx context.Context, payload relay.WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.WebhookDeliveriesTotal.WithLabelValues("rate_limited").Inc()
			return fmt.Errorf("rate limiter wait aborted: %w", err)
		}
	}

	start := time.Now()
	err = c.post(ctx, body)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.WebhookDeliveriesTotal.WithLabelValues(status).Inc()
	metrics.ObserveWebhookDuration(time.Since(start), status)

	if c.breaker != nil {
		c.breaker.RecordRequest(err == nil)
	}

	return err
}

func (c *Client) post(ctx context.Context, body []byte) error {
	do := func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("webhook request failed: %w", err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil, nil
	}

	var err error
	if c.breaker != nil {
		_, err = c.breaker.ExecuteWithContext(ctx, do)
	} else {
		_, err = do()
	}
	return err
}
