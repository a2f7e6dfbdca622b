package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wikirelay/internal/broker"
	"wikirelay/internal/config"
	"wikirelay/internal/event"
	"wikirelay/internal/logger"
	"wikirelay/pkg/metrics"
)

const reconnectDelay = 5 * time.Second

// maxLineSize bounds a single SSE line; recentchange events with long
// comments can exceed the bufio default.
const maxLineSize = 1024 * 1024

// StreamConsumer feeds the pipeline from a MediaWiki EventStreams
// recentchange endpoint (server-sent events). The endpoint requires an
// identifying User-Agent.
type StreamConsumer struct {
	url       string
	userAgent string
	client    *http.Client
	logger    logger.Logger
}

func NewStreamConsumer(cfg config.StreamSourceConfig, log logger.Logger) *StreamConsumer {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "wikirelay (https://github.com/wikirelay/wikirelay)"
	}
	return &StreamConsumer{
		url:       cfg.URL,
		userAgent: userAgent,
		client:    &http.Client{},
		logger:    log,
	}
}

// Run consumes the stream until the context is canceled, reconnecting
// after connection loss. Handler errors are logged and the stream moves
// on; a change event that cannot be relayed is dropped, not replayed.
func (c *StreamConsumer) Run(ctx context.Context, handler broker.HandlerFunc) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := c.connect(ctx)
		if err != nil {
			c.logger.WarnwCtx(ctx, "Stream connect failed, retrying",
				"error", err,
				"url", c.url,
			)
		} else {
			c.logger.InfowCtx(ctx, "Connected to change event stream",
				"url", c.url,
			)
			c.consume(ctx, body, handler)
		}

		metrics.StreamReconnectsTotal.Inc()
		select {
		case <-time.After(reconnectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *StreamConsumer) connect(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating stream request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream response: %d %s", resp.StatusCode, resp.Status)
	}
	return resp.Body, nil
}

func (c *StreamConsumer) consume(ctx context.Context, body io.ReadCloser, handler broker.HandlerFunc) {
	defer body.Close()

	scanner := bufio.NewScanner(body)
	buf := make([]byte, maxLineSize)
	scanner.Buffer(buf, maxLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := scanner.Bytes()
		// Event payloads arrive on "data: " lines; everything else
		// (comments, event ids) is keep-alive noise.
		if !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}
		payload := line[6:]

		var ev event.ChangeEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			metrics.StreamEventsReadTotal.WithLabelValues("invalid").Inc()
			c.logger.WarnwCtx(ctx, "Failed to parse stream event",
				"error", err,
			)
			continue
		}
		metrics.StreamEventsReadTotal.WithLabelValues("ok").Inc()

		if err := handler(ctx, &ev); err != nil {
			c.logger.ErrorwCtx(ctx, "Failed to relay stream event",
				"error", err,
				"title", ev.Title,
			)
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		c.logger.WarnwCtx(ctx, "Stream read ended",
			"error", err,
		)
	}
}
