package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/park285/othello-trainer/internal/drill"
	"github.com/park285/othello-trainer/internal/telemetry"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// Client talks to the board API over HTTP.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider
	logger  *zap.Logger

	defaultTimeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		logger:         zap.NewNop(),
		defaultTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Fetch(ctx context.Context, positionID string) (*Position, error) {
	ctx, span := telemetry.Tracer("gateway").Start(ctx, "gateway.fetch")
	span.SetAttributes(attribute.String("position_id", positionID))
	defer span.End()

	var pos Position
	if err := c.getJSON(ctx, "/api/boards/"+url.PathEscape(positionID), &pos); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("board_fetch_failed", zap.String("id", positionID), zap.Error(err))
		return nil, err
	}
	if pos.Children == nil {
		pos.Children = map[int]string{}
	}
	span.SetAttributes(attribute.Int("children", len(pos.Children)))
	return &pos, nil
}

// Openings fetches drill lines. An empty color asks for both colors.
func (c *Client) Openings(ctx context.Context, color string) ([]drill.Opening, error) {
	path := "/api/openings"
	if color = strings.TrimSpace(color); color != "" {
		path += "?color=" + url.QueryEscape(color)
	}
	var out []drill.Opening
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) BotMove(ctx context.Context, positionID string) (*BotReply, error) {
	var out BotReply
	if err := c.getJSON(ctx, "/api/boards/"+url.PathEscape(positionID)+"/bot", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set("Accept", "application/json")

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
		return fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusNotFound || status == fasthttp.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrNotFound, truncate(strings.TrimSpace(string(resp.Body())), 256))
	case status < 200 || status >= 300:
		return fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, status, truncate(string(resp.Body()), 512))
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
