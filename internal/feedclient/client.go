package feedclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"personafeed/internal/common"
	"personafeed/internal/feed"
	"personafeed/internal/logger"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 16 << 20

// Client talks to the feed service on behalf of a viewer.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithEngagementRate caps how fast engagement events are posted.
func WithEngagementRate(every time.Duration, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(every), burst) }
}

// New builds a client for baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// the feed fetch itself has no deadline; callers cancel through ctx
		http: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Feed loads the persona feed. Only a successful response with no rows is
// reported as common.ErrEmptyFeed, carrying the server's message; an HTTP 404
// stays a plain NotFoundError.
func (c *Client) Feed(ctx context.Context, personaID, companyID int64) ([]feed.FeedRow, error) {
	path := fmt.Sprintf("/content/persona/%d/company/%d", personaID, companyID)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []feed.FeedRow
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("decode feed: %w", err)
		}
		if len(rows) == 0 {
			return nil, common.NewEmptyFeedError(feed.EmptyFeedMessage)
		}
		return rows, nil
	}

	var envelope struct {
		Message string          `json:"message"`
		Data    []feed.FeedRow `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	if len(envelope.Data) == 0 {
		msg := envelope.Message
		if msg == "" {
			msg = feed.EmptyFeedMessage
		}
		return nil, common.NewEmptyFeedError(msg)
	}
	return envelope.Data, nil
}

// RecordEngagement posts one engagement event for contentID.
func (c *Client) RecordEngagement(ctx context.Context, contentID int64, kind common.EngagementType) error {
	if !kind.IsValid() {
		return common.NewInvalidEngagementTypeError(string(kind))
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	payload, err := json.Marshal(map[string]string{"type": string(kind)})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, fmt.Sprintf("/content/%d/metrics", contentID), payload)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(common.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// statusError turns an error response back into the matching error kind.
func statusError(code int, body []byte) error {
	var msg common.MessageResponse
	if err := json.Unmarshal(body, &msg); err != nil || msg.Message == "" {
		msg.Message = http.StatusText(code)
	}
	switch code {
	case http.StatusBadRequest:
		return common.NewValidationError("%s", msg.Message)
	case http.StatusNotFound:
		return common.NewNotFoundError("%s", msg.Message)
	case http.StatusConflict:
		return common.NewConflictError("%s", msg.Message)
	}
	return fmt.Errorf("feed service returned %d: %s", code, msg.Message)
}
