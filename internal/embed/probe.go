package embed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"personafeed/internal/logger"

	gobreaker "github.com/sony/gobreaker/v2"
)

// Prober checks that a source is reachable.
type Prober interface {
	Probe(ctx context.Context, method, target string) error
}

type ProbeFunc func(ctx context.Context, method, target string) error

func (f ProbeFunc) Probe(ctx context.Context, method, target string) error {
	return f(ctx, method, target)
}

// StatusError is a probe that reached the host and got a non-2xx/3xx answer.
type StatusError struct {
	Method string
	Target string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Target, e.Code)
}

// HTTPProber issues probe requests through one circuit breaker per host, so
// an unreachable provider fails fast instead of holding every item for the
// full readiness timeout.
type HTTPProber struct {
	client *http.Client
	log    logger.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewHTTPProber(client *http.Client, log logger.Logger) *HTTPProber {
	if client == nil {
		client = &http.Client{Timeout: DefaultReadyTimeout}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &HTTPProber{
		client:   client,
		log:      log,
		breakers: map[string]*gobreaker.CircuitBreaker[struct{}]{},
	}
}

func (p *HTTPProber) Probe(ctx context.Context, method, target string) error {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid source url %q", target)
	}

	_, err = p.breaker(u.Host).Execute(func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, target, nil)
		if err != nil {
			return struct{}{}, err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		if resp.StatusCode >= http.StatusBadRequest {
			return struct{}{}, &StatusError{Method: method, Target: target, Code: resp.StatusCode}
		}
		return struct{}{}, nil
	})
	return err
}

func (p *HTTPProber) breaker(host string) *gobreaker.CircuitBreaker[struct{}] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cb, ok := p.breakers[host]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A missing post or a scroll-away is not a sign the host is down.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || errors.As(err, &se) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.log.Info(context.Background(), "embed probe breaker state change",
				logger.F("host", name),
				logger.F("from", from.String()),
				logger.F("to", to.String()),
			)
		},
	})
	p.breakers[host] = cb
	return cb
}

// State reports the breaker state for host, "closed" if none exists yet.
func (p *HTTPProber) State(host string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cb, ok := p.breakers[host]; ok {
		return cb.State().String()
	}
	return gobreaker.StateClosed.String()
}
