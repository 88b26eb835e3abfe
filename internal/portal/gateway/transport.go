package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// RetryConfig bounds the retry loop for idempotent requests.
type RetryConfig struct {
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   2,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	}
}

// BreakerConfig configures the circuit breaker in front of the API.
type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
	// StateGauge receives the breaker state on every transition. Nil disables it.
	StateGauge prometheus.Gauge
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      15 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
		StateGauge:   BreakerState,
	}
}

// serverError carries a drained 5xx response through the breaker so the
// failure is counted and the body is still available to the caller.
type serverError struct {
	status int
	body   []byte
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error %d", e.status)
}

// transport sends requests with retry on network errors and 5xx for
// idempotent methods, behind a circuit breaker.
type transport struct {
	client  *http.Client
	retry   RetryConfig
	breaker *gobreaker.CircuitBreaker[*http.Response]
	log     zerolog.Logger
}

func newTransport(client *http.Client, retry RetryConfig, bc BreakerConfig, log zerolog.Logger) *transport {
	settings := gobreaker.Settings{
		Name:        "lms-api",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about server health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			if bc.StateGauge != nil {
				bc.StateGauge.Set(stateToFloat(to))
			}
		},
	}

	return &transport{
		client:  client,
		retry:   retry,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		log:     log,
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (t *transport) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return t.breaker.Execute(func() (*http.Response, error) {
		resp, err := t.send(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			_ = resp.Body.Close()
			return nil, &serverError{status: resp.StatusCode, body: body}
		}
		return resp, nil
	})
}

func (t *transport) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := t.retry.MaxRetries
	if !idempotent(req.Method) {
		maxRetries = 0
	}

	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := t.retry.RetryWaitMin * time.Duration(1<<uint(attempt-1))
			if wait > t.retry.RetryWaitMax {
				wait = t.retry.RetryWaitMax
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			t.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("attempt", attempt).Msg("retrying request")
		}

		resp, err = t.client.Do(req.WithContext(ctx))
		if err != nil {
			if retryable(err) && attempt < maxRetries {
				continue
			}
			return nil, err
		}

		if resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented && attempt < maxRetries {
			_ = resp.Body.Close()
			continue
		}
		return resp, nil
	}
	return resp, err
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne)
}
