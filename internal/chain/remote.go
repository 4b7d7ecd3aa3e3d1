package chain

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// RetryConfig bounds the retry behavior of a RemoteSource fetch.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration
}

// DefaultRetryConfig is used when a RemoteSource is built without explicit
// retry settings.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     10 * time.Second,
	Timeout:        30 * time.Second,
}

// HTTPError represents a non-2xx response from the chain endpoint.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("chain endpoint returned %d: %s", e.Status, e.Body)
}

// RemoteSource fetches CSV chain data over HTTP. Calls run through a circuit
// breaker so a flapping endpoint fails fast, and transient failures are
// retried with capped jittered backoff.
type RemoteSource struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	config  RetryConfig
	logger  *log.Logger
}

// NewRemoteSource creates a Source that fetches the chain from url.
func NewRemoteSource(url string, logger *log.Logger, config ...RetryConfig) *RemoteSource {
	cfg := DefaultRetryConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if logger == nil {
		logger = log.Default()
	}

	settings := gobreaker.Settings{
		Name:    "ChainSource",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Printf("Circuit breaker %s state changed from %s to %s", name, from, to)
		},
	}

	return &RemoteSource{
		url:     url,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		config:  cfg,
		logger:  logger,
	}
}

// Fetch downloads and normalizes the chain, retrying transient failures.
func (s *RemoteSource) Fetch(ctx context.Context) ([]Row, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var lastErr error
	backoff := s.config.InitialBackoff

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if err := fetchCtx.Err(); err != nil {
			return nil, fmt.Errorf("chain fetch canceled: %w", err)
		}

		rows, err := s.fetchOnce(fetchCtx)
		if err == nil {
			return rows, nil
		}

		lastErr = err
		s.logger.Printf("Chain fetch attempt %d/%d failed: %v", attempt+1, s.config.MaxRetries+1, err)

		if !isTransientError(err) || attempt == s.config.MaxRetries {
			break
		}

		select {
		case <-time.After(backoff):
			backoff = nextBackoff(backoff, s.config.MaxBackoff)
		case <-fetchCtx.Done():
			return nil, fmt.Errorf("chain fetch timed out during backoff: %w", fetchCtx.Err())
		}
	}

	return nil, fmt.Errorf("fetching chain from %s: %w", s.url, lastErr)
}

func (s *RemoteSource) fetchOnce(ctx context.Context) ([]Row, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &HTTPError{Status: resp.StatusCode, Body: resp.Status}
		}

		return ReadCSV(resp.Body)
	})
	if err != nil {
		return nil, err
	}

	rows, ok := res.([]Row)
	if !ok {
		return nil, fmt.Errorf("chain source: unexpected breaker result type")
	}
	return rows, nil
}

func nextBackoff(current, max time.Duration) time.Duration {
	backoff := time.Duration(float64(current) * 1.5)
	if backoff > max {
		backoff = max
	}

	maxJitter := int64(backoff / 4)
	if maxJitter > 0 {
		jitter, err := rand.Int(rand.Reader, big.NewInt(maxJitter))
		if err == nil {
			backoff += time.Duration(jitter.Int64())
		}
	}

	return backoff
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return false
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout",
		"connection refused",
		"connection reset",
		"temporary failure",
		"429",
		"502",
		"503",
		"504",
		"network",
		"dns",
		"tcp",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
