package importer

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trade-journal-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Fetcher downloads journal exports from share/export URLs. Requests are
// rate limited so repeated account pulls stay polite to the export host.
type Fetcher struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewFetcher creates a new export downloader.
func NewFetcher(cfg *config.Fetch, logger *zap.Logger) *Fetcher {
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)
	return &Fetcher{
		client:  resty.New(),
		logger:  logger,
		limiter: limiter,
	}
}

// FetchCSV downloads a CSV export and parses it into a RawTable.
func (f *Fetcher) FetchCSV(ctx context.Context, url string) (RawTable, error) {
	body, err := f.fetch(ctx, url)
	if err != nil {
		return RawTable{}, err
	}
	return ReadCSV(strings.NewReader(body))
}

// fetch executes the download with rate limiting and bounded retries.
func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	const maxRetries = 3

	var resp *resty.Response
	var err error

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait failed: %w", err)
		}

		f.logger.Debug("Fetching export", zap.String("url", url), zap.Int("attempt", i+1))
		resp, err = f.client.R().SetContext(ctx).Get(url)

		if err == nil && !resp.IsError() {
			return resp.String(), nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.StatusCode() != 0 {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return "", fmt.Errorf("fetch failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		f.logger.Warn("Fetch failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("fetch failed after %d attempts: %w", maxRetries, err)
}
