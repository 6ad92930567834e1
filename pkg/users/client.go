package users

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultRetryMax     = 2
	defaultRetryWaitMin = 250 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
)

// NewRetryableClient creates the HTTP client used for user service requests.
// It retries only connection and timeout errors; HTTP status errors are
// returned as responses so callers can translate them into domain results.
func NewRetryableClient(retryMax int, retryWaitMin, retryWaitMax time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil // Disable retryablehttp logging
	client.CheckRetry = transportOnlyRetryPolicy
	return client
}

// transportOnlyRetryPolicy retries when no response was received at all.
// Responses with 4xx/5xx statuses are forwarded untouched, they are
// well-formed answers, not evidence of unreachability.
func transportOnlyRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if resp != nil {
		return false, nil
	}

	if err != nil {
		return true, nil //nolint:nilerr // retryablehttp reports the final error itself
	}

	return false, nil
}
