package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"cso2web/pkg/log"
	"cso2web/pkg/ping"
	"cso2web/pkg/users"
)

// ErrBootstrapUnreachable is returned when the inventory endpoints could not
// be reached at the transport level during signup bootstrap.
var ErrBootstrapUnreachable = errors.New("inventory bootstrap unreachable")

// Service creates a new user's starting inventory, cosmetics, loadouts and
// buy menu. The endpoints live on the user service authority; the separate
// inventory service is only a startup liveness dependency.
type Service struct {
	authority string
	gate      *ping.Service
	client    *retryablehttp.Client
}

// New creates an inventory bootstrap client.
func New(authority string, gate *ping.Service) *Service {
	return NewWithClient(authority, gate, users.NewRetryableClient(2, 250*time.Millisecond, 2*time.Second))
}

// NewWithClient creates an inventory bootstrap client with a caller-supplied
// HTTP client, used by tests to shorten retry waits.
func NewWithClient(authority string, gate *ping.Service, client *retryablehttp.Client) *Service {
	return &Service{
		authority: authority,
		gate:      gate,
		client:    client,
	}
}

// Bootstrap creates all starting items for a freshly registered user. The
// four creates are independent, so they run concurrently; the result is true
// only if every one of them reported created.
func (s *Service) Bootstrap(ctx context.Context, userID int) (bool, error) {
	paths := []string{
		"/inventory/" + strconv.Itoa(userID),
		"/inventory/" + strconv.Itoa(userID) + "/cosmetics",
		"/inventory/" + strconv.Itoa(userID) + "/loadout",
		"/inventory/" + strconv.Itoa(userID) + "/buymenu",
	}

	type outcome struct {
		path    string
		created bool
		err     error
	}

	results := make(chan outcome, len(paths))

	var waitGroup sync.WaitGroup
	for _, path := range paths {
		waitGroup.Add(1)
		go func(p string) {
			defer waitGroup.Done()
			created, err := s.create(ctx, p)
			results <- outcome{path: p, created: created, err: err}
		}(path)
	}
	waitGroup.Wait()
	close(results)

	allCreated := true
	var lastErr error

	for result := range results {
		if result.err != nil {
			log.Warn().Err(result.err).Str("path", result.path).Int("user_id", userID).Msg("Inventory bootstrap call failed")
			lastErr = result.err
			allCreated = false
			continue
		}
		if !result.created {
			allCreated = false
		}
	}

	if lastErr != nil {
		return false, lastErr
	}

	return allCreated, nil
}

func (s *Service) create(ctx context.Context, path string) (bool, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, "http://"+s.authority+path, nil)
	if err != nil {
		return false, fmt.Errorf("build bootstrap request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.gate.CheckNow(context.Background())
		return false, fmt.Errorf("%w: %w", ErrBootstrapUnreachable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("Failed to close bootstrap response body")
		}
	}()

	return resp.StatusCode == http.StatusCreated, nil
}
