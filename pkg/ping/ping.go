package ping

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cso2web/pkg/log"
)

const (
	defaultProbeTimeout  = 5 * time.Second
	defaultProbeInterval = 5 * time.Second
	pingPath             = "/ping"
)

// Service tracks the reachability of one upstream dependency.
//
// The alive flag reflects only the outcome of the most recently completed
// probe; it is never inferred from unrelated traffic. There is no half-open
// state and no failure counting, a single probe flips the flag either way.
type Service struct {
	name      string
	authority string

	mu        sync.RWMutex
	alive     bool
	lastCheck time.Time

	client *http.Client
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a gate for the dependency reachable at authority (host:port).
func New(name, authority string) *Service {
	return NewWithTimeout(name, authority, defaultProbeTimeout)
}

// NewWithTimeout creates a gate with a custom probe timeout.
func NewWithTimeout(name, authority string, probeTimeout time.Duration) *Service {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}

	return &Service{
		name:      name,
		authority: authority,
		client:    &http.Client{Timeout: probeTimeout},
		stopCh:    make(chan struct{}),
	}
}

// CheckNow probes the dependency's /ping endpoint and records the outcome.
// A 2xx response marks the dependency alive; any network error, timeout or
// non-2xx status marks it down. Probe failures never escape this method.
// Concurrent calls may race; the last completed probe wins.
func (s *Service) CheckNow(ctx context.Context) {
	alive := s.probe(ctx)

	s.mu.Lock()
	wasAlive := s.alive
	s.alive = alive
	s.lastCheck = time.Now()
	s.mu.Unlock()

	if alive && !wasAlive {
		log.Info().Str("service", s.name).Str("host", s.authority).Msg("Service is reachable")
	} else if !alive && wasAlive {
		log.Warn().Str("service", s.name).Str("host", s.authority).Msg("Service became unreachable")
	}
}

func (s *Service) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+s.authority+pingPath, nil)
	if err != nil {
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("service", s.name).Msg("Ping probe failed")
		return false
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("service", s.name).Msg("Failed to close ping response body")
		}
	}()

	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}

// IsAlive returns the cached flag without performing any I/O.
func (s *Service) IsAlive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alive
}

// Host returns the configured authority string, for diagnostics.
func (s *Service) Host() string {
	return s.authority
}

// Name returns the dependency's display name.
func (s *Service) Name() string {
	return s.name
}

// LastChecked returns the time of the most recent completed probe,
// or the zero time if the dependency was never probed.
func (s *Service) LastChecked() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCheck
}

// Monitor starts a background loop re-probing the dependency on a ticker
// so availability self-heals after outages without caller traffic.
// Call Stop to terminate the loop.
func (s *Service) Monitor(interval time.Duration) {
	if interval <= 0 {
		interval = defaultProbeInterval
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.CheckNow(context.Background())
			}
		}
	}()

	log.Info().Str("service", s.name).Dur("interval", interval).Msg("Availability monitor started")
}

// Stop terminates the background monitor, if one was started.
func (s *Service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}
