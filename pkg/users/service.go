package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"

	"cso2web/pkg/cache"
	"cso2web/pkg/log"
	"cso2web/pkg/models"
	"cso2web/pkg/ping"
)

// Service performs account operations against the remote user service with
// availability-aware short-circuiting and uniform error translation.
//
// Error contract: transport failures trigger a gate re-check and surface as
// ErrServiceUnreachable; well-formed rejections (404, 409, 401, ...) become
// nil/false domain results; malformed bodies surface as decode errors without
// touching availability.
type Service struct {
	authority string
	gate      *ping.Service
	userCache *cache.UserCache
	client    *retryablehttp.Client
}

// New creates a user service client with the default retry policy.
func New(authority string, gate *ping.Service, userCache *cache.UserCache) *Service {
	return NewWithClient(authority, gate, userCache,
		NewRetryableClient(defaultRetryMax, defaultRetryWaitMin, defaultRetryWaitMax))
}

// NewWithClient creates a user service client with a caller-supplied HTTP
// client, used by tests to shorten retry waits.
func NewWithClient(authority string, gate *ping.Service, userCache *cache.UserCache, client *retryablehttp.Client) *Service {
	return &Service{
		authority: authority,
		gate:      gate,
		userCache: userCache,
		client:    client,
	}
}

type createRequest struct {
	Username   string `json:"username"`
	PlayerName string `json:"playername"`
	Password   string `json:"password"`
}

// Create registers a new account. It returns the created user on a 201
// response (the body may carry only the new userId), nil on a well-formed
// rejection such as a duplicate username, and ErrServiceUnreachable after a
// transport failure.
func (s *Service) Create(ctx context.Context, username, playerName, password string) (*models.User, error) {
	body, err := json.Marshal(createRequest{
		Username:   username,
		PlayerName: playerName,
		Password:   password,
	})
	if err != nil {
		return nil, fmt.Errorf("encode create request: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPost, "/users/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer s.closeBody(resp, "create")

	if resp.StatusCode != http.StatusCreated {
		log.Debug().Int("status", resp.StatusCode).Str("username", username).Msg("User creation rejected")
		return nil, nil
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	return &user, nil
}

// Get returns the user with the given ID, consulting the read cache first.
// On a cache miss it returns nil without a network call when the gate reports
// the service down, and nil on a 404.
func (s *Service) Get(ctx context.Context, userID int) (*models.User, error) {
	if user := s.userCache.Get(userID); user != nil {
		return user, nil
	}

	if !s.gate.IsAlive() {
		return nil, nil
	}

	resp, err := s.do(ctx, http.MethodGet, "/users/"+strconv.Itoa(userID), nil)
	if err != nil {
		return nil, err
	}
	defer s.closeBody(resp, "get")

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	s.userCache.Set(user.UserID, &user)
	return &user, nil
}

// GetByName returns the user with the given name. There is no name index in
// the cache, so this always reaches the service, but a successful fetch
// populates the id-keyed cache so a following Get is free.
func (s *Service) GetByName(ctx context.Context, userName string) (*models.User, error) {
	if !s.gate.IsAlive() {
		return nil, nil
	}

	resp, err := s.do(ctx, http.MethodGet, "/users/byname/"+url.PathEscape(userName), nil)
	if err != nil {
		return nil, err
	}
	defer s.closeBody(resp, "get by name")

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	s.userCache.Set(user.UserID, &user)
	return &user, nil
}

// Delete removes an account. It returns true only on a success status.
// The read cache is left alone; a stale entry expires with its TTL.
func (s *Service) Delete(ctx context.Context, userID int) (bool, error) {
	resp, err := s.do(ctx, http.MethodDelete, "/users/"+strconv.Itoa(userID), nil)
	if err != nil {
		return false, err
	}
	defer s.closeBody(resp, "delete")

	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices, nil
}

type validateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidateCredentials forwards a credential check to the service's own
// validation endpoint. A 200 means the credentials are valid.
func (s *Service) ValidateCredentials(ctx context.Context, username, password string) (bool, error) {
	body, err := json.Marshal(validateRequest{Username: username, Password: password})
	if err != nil {
		return false, fmt.Errorf("encode validate request: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPost, "/users/auth/validate", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	defer s.closeBody(resp, "validate")

	return resp.StatusCode == http.StatusOK, nil
}

// SessionCount returns the number of sessions the user service reports on
// its /ping endpoint, or 0 on a non-success status.
func (s *Service) SessionCount(ctx context.Context) (int, error) {
	resp, err := s.do(ctx, http.MethodGet, "/ping", nil)
	if err != nil {
		return 0, err
	}
	defer s.closeBody(resp, "session count")

	if resp.StatusCode != http.StatusOK {
		return 0, nil
	}

	var status models.PingStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	return status.Sessions, nil
}

// do issues one request. A transport-level failure is the first signal the
// service might be down, so it re-checks the gate before reporting back.
func (s *Service) do(ctx context.Context, method, path string, body *bytes.Reader) (*http.Response, error) {
	var reqBody interface{}
	if body != nil {
		reqBody = body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, "http://"+s.authority+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		// Probe on a fresh context; the request's own context may already
		// be expired, which would make the probe fail for the wrong reason.
		s.gate.CheckNow(context.Background())
		return nil, fmt.Errorf("%w: %w", ErrServiceUnreachable, err)
	}

	return resp, nil
}

func (s *Service) closeBody(resp *http.Response, op string) {
	if closeErr := resp.Body.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Str("op", op).Msg("Failed to close user service response body")
	}
}
