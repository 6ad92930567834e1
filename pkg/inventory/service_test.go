package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cso2web/pkg/ping"
	"cso2web/pkg/users"
)

// InventoryTestSuite tests the signup inventory bootstrap
type InventoryTestSuite struct {
	suite.Suite
	mu    sync.Mutex
	calls map[string]int
}

func (s *InventoryTestSuite) SetupTest() {
	s.calls = map[string]int{}
}

func (s *InventoryTestSuite) record(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[path]++
}

func (s *InventoryTestSuite) newService(handler http.HandlerFunc) (*Service, *httptest.Server, *ping.Service) {
	server := httptest.NewServer(handler)
	authority := strings.TrimPrefix(server.URL, "http://")
	gate := ping.New("userservice", authority)
	service := NewWithClient(authority, gate,
		users.NewRetryableClient(0, 10*time.Millisecond, 20*time.Millisecond))
	return service, server, gate
}

// TestBootstrapAllCreated tests that four 201s yield true
func (s *InventoryTestSuite) TestBootstrapAllCreated() {
	service, server, _ := s.newService(func(w http.ResponseWriter, r *http.Request) {
		s.record(r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	})
	defer server.Close()

	created, err := service.Bootstrap(context.Background(), 7)
	s.NoError(err)
	s.True(created)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Equal(1, s.calls["/inventory/7"])
	s.Equal(1, s.calls["/inventory/7/cosmetics"])
	s.Equal(1, s.calls["/inventory/7/loadout"])
	s.Equal(1, s.calls["/inventory/7/buymenu"])
}

// TestBootstrapPartialFailure tests that one rejection yields false
func (s *InventoryTestSuite) TestBootstrapPartialFailure() {
	service, server, _ := s.newService(func(w http.ResponseWriter, r *http.Request) {
		s.record(r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/loadout") {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	defer server.Close()

	created, err := service.Bootstrap(context.Background(), 7)
	s.NoError(err)
	s.False(created)
}

// TestBootstrapTransportFailure tests the unreachable path and gate flip
func (s *InventoryTestSuite) TestBootstrapTransportFailure() {
	service, server, gate := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	gate.CheckNow(context.Background())
	s.Require().True(gate.IsAlive())
	server.Close()

	created, err := service.Bootstrap(context.Background(), 7)
	s.False(created)
	s.ErrorIs(err, ErrBootstrapUnreachable)
	s.False(gate.IsAlive())
}

// TestInventorySuite runs the inventory test suite
func TestInventorySuite(t *testing.T) {
	suite.Run(t, new(InventoryTestSuite))
}
