package ping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// PingTestSuite tests the availability gate
type PingTestSuite struct {
	suite.Suite
}

func authorityOf(server *httptest.Server) string {
	return strings.TrimPrefix(server.URL, "http://")
}

// TestNewService tests the constructor defaults
func (s *PingTestSuite) TestNewService() {
	gate := New("userservice", "localhost:30100")

	s.Equal("userservice", gate.Name())
	s.Equal("localhost:30100", gate.Host())
	s.False(gate.IsAlive())
	s.True(gate.LastChecked().IsZero())
}

// TestCheckNowSuccess tests that a 200 probe marks the service alive
func (s *PingTestSuite) TestCheckNowSuccess() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gate := New("userservice", authorityOf(server))
	gate.CheckNow(context.Background())

	s.True(gate.IsAlive())
	s.False(gate.LastChecked().IsZero())
}

// TestCheckNowNonSuccessStatus tests that a 5xx probe marks the service down
func (s *PingTestSuite) TestCheckNowNonSuccessStatus() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	gate := New("userservice", authorityOf(server))
	gate.CheckNow(context.Background())

	s.False(gate.IsAlive())
}

// TestCheckNowConnectionError tests that an unreachable host marks the service down
func (s *PingTestSuite) TestCheckNowConnectionError() {
	gate := New("userservice", "localhost:1")
	gate.CheckNow(context.Background())

	s.False(gate.IsAlive())
	s.False(gate.LastChecked().IsZero())
}

// TestCheckNowTimeout tests that a slow probe marks the service down
func (s *PingTestSuite) TestCheckNowTimeout() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gate := NewWithTimeout("userservice", authorityOf(server), 50*time.Millisecond)
	gate.CheckNow(context.Background())

	s.False(gate.IsAlive())
}

// TestCheckNowReflectsLatestProbe tests that the flag follows each probe outcome
func (s *PingTestSuite) TestCheckNowReflectsLatestProbe() {
	var healthy bool
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ok := healthy
		mu.Unlock()
		if ok {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	gate := New("userservice", authorityOf(server))

	outcomes := []bool{false, true, true, false, true}
	for _, want := range outcomes {
		mu.Lock()
		healthy = want
		mu.Unlock()

		gate.CheckNow(context.Background())
		s.Equal(want, gate.IsAlive())
	}
}

// TestIsAliveNeverProbes tests that reads make no network calls
func (s *PingTestSuite) TestIsAliveNeverProbes() {
	var requests int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gate := New("userservice", authorityOf(server))
	gate.CheckNow(context.Background())

	for i := 0; i < 20; i++ {
		gate.IsAlive()
	}

	mu.Lock()
	defer mu.Unlock()
	s.Equal(1, requests)
}

// TestConcurrentCheckNow tests that overlapping probes are safe
func (s *PingTestSuite) TestConcurrentCheckNow() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gate := New("userservice", authorityOf(server))

	var waitGroup sync.WaitGroup
	for i := 0; i < 10; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			gate.CheckNow(context.Background())
		}()
	}
	waitGroup.Wait()

	s.True(gate.IsAlive())
}

// TestMonitor tests the background re-probe loop
func (s *PingTestSuite) TestMonitor() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gate := New("userservice", authorityOf(server))
	s.False(gate.IsAlive())

	gate.Monitor(20 * time.Millisecond)
	defer gate.Stop()

	s.Eventually(gate.IsAlive, time.Second, 10*time.Millisecond)
}

// TestPingSuite runs the ping test suite
func TestPingSuite(t *testing.T) {
	suite.Run(t, new(PingTestSuite))
}
