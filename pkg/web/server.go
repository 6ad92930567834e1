package web

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"cso2web/pkg/inventory"
	"cso2web/pkg/log"
	"cso2web/pkg/maps"
	"cso2web/pkg/ping"
	"cso2web/pkg/users"
)

const (
	shutdownTimeout   = 10 * time.Second
	sessionSecretSize = 32
	staticDir         = "public"
)

// Server is the account webapp's HTTP front end.
type Server struct {
	echo      *echo.Echo
	users     *users.Service
	inventory *inventory.Service
	userGate  *ping.Service
	mapImages *maps.ImageList
	validate  *validator.Validate
}

// NewServer wires the webapp's routes, sessions and renderer.
func NewServer(usersSvc *users.Service, inventorySvc *inventory.Service, userGate *ping.Service, mapImages *maps.ImageList) (*Server, error) {
	s := &Server{
		echo:      echo.New(),
		users:     usersSvc,
		inventory: inventorySvc,
		userGate:  userGate,
		mapImages: mapImages,
		validate:  validator.New(),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	return s, nil
}

// Start runs the server until a termination signal arrives, then shuts the
// listener down gracefully. In-flight requests are not drained beyond the
// shutdown timeout.
func (s *Server) Start(addr string) error {
	go func() {
		log.Info().Str("addr", addr).Msg("Starting web page service")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return s.Shutdown()
}

// Shutdown closes the listening socket.
func (s *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (s *Server) setupRoutes() error {
	s.echo.HideBanner = true
	s.echo.HidePort = true

	pageRenderer, err := newRenderer()
	if err != nil {
		return err
	}
	s.echo.Renderer = pageRenderer

	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${status} ${method} ${uri} (${latency_human})\n",
	}))
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.echo.Use(session.Middleware(newSessionStore()))

	s.echo.Static("/static", staticDir)

	s.echo.GET("/", s.getIndex)
	s.echo.GET("/signup", s.getSignup)
	s.echo.GET("/login", s.getLogin)
	s.echo.GET("/logout", s.getLogout)
	s.echo.GET("/user", s.getUser)
	s.echo.GET("/user/delete", s.getUserDelete)
	s.echo.POST("/do_signup", s.postDoSignup)
	s.echo.POST("/do_login", s.postDoLogin)
	s.echo.POST("/do_delete", s.postDoDelete)

	return nil
}

// newSessionStore builds a cookie store with a per-process random secret.
// Sessions therefore do not survive a restart, matching the contract of a
// browser-session-scoped key-value store.
func newSessionStore() sessions.Store {
	secret := make([]byte, sessionSecretSize)
	if _, err := rand.Read(secret); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate session secret")
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return store
}

// compareCredentials checks the submitted password against the stored hash.
func (s *Server) compareCredentials(storedHash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
