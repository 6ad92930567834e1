package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cso2web/pkg/log"
	"cso2web/pkg/models"
)

// User-facing messages. Upstream errors are logged in full but never shown.
const (
	msgBadRequest       = "A bad request was made."
	msgPasswordMismatch = "The passwords are not the same."
	msgBadCredentials   = "Bad credentials"
	msgLoggedOut        = "Logged out successfully."
	msgAccountDeleted   = "Account deleted successfully."
	msgNotConfirmed     = "The confirmation box was not ticked."
	msgDeleteFailed     = "Failed to delete account."
	msgServiceDown      = "The account service is unavailable. Try again later."
	msgSignupIncomplete = "Could not finish setting up the new account. Try again later."
)

func (s *Server) page(c echo.Context, user *models.User, playersOnline int) pageData {
	status, errMsg := takeFlashes(c)
	return pageData{
		User:          user,
		PlayersOnline: playersOnline,
		MapImage:      s.mapImages.Random(),
		Status:        status,
		Error:         errMsg,
	}
}

// getIndex renders the landing page with the online player count.
func (s *Server) getIndex(c echo.Context) error {
	if _, loggedIn := currentUserID(c); loggedIn {
		return c.Redirect(http.StatusFound, "/user")
	}

	playersOnline, err := s.users.SessionCount(c.Request().Context())
	if err != nil {
		log.Warn().Err(err).Msg("Could not fetch session count")
		playersOnline = 0
	}

	return c.Render(http.StatusOK, "index", s.page(c, nil, playersOnline))
}

// getSignup renders the signup page.
func (s *Server) getSignup(c echo.Context) error {
	if _, loggedIn := currentUserID(c); loggedIn {
		return c.Redirect(http.StatusFound, "/user")
	}
	return c.Render(http.StatusOK, "signup", s.page(c, nil, 0))
}

// getLogin renders the login page.
func (s *Server) getLogin(c echo.Context) error {
	if _, loggedIn := currentUserID(c); loggedIn {
		return c.Redirect(http.StatusFound, "/user")
	}
	return c.Render(http.StatusOK, "login", s.page(c, nil, 0))
}

// getLogout drops the session identity and redirects to the login page.
func (s *Server) getLogout(c echo.Context) error {
	if err := clearUserID(c); err != nil {
		log.Warn().Err(err).Msg("Failed to clear session on logout")
	}
	return redirectWithStatus(c, msgLoggedOut, "/user")
}

// getUser renders the profile page for the logged-in user.
func (s *Server) getUser(c echo.Context) error {
	return s.renderUserPage(c, "user")
}

// getUserDelete renders the account deletion confirmation page.
func (s *Server) getUserDelete(c echo.Context) error {
	return s.renderUserPage(c, "delete")
}

func (s *Server) renderUserPage(c echo.Context, name string) error {
	userID, loggedIn := currentUserID(c)
	if !loggedIn {
		return c.Redirect(http.StatusFound, "/login")
	}

	user, err := s.users.Get(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("Failed to fetch user")
	}

	return c.Render(http.StatusOK, name, s.page(c, user, 0))
}

// postDoSignup creates a new account and its starting inventory.
func (s *Server) postDoSignup(c echo.Context) error {
	if _, loggedIn := currentUserID(c); loggedIn {
		return c.Redirect(http.StatusFound, "/user")
	}

	var form signupForm
	if err := c.Bind(&form); err != nil {
		return redirectWithError(c, msgBadRequest, "/signup")
	}
	if err := s.validate.Struct(form); err != nil {
		return redirectWithError(c, msgBadRequest, "/signup")
	}
	if form.Password != form.ConfirmedPassword {
		return redirectWithError(c, msgPasswordMismatch, "/signup")
	}

	if !s.userGate.IsAlive() {
		return redirectWithError(c, msgServiceDown, "/signup")
	}

	user, err := s.users.Create(c.Request().Context(), form.Username, form.PlayerName, form.Password)
	if err != nil {
		log.Error().Err(err).Str("username", form.Username).Msg("Signup failed")
		return redirectWithError(c, msgServiceDown, "/signup")
	}
	if user == nil {
		return redirectWithError(c, msgBadCredentials, "/signup")
	}

	created, err := s.inventory.Bootstrap(c.Request().Context(), user.UserID)
	if err != nil || !created {
		log.Error().Err(err).Int("user_id", user.UserID).Msg("Inventory bootstrap failed")
		return redirectWithError(c, msgSignupIncomplete, "/signup")
	}

	if err := setUserID(c, user.UserID); err != nil {
		log.Error().Err(err).Msg("Failed to save session")
		return redirectWithError(c, msgBadRequest, "/signup")
	}

	log.Info().Int("user_id", user.UserID).Str("username", form.Username).Msg("Account created")
	return c.Redirect(http.StatusFound, "/user")
}

// postDoLogin validates credentials and starts a session. The stored hash
// is compared locally, the plaintext password never travels further than
// this process.
func (s *Server) postDoLogin(c echo.Context) error {
	if _, loggedIn := currentUserID(c); loggedIn {
		return c.Redirect(http.StatusFound, "/user")
	}

	var form loginForm
	if err := c.Bind(&form); err != nil {
		return redirectWithError(c, msgBadRequest, "/login")
	}
	if err := s.validate.Struct(form); err != nil {
		return redirectWithError(c, msgBadRequest, "/login")
	}

	user, err := s.users.GetByName(c.Request().Context(), form.Username)
	if err != nil {
		log.Error().Err(err).Str("username", form.Username).Msg("Login lookup failed")
		return redirectWithError(c, msgServiceDown, "/login")
	}
	if user == nil {
		return redirectWithError(c, msgBadCredentials, "/login")
	}

	if !s.compareCredentials(user.Password, form.Password) {
		return redirectWithError(c, msgBadCredentials, "/login")
	}

	if err := setUserID(c, user.UserID); err != nil {
		log.Error().Err(err).Msg("Failed to save session")
		return redirectWithError(c, msgBadRequest, "/login")
	}

	log.Info().Int("user_id", user.UserID).Msg("User logged in")
	return c.Redirect(http.StatusFound, "/user")
}

// postDoDelete deletes the logged-in user's account.
func (s *Server) postDoDelete(c echo.Context) error {
	userID, loggedIn := currentUserID(c)
	if !loggedIn {
		return c.Redirect(http.StatusFound, "/login")
	}

	var form deleteForm
	if err := c.Bind(&form); err != nil || form.Confirmation != "on" {
		return redirectWithError(c, msgNotConfirmed, "/user/delete")
	}

	deleted, err := s.users.Delete(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("Account deletion failed")
		return redirectWithError(c, msgServiceDown, "/user")
	}
	if !deleted {
		return redirectWithError(c, msgDeleteFailed, "/user")
	}

	if err := clearUserID(c); err != nil {
		log.Warn().Err(err).Msg("Failed to clear session after deletion")
	}

	log.Info().Int("user_id", userID).Msg("Account deleted")
	return redirectWithStatus(c, msgAccountDeleted, "/login")
}
