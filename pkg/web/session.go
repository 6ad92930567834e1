package web

import (
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"cso2web/pkg/log"
)

const (
	sessionName = "cso2-web-session"
	sessionAge  = 30 * 60 // seconds

	sessionKeyUserID = "userId"
	sessionKeyStatus = "status"
	sessionKeyError  = "error"
)

// currentUserID returns the logged-in user's ID from the session cookie.
func currentUserID(c echo.Context) (int, bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return 0, false
	}

	userID, ok := sess.Values[sessionKeyUserID].(int)
	return userID, ok
}

// setUserID stores the logged-in user's ID in the session.
func setUserID(c echo.Context, userID int) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}

	sess.Values[sessionKeyUserID] = userID
	return sess.Save(c.Request(), c.Response())
}

// clearUserID logs the user out of the session.
func clearUserID(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}

	delete(sess.Values, sessionKeyUserID)
	return sess.Save(c.Request(), c.Response())
}

// takeFlashes reads and clears the one-shot status and error messages.
// It must run before the response body is written, the cleared session
// travels back as a cookie header.
func takeFlashes(c echo.Context) (status, errMsg string) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return "", ""
	}

	status, _ = sess.Values[sessionKeyStatus].(string)
	errMsg, _ = sess.Values[sessionKeyError].(string)

	if status != "" || errMsg != "" {
		delete(sess.Values, sessionKeyStatus)
		delete(sess.Values, sessionKeyError)
		if saveErr := sess.Save(c.Request(), c.Response()); saveErr != nil {
			log.Warn().Err(saveErr).Msg("Failed to clear session flashes")
		}
	}

	return status, errMsg
}

// redirectWithError stores an error flash and redirects.
func redirectWithError(c echo.Context, errMsg, redirPage string) error {
	sess, err := session.Get(sessionName, c)
	if err == nil {
		sess.Values[sessionKeyError] = errMsg
		if saveErr := sess.Save(c.Request(), c.Response()); saveErr != nil {
			log.Warn().Err(saveErr).Msg("Failed to save session flash")
		}
	}
	return c.Redirect(http.StatusFound, redirPage)
}

// redirectWithStatus stores a status flash and redirects.
func redirectWithStatus(c echo.Context, status, redirPage string) error {
	sess, err := session.Get(sessionName, c)
	if err == nil {
		sess.Values[sessionKeyStatus] = status
		if saveErr := sess.Save(c.Request(), c.Response()); saveErr != nil {
			log.Warn().Err(saveErr).Msg("Failed to save session flash")
		}
	}
	return c.Redirect(http.StatusFound, redirPage)
}
