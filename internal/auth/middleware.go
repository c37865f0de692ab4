package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	sessionContextKey   = "auth_session"
	authTokenContextKey = "auth_token"
)

// LoadSession attaches the caller's session to the context when the session
// cookie is valid. It never rejects a request.
func (s *Service) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.attachSession(c)
		c.Next()
	}
}

// RequireSession redirects callers without a valid session to loginPath and
// clears a stale session cookie on the way.
func (s *Service) RequireSession(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionFromContext(c); ok || s.attachSession(c) {
			c.Next()
			return
		}
		if _, err := c.Cookie(s.cookieName); err == nil {
			s.ClearSessionCookies(c)
		}
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
	}
}

func (s *Service) attachSession(c *gin.Context) bool {
	token, err := c.Cookie(s.cookieName)
	if err != nil || token == "" {
		return false
	}
	session, err := s.Resolve(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, ErrUnauthorized) {
			s.logger.ErrorContext(c.Request.Context(), "resolve session failed", "error", err)
		}
		return false
	}
	c.Set(sessionContextKey, session)
	c.Set(authTokenContextKey, token)
	return true
}

// SessionFromContext retrieves the session attached by LoadSession or RequireSession.
func SessionFromContext(c *gin.Context) (*Session, bool) {
	val, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	session, ok := val.(*Session)
	return session, ok && session != nil
}

// AuthTokenFromContext retrieves the session token captured by the middleware.
func AuthTokenFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(authTokenContextKey)
	if !ok {
		return "", false
	}
	token, ok := val.(string)
	return token, ok
}

// SessionToken returns the raw session cookie, valid or not.
func (s *Service) SessionToken(c *gin.Context) string {
	if token, ok := AuthTokenFromContext(c); ok {
		return token
	}
	token, _ := c.Cookie(s.cookieName)
	return token
}

// SetSessionCookies writes the session cookie and its CSRF companion. The CSRF
// cookie stays readable by scripts so the chat page can echo it in a header.
func (s *Service) SetSessionCookies(c *gin.Context, token, csrfToken string) {
	maxAge := int(s.sessionTTL.Seconds())
	setCookie(c, s.cookieName, token, maxAge, true)
	setCookie(c, s.csrfCookieName, csrfToken, maxAge, false)
}

// ClearSessionCookies expires both session cookies.
func (s *Service) ClearSessionCookies(c *gin.Context) {
	setCookie(c, s.cookieName, "", -1, true)
	setCookie(c, s.csrfCookieName, "", -1, false)
}

func setCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", gin.Mode() == gin.ReleaseMode, httpOnly)
}
