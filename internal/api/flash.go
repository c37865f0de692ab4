package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashSuccess = "success"
	flashError   = "error"

	flashCookieName = "edubot_flash"
	flashContextKey = "flashes"
	flashMaxAge     = 60
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// addFlash queues a message for a page rendered in this same request.
func addFlash(c *gin.Context, category, message string) {
	flashes := contextFlashes(c)
	c.Set(flashContextKey, append(flashes, Flash{Category: category, Message: message}))
}

// redirectWithFlash carries a message across the redirect in a short-lived cookie.
func redirectWithFlash(c *gin.Context, location, category, message string) {
	flashes := append(cookieFlashes(c), Flash{Category: category, Message: message})
	if raw, err := json.Marshal(flashes); err == nil {
		setFlashCookie(c, base64.RawURLEncoding.EncodeToString(raw), flashMaxAge)
	}
	c.Redirect(http.StatusFound, location)
}

// takeFlashes returns pending messages, oldest first, and consumes the flash cookie.
func takeFlashes(c *gin.Context) []Flash {
	pending := cookieFlashes(c)
	if _, err := c.Cookie(flashCookieName); err == nil {
		setFlashCookie(c, "", -1)
	}
	return append(pending, contextFlashes(c)...)
}

func contextFlashes(c *gin.Context) []Flash {
	val, ok := c.Get(flashContextKey)
	if !ok {
		return nil
	}
	flashes, _ := val.([]Flash)
	return flashes
}

func cookieFlashes(c *gin.Context) []Flash {
	value, err := c.Cookie(flashCookieName)
	if err != nil || value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}

func setFlashCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, value, maxAge, "/", "", gin.Mode() == gin.ReleaseMode, true)
}
