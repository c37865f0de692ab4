package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"edubot/internal/auth"
	"edubot/internal/service/account"
)

const somethingWentWrong = "Something went wrong. Please try again."

func (h *Handler) index(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", nil)
}

func (h *Handler) loginPage(c *gin.Context) {
	if _, ok := auth.SessionFromContext(c); ok {
		c.Redirect(http.StatusFound, "/chat")
		return
	}
	h.render(c, http.StatusOK, "login.html", nil)
}

func (h *Handler) loginUser(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	session, token, err := h.auth.Login(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			addFlash(c, flashError, "Invalid username or password")
			h.render(c, http.StatusUnauthorized, "login.html", gin.H{"username": username})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login failed", "error", err)
		addFlash(c, flashError, somethingWentWrong)
		h.render(c, http.StatusInternalServerError, "login.html", gin.H{"username": username})
		return
	}
	csrfToken, err := h.auth.NewCSRFToken()
	if err != nil {
		_ = h.auth.Logout(c.Request.Context(), token)
		h.logger.ErrorContext(c.Request.Context(), "issue csrf token failed", "error", err)
		addFlash(c, flashError, somethingWentWrong)
		h.render(c, http.StatusInternalServerError, "login.html", gin.H{"username": username})
		return
	}
	if previous := h.auth.SessionToken(c); previous != "" {
		if err := h.auth.Logout(c.Request.Context(), previous); err != nil {
			h.logger.WarnContext(c.Request.Context(), "drop previous session failed", "error", err)
		}
	}
	h.auth.SetSessionCookies(c, token, csrfToken)
	h.logger.InfoContext(c.Request.Context(), "user logged in", "user_id", session.UserID)
	redirectWithFlash(c, "/chat", flashSuccess, "Login successful!")
}

func (h *Handler) registerPage(c *gin.Context) {
	if _, ok := auth.SessionFromContext(c); ok {
		c.Redirect(http.StatusFound, "/chat")
		return
	}
	h.render(c, http.StatusOK, "register.html", nil)
}

func (h *Handler) registerUser(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	userID, err := h.accounts.CreateUser(c.Request.Context(), username, password)
	if err != nil {
		var verr *account.ValidationError
		switch {
		case errors.As(err, &verr):
			addFlash(c, flashError, validationMessage(verr))
			h.render(c, http.StatusBadRequest, "register.html", gin.H{"username": username})
		case errors.Is(err, account.ErrDuplicateUsername):
			addFlash(c, flashError, "Username already exists")
			h.render(c, http.StatusConflict, "register.html", gin.H{"username": username})
		default:
			h.logger.ErrorContext(c.Request.Context(), "register user failed", "error", err)
			addFlash(c, flashError, somethingWentWrong)
			h.render(c, http.StatusInternalServerError, "register.html", gin.H{"username": username})
		}
		return
	}
	h.logger.InfoContext(c.Request.Context(), "user registered", "user_id", userID)
	redirectWithFlash(c, loginPath, flashSuccess, "Registration successful! Please login.")
}

func (h *Handler) logoutUser(c *gin.Context) {
	if token := h.auth.SessionToken(c); token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			h.logger.ErrorContext(c.Request.Context(), "logout failed", "error", err)
		}
	}
	h.auth.ClearSessionCookies(c)
	redirectWithFlash(c, "/", flashSuccess, "You have been logged out")
}

func (h *Handler) chatPage(c *gin.Context) {
	session, _ := auth.SessionFromContext(c)
	h.render(c, http.StatusOK, "chat.html", gin.H{"username": session.Username})
}

// render executes a page template with the pending flashes and the current user.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["flashes"] = takeFlashes(c)
	if session, ok := auth.SessionFromContext(c); ok {
		data["current_user"] = session.Username
	}
	c.HTML(status, name, data)
}

func validationMessage(verr *account.ValidationError) string {
	msg := verr.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
