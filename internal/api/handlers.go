package api

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"edubot/internal/auth"
	"edubot/internal/service/assistant"
)

const loginPath = "/login"

// Accounts creates users for the registration form.
type Accounts interface {
	CreateUser(ctx context.Context, username, password string) (int64, error)
}

// Handler wires HTTP routes to the credential store, the authenticator and the chatbot.
type Handler struct {
	accounts     Accounts
	auth         *auth.Service
	classifier   *assistant.Classifier
	responder    *assistant.Responder
	logger       *slog.Logger
	metrics      *metrics
	now          func() time.Time
	staticDir    string
	modelTimeout time.Duration
}

type Option func(*Handler)

// WithClock overrides the clock used for chat timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithStaticDir serves static assets from dir instead of the embedded copy.
func WithStaticDir(dir string) Option {
	return func(h *Handler) {
		h.staticDir = dir
	}
}

// WithModelTimeout bounds each chat request's model calls.
func WithModelTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.modelTimeout = d
		}
	}
}

// NewHandler constructs a Handler instance.
func NewHandler(accounts Accounts, authService *auth.Service, classifier *assistant.Classifier, responder *assistant.Responder, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		accounts:     accounts,
		auth:         authService,
		classifier:   classifier,
		responder:    responder,
		logger:       logger,
		metrics:      newMetrics(),
		now:          time.Now,
		modelTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes attaches all HTTP routes, templates and static assets to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) error {
	tmpl, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.Use(h.requestLogger())

	if h.staticDir != "" {
		router.Static("/static", h.staticDir)
	} else {
		static, err := fs.Sub(assets, "static")
		if err != nil {
			return fmt.Errorf("static assets: %w", err)
		}
		router.StaticFS("/static", http.FS(static))
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{})))

	pages := router.Group("/")
	pages.Use(h.auth.LoadSession())
	pages.GET("/", h.index)
	pages.GET("/login", h.loginPage)
	pages.POST("/login", h.loginUser)
	pages.GET("/register", h.registerPage)
	pages.POST("/register", h.registerUser)

	protected := pages.Group("/")
	protected.Use(h.auth.RequireSession(loginPath))
	protected.GET("/logout", h.logoutUser)
	protected.GET("/chat", h.chatPage)
	protected.POST("/get_response", h.auth.CSRFMiddleware(), h.getResponse)
	return nil
}
