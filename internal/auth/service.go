package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"edubot/internal/models"
	"edubot/internal/service/account"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Credentials is the part of the credential store the authenticator needs.
type Credentials interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Session binds a browser to a user until logout or expiry.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service logs users in and out and validates session cookies.
type Service struct {
	users          Credentials
	store          SessionStore
	secret         []byte
	sessionTTL     time.Duration
	cookieName     string
	csrfCookieName string
	csrfHeaderName string
	logger         *slog.Logger
	now            func() time.Time
}

// NewService constructs an auth service. secret signs the session cookie.
func NewService(users Credentials, store SessionStore, secret []byte, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:          users,
		store:          store,
		secret:         secret,
		sessionTTL:     ttl,
		cookieName:     "edubot_session",
		csrfCookieName: "csrf_token",
		csrfHeaderName: "X-CSRF-Token",
		logger:         logger,
		now:            time.Now,
	}
}

// Login checks credentials and opens a session. The returned token is the
// signed cookie value. Any credential mismatch is ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, string, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("authenticate: %w", err)
	}

	now := s.now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.Save(ctx, session, session.ExpiresAt.Sub(now)); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}
	token, err := s.signToken(session)
	if err != nil {
		_ = s.store.Delete(ctx, session.ID)
		return nil, "", err
	}
	return session, token, nil
}

// Logout ends the session named by token. Unknown or malformed tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if err := s.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Resolve returns the live session for token, reloading the user so sessions
// of vanished users are rejected. Every failure maps to ErrUnauthorized.
func (s *Service) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	session, err := s.store.Load(ctx, claims.ID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.ErrorContext(ctx, "load session failed", "error", err)
		}
		return nil, ErrUnauthorized
	}
	if strconv.FormatInt(session.UserID, 10) != claims.Subject {
		return nil, ErrUnauthorized
	}
	if !s.now().Before(session.ExpiresAt) {
		_ = s.store.Delete(ctx, session.ID)
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindUserByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, account.ErrUserNotFound) {
			s.logger.ErrorContext(ctx, "load session user failed", "error", err, "user_id", session.UserID)
		}
		return nil, ErrUnauthorized
	}
	session.Username = user.Username
	return session, nil
}

// NewCSRFToken returns a random token used for CSRF protection.
func (s *Service) NewCSRFToken() (string, error) {
	return generateToken()
}

// CSRFCookieName returns the cookie used for CSRF tokens.
func (s *Service) CSRFCookieName() string {
	return s.csrfCookieName
}

// CSRFHeaderName returns the CSRF header name.
func (s *Service) CSRFHeaderName() string {
	return s.csrfHeaderName
}

// SessionCookieName returns the cookie carrying the signed session token.
func (s *Service) SessionCookieName() string {
	return s.cookieName
}

func (s *Service) signToken(session *Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   strconv.FormatInt(session.UserID, 10),
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (s *Service) parseToken(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("session id missing")
	}
	return claims, nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
