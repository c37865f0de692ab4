package account

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"edubot/internal/models"
)

const (
	MinUsernameLength = 4
	MinPasswordLength = 6
)

// Store persists users. It exposes no update or delete operations.
type Store struct {
	db        *sql.DB
	hashCost  int
	dummyHash []byte
}

// Option customises a Store.
type Option func(*Store)

// WithHashCost sets the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Store) {
		s.hashCost = cost
	}
}

// NewStore builds a credential store on an already migrated database handle.
func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	// compared against when the username is unknown, so both failure paths pay for one bcrypt check
	s.dummyHash, _ = bcrypt.GenerateFromPassword(prehash("edubot-dummy-password"), s.hashCost)
	return s
}

// CreateUser validates the credentials, hashes the password, and inserts the user.
func (s *Store) CreateUser(ctx context.Context, username, password string) (int64, error) {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return 0, &ValidationError{Field: "username", Min: MinUsernameLength}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return 0, &ValidationError{Field: "password", Min: MinPasswordLength}
	}

	hash, err := bcrypt.GenerateFromPassword(prehash(password), s.hashCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, string(hash), time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateUsername
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id: %w", err)
	}
	return id, nil
}

// FindUserByUsername returns ErrUserNotFound when no such user exists.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username,
	)
	return scanUser(row)
}

// FindUserByID returns ErrUserNotFound when no such user exists.
func (s *Store) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, ErrUserNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id,
	)
	return scanUser(row)
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, prehash(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), prehash(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// prehash folds a password of any length into 44 bytes; bcrypt ignores
// everything past 72.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}
