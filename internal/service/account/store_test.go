package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"edubot/internal/config"
	"edubot/internal/storage"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {DSN: ":memory:"},
		},
	}
	db, err := storage.Open("sqlite3", cfg)
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db, "sqlite3"))
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewStore(db, WithHashCost(bcrypt.MinCost)), db
}

func TestCreateUserThenAuthenticate(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateUser(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Positive(t, id)

	var stored string
	require.NoError(t, db.QueryRow(`SELECT password_hash FROM users WHERE id = ?`, id).Scan(&stored))
	assert.NotEqual(t, "secret1", stored, "password stored in plaintext")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), prehash("secret1")))

	user, err := store.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := store.FindUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestCredentialsRoundTrip(t *testing.T) {
	cases := []struct {
		name, username, password string
	}{
		{"shortest allowed", "abcd", "abcdef"},
		{"multibyte shortest", "ñaña", "ñañaña"},
		{"long password", "longpw", strings.Repeat("a", 80)},
		{"very long password", "verylong", strings.Repeat("pässwörd", 64)},
		{"long username", strings.Repeat("u", 120), "secret1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, _ := newTestStore(t)
			ctx := context.Background()

			_, err := store.CreateUser(ctx, tc.username, tc.password)
			require.NoError(t, err)

			user, err := store.Authenticate(ctx, tc.username, tc.password)
			require.NoError(t, err)
			assert.Equal(t, tc.username, user.Username)

			_, err = store.Authenticate(ctx, tc.username, tc.password+"x")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			_, err = store.Authenticate(ctx, tc.username, tc.password[:len(tc.password)-1])
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthenticateComparesWholePassword(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	password := strings.Repeat("b", 72)

	_, err := store.CreateUser(ctx, "trunc", password)
	require.NoError(t, err)

	_, err = store.Authenticate(ctx, "trunc", password+"WRONGSUFFIX")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = store.Authenticate(ctx, "trunc", password)
	assert.NoError(t, err)
}

func TestCreateUserValidation(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		username, password, field string
	}{
		{"abc", "secret1", "username"},
		{"", "secret1", "username"},
		{"alice", "12345", "password"},
		{"alice", "", "password"},
	}
	for _, tc := range cases {
		_, err := store.CreateUser(ctx, tc.username, tc.password)
		var verr *ValidationError
		if assert.ErrorAs(t, err, &verr, "username=%q password=%q", tc.username, tc.password) {
			assert.Equal(t, tc.field, verr.Field)
		}
	}

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Zero(t, count, "invalid registrations must not be persisted")

	// lengths count characters, not bytes
	_, err := store.CreateUser(ctx, "ñañ", "secret1")
	assert.Error(t, err)
	_, err = store.CreateUser(ctx, "ñaña", "secret1")
	assert.NoError(t, err)
}

func TestCreateUserDuplicateEveryTime(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "alice", "secret1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := store.CreateUser(ctx, "alice", "another1")
		assert.ErrorIs(t, err, ErrDuplicateUsername)
	}

	user, err := store.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err, "original password must still work")
	assert.Equal(t, "alice", user.Username)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	_, err := store.CreateUser(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, wrongPassword := store.Authenticate(ctx, "alice", "wrong-password")
	_, unknownUser := store.Authenticate(ctx, "mallory", "secret1")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestFindUserNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.FindUserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = store.FindUserByID(ctx, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = store.FindUserByID(ctx, 0)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, WithHashCost(bcrypt.MinCost)), mock
}

func TestCreateUserMapsMySQLDuplicateEntry(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'username'"})

	_, err := store.CreateUser(context.Background(), "alice", "secret1")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserWrapsDBError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	_, err := store.CreateUser(context.Background(), "alice", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateUsername)
	assert.Contains(t, err.Error(), "create user: db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserByUsernameScansRow(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
		AddRow(int64(7), "alice", "hash", created)
	mock.ExpectQuery(`SELECT id, username, password_hash, created_at FROM users WHERE username = \?`).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := store.FindUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, created, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticatePropagatesStorageErrors(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, username, password_hash, created_at FROM users WHERE username = \?`).
		WithArgs("alice").
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := store.Authenticate(context.Background(), "alice", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}
