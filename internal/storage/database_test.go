package storage

import (
	"testing"

	"edubot/internal/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {DSN: ":memory:"},
		},
	}
}

func TestOpenAndMigrateIsIdempotent(t *testing.T) {
	db, err := Open("sqlite3", memoryConfig())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := Migrate(db, "sqlite3"); err != nil {
			t.Fatalf("migrate #%d: %v", i+1, err)
		}
	}

	if _, err := db.Exec(`INSERT INTO users (username, password_hash) VALUES ('alice', 'x')`); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO users (username, password_hash) VALUES ('alice', 'y')`); err == nil {
		t.Fatalf("expected unique violation on duplicate username")
	}
	var createdAt string
	if err := db.QueryRow(`SELECT created_at FROM users WHERE username = 'alice'`).Scan(&createdAt); err != nil {
		t.Fatalf("created_at default missing: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Databases["postgres"] = config.DatabaseConfig{DSN: "x"}
	if _, err := Open("postgres", cfg); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := Open("mysql", memoryConfig()); err == nil {
		t.Fatalf("expected missing config error")
	}
}

func TestMigrateRejectsUnknownDriver(t *testing.T) {
	db, err := Open("sqlite3", memoryConfig())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := Migrate(db, "oracle"); err == nil {
		t.Fatalf("expected error")
	}
}
