package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/skillswap/skillswap-core/internal/auth"
	"github.com/skillswap/skillswap-core/internal/infrastructure/config"
	"github.com/skillswap/skillswap-core/internal/infrastructure/logging"
)

const (
	testAccessSecret  = "api-test-access-secret-0123456789ab"
	testRefreshSecret = "api-test-refresh-secret-0123456789a"
)

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// newTestServer builds a Server backed by a temp-file SQLite store, with the
// WebSocket hub initialised but no listener started.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "api_test.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			refresh_token_hash TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;
		CREATE UNIQUE INDEX idx_users_email ON users(email);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	store := auth.NewUserStore(db)
	issuer, err := auth.NewIssuer(testAccessSecret, testRefreshSecret, 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}

	s, err := New(Deps{
		Config: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.TimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  10,
			},
		},
		WS: config.WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:  testLogger(),
		Auth:    auth.NewService(store, issuer),
		Issuer:  issuer,
		Users:   store,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.hub = NewHub(s.wsCfg, s.logger)

	return s
}

// doJSON performs a JSON request against the router and returns the recorder.
func doJSON(t *testing.T, router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// doRaw serves a pre-built request against the router.
func doRaw(t *testing.T, router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a response recorder's body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// registerUser registers an account through the API and returns the session.
func registerUser(t *testing.T, router http.Handler, name, email, password string) auth.Session {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var session auth.Session
	decodeBody(t, rec, &session)
	return session
}

// seedAdmin creates an admin account directly in the store and returns a
// logged-in session for it.
func seedAdmin(t *testing.T, s *Server, router http.Handler, email, password string) auth.Session {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	user := &auth.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	}
	if err := s.users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login returned %d: %s", rec.Code, rec.Body.String())
	}

	var session auth.Session
	decodeBody(t, rec, &session)
	return session
}
