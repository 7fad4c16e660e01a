package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegister_CreatesSession(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	session := registerUser(t, router, "A", "a@x.com", "secret1")

	if session.User.Name != "A" || session.User.Email != "a@x.com" {
		t.Errorf("user view = %+v, want {A a@x.com}", session.User)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Error("register should return a full token pair")
	}
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	tests := []struct {
		name string
		req  registerRequest
	}{
		{"missing name", registerRequest{Email: "a@x.com", Password: "secret1"}},
		{"missing email", registerRequest{Name: "A", Password: "secret1"}},
		{"email without @", registerRequest{Name: "A", Email: "not-an-email", Password: "secret1"}},
		{"short password", registerRequest{Name: "A", Email: "a@x.com", Password: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", tt.req, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := doRaw(t, router, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	registerUser(t, router, "A", "a@x.com", "secret1")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", registerRequest{
		Name:     "Other",
		Email:    "a@x.com",
		Password: "secret2",
	}, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}

	var apiErr Error
	decodeBody(t, rec, &apiErr)
	if apiErr.Code != ErrCodeConflict {
		t.Errorf("error code = %q, want %q", apiErr.Code, ErrCodeConflict)
	}
}

func TestLogin_Success(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	registerUser(t, router, "A", "a@x.com", "secret1")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", loginRequest{
		Email:    "a@x.com",
		Password: "secret1",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var session struct {
		User struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decodeBody(t, rec, &session)

	if session.User.Email != "a@x.com" {
		t.Errorf("user.email = %q, want a@x.com", session.User.Email)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Error("login should return a full token pair")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	registerUser(t, router, "A", "a@x.com", "secret1")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", loginRequest{
		Email:    "a@x.com",
		Password: "wrong1",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLogin_UnknownEmailSameResponse(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	registerUser(t, router, "A", "a@x.com", "secret1")

	wrongPass := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", loginRequest{
		Email:    "a@x.com",
		Password: "wrong1",
	}, "")
	unknown := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", loginRequest{
		Email:    "missing@x.com",
		Password: "secret1",
	}, "")

	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want both 401", wrongPass.Code, unknown.Code)
	}
	// Same body: no leak about which field was wrong.
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Errorf("bodies differ: %q vs %q", wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestRefresh_IssuesNewAccessToken(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	session := registerUser(t, router, "A", "a@x.com", "secret1")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", refreshRequest{
		RefreshToken: session.RefreshToken,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp refreshResponse
	decodeBody(t, rec, &resp)
	if resp.AccessToken == "" {
		t.Error("refresh should return a new access token")
	}

	// The new access token must authenticate protected routes.
	me := doJSON(t, router, http.MethodGet, "/api/v1/users/me", nil, resp.AccessToken)
	if me.Code != http.StatusOK {
		t.Errorf("GET /users/me with refreshed token = %d, want 200", me.Code)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	session := registerUser(t, router, "A", "a@x.com", "secret1")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", refreshRequest{
		RefreshToken: session.AccessToken,
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh with access token = %d, want 401", rec.Code)
	}
}

func TestRefresh_MissingToken(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", refreshRequest{}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	session := registerUser(t, router, "A", "a@x.com", "secret1")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", refreshRequest{
		RefreshToken: session.RefreshToken,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["message"] == "" {
		t.Error("logout response should carry a message")
	}

	// The revoked refresh token no longer works.
	refresh := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", refreshRequest{
		RefreshToken: session.RefreshToken,
	}, "")
	if refresh.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout = %d, want 401", refresh.Code)
	}
}

func TestLogout_GarbageTokenStillSucceeds(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", refreshRequest{
		RefreshToken: "not.a.jwt",
	}, "")
	if rec.Code != http.StatusOK {
		t.Errorf("logout with garbage token = %d, want 200", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	router := s.buildRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/v1/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status field = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version field = %v, want test", resp["version"])
	}
}
