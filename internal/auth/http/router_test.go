package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	authhttp "github.com/AlibekovAA/jokes-gateway/internal/auth/http"
	"github.com/AlibekovAA/jokes-gateway/internal/auth/service"
	"github.com/AlibekovAA/jokes-gateway/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/jokes-gateway/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/jokes-gateway/internal/common/http"
	"github.com/AlibekovAA/jokes-gateway/internal/common/logger"
	userrepo "github.com/AlibekovAA/jokes-gateway/internal/user/repository"
)

const testJWTSecret = "test-secret-key-must-be-at-least-32-bytes-long"

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var bcryptHash = regexp.MustCompile(`^\$2[ayb]\$.{56}$`)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	log, _ := logger.NewWithWriter(&bytes.Buffer{}, "", "test", "critical")
	issuer := service.NewTokenIssuer(testJWTSecret, commoncrypto.NewUUIDGenerator(), time.Hour, clock.NewRealClock())
	svc := service.NewAuthService(service.AuthServiceDeps{
		Repo:        userrepo.NewMemoryRepository(),
		Hasher:      commoncrypto.NewBcryptHasher(bcrypt.MinCost),
		TokenIssuer: issuer,
		Log:         log,
	})
	return authhttp.NewHandler(svc, authhttp.Config{RequestTimeout: 5 * time.Second}, log)
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return env
}

func TestAuthHTTP_Register_Success(t *testing.T) {
	h := newHandler(t)

	rec := post(h, "/api/auth/register", `{"username":"foo","password":"bar"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var body struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ID == 0 {
		t.Error("expected id to be set")
	}
	if body.Username != "foo" {
		t.Errorf("expected username foo, got %s", body.Username)
	}
	if !bcryptHash.MatchString(body.Password) {
		t.Errorf("expected bcrypt hash, got %q", body.Password)
	}
}

func TestAuthHTTP_Register_Duplicate(t *testing.T) {
	h := newHandler(t)

	post(h, "/api/auth/register", `{"username":"foo","password":"bar"}`)
	rec := post(h, "/api/auth/register", `{"username":"foo","password":"other"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if env := decodeError(t, rec); !strings.Contains(env.Message, "taken") {
		t.Errorf("expected taken message, got %q", env.Message)
	}
}

func TestAuthHTTP_Register_MissingFields(t *testing.T) {
	h := newHandler(t)

	for _, body := range []string{`{}`, `{"username":"foo"}`, `{"password":"bar"}`, ``} {
		rec := post(h, "/api/auth/register", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected status 400, got %d", body, rec.Code)
			continue
		}
		env := decodeError(t, rec)
		if env.Code != "CREDENTIALS_REQUIRED" || !strings.Contains(env.Message, "required") {
			t.Errorf("body %q: unexpected envelope %+v", body, env)
		}
	}
}

func TestAuthHTTP_Register_InvalidJSON(t *testing.T) {
	h := newHandler(t)

	rec := post(h, "/api/auth/register", "not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if env := decodeError(t, rec); env.Code != "INVALID_JSON" {
		t.Errorf("expected code INVALID_JSON, got %s", env.Code)
	}
}

func TestAuthHTTP_WrongMethod(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if env := decodeError(t, rec); env.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("expected code METHOD_NOT_ALLOWED, got %s", env.Code)
	}
}

func TestAuthHTTP_Login(t *testing.T) {
	h := newHandler(t)
	post(h, "/api/auth/register", `{"username":"foo","password":"bar"}`)

	rec := post(h, "/api/auth/login", `{"username":"foo","password":"bar"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "welcome, foo" {
		t.Errorf("expected welcome message, got %q", body.Message)
	}
	if body.Token == "" {
		t.Error("expected token to be set")
	}
}

func TestAuthHTTP_Login_InvalidCredentialsIndistinguishable(t *testing.T) {
	h := newHandler(t)
	post(h, "/api/auth/register", `{"username":"foo","password":"bar"}`)

	wrongPassword := post(h, "/api/auth/login", `{"username":"foo","password":"baz"}`)
	unknownUser := post(h, "/api/auth/login", `{"username":"ghost","password":"bar"}`)

	if wrongPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both, got %d and %d", wrongPassword.Code, unknownUser.Code)
	}

	a := decodeError(t, wrongPassword)
	b := decodeError(t, unknownUser)
	if a != b {
		t.Errorf("expected identical envelopes, got %+v and %+v", a, b)
	}
	if !strings.Contains(a.Message, "invalid") {
		t.Errorf("expected invalid message, got %q", a.Message)
	}
}

func TestAuthHTTP_Register_ChunkedBodyTooLarge(t *testing.T) {
	h := commonhttp.MaxRequestSizeMiddleware(32)(newHandler(t))

	body := `{"username":"foo","password":"` + strings.Repeat("p", 64) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", io.MultiReader(strings.NewReader(body)))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rec.Code)
	}
	if env := decodeError(t, rec); env.Code != commonhttp.CodeBodyTooLarge {
		t.Errorf("expected code %s, got %s", commonhttp.CodeBodyTooLarge, env.Code)
	}
}

func TestAuthHTTP_Login_ControlCharactersRejected(t *testing.T) {
	h := newHandler(t)

	rec := post(h, "/api/auth/login", `{"username":"fo\u0000o","password":"bar"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if env := decodeError(t, rec); env.Code != "VALIDATION_USERNAME_CHARS" {
		t.Errorf("expected code VALIDATION_USERNAME_CHARS, got %s", env.Code)
	}
}
