package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/coleta/internal/auth"
	"github.com/gestaozabele/coleta/internal/repo"
)

type stubResolver struct {
	identities map[uuid.UUID]auth.Identity
	err        error
}

func (s *stubResolver) ResolveIdentity(ctx context.Context, id uuid.UUID) (auth.Identity, error) {
	if s.err != nil {
		return auth.Identity{}, s.err
	}
	identity, ok := s.identities[id]
	if !ok {
		return auth.Identity{}, repo.ErrNotFound
	}
	return identity, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func setup(t *testing.T) (*auth.JWTManager, *stubResolver, auth.Identity) {
	t.Helper()
	jwtMgr := auth.NewJWTManager(strings.Repeat("m", 32), time.Hour)
	identity := auth.Identity{ID: uuid.New(), Email: "op@coleta.org", Role: "operator", IsActive: true}
	resolver := &stubResolver{identities: map[uuid.UUID]auth.Identity{identity.ID: identity}}
	return jwtMgr, resolver, identity
}

func issue(t *testing.T, jwtMgr *auth.JWTManager, id uuid.UUID) string {
	t.Helper()
	token, _, err := jwtMgr.Issue(id, "op@coleta.org")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

func echoIdentity(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_, _ = w.Write([]byte(identity.Role))
}

func TestAuthenticateOutcomes(t *testing.T) {
	jwtMgr, resolver, identity := setup(t)
	inactive := auth.Identity{ID: uuid.New(), Role: "citizen", IsActive: false}
	resolver.identities[inactive.ID] = inactive

	handler := Authenticate(jwtMgr, resolver)(http.HandlerFunc(echoIdentity))

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, "No token provided"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "No token provided"},
		{"garbage token", "Bearer abc.def.ghi", http.StatusForbidden, "Invalid token"},
		{"unknown citizen", "Bearer " + issue(t, jwtMgr, uuid.New()), http.StatusUnauthorized, "User not found"},
		{"deactivated citizen", "Bearer " + issue(t, jwtMgr, inactive.ID), http.StatusUnauthorized, "User account is deactivated"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			body := decodeError(t, rec)
			if body.Error != "Access denied" || body.Message != tc.message {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+issue(t, jwtMgr, identity.ID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "operator" {
		t.Fatalf("expected identity in context, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuthenticateStoreFailure(t *testing.T) {
	jwtMgr, resolver, identity := setup(t)
	resolver.err = errors.New("conexão recusada")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, jwtMgr, identity.ID))
	rec := httptest.NewRecorder()
	Authenticate(jwtMgr, resolver)(http.HandlerFunc(echoIdentity)).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestOptionalAuthFallsBackToAnonymous(t *testing.T) {
	jwtMgr, resolver, identity := setup(t)
	handler := OptionalAuth(jwtMgr, resolver)(http.HandlerFunc(echoIdentity))

	for _, header := range []string{"", "Bearer invalido", "Bearer " + issue(t, jwtMgr, uuid.New())} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("header %q: expected anonymous pass-through, got %d", header, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, jwtMgr, identity.ID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Body.String() != "operator" {
		t.Fatalf("expected identity, got %q", rec.Body.String())
	}
}

func TestRequireRoles(t *testing.T) {
	handler := RequireRoles("admin", "operator")(http.HandlerFunc(echoIdentity))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized || decodeError(t, rec).Message != "Authentication required" {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	citizen := auth.Identity{ID: uuid.New(), Role: "citizen", IsActive: true}
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(WithIdentity(context.Background(), citizen))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != "Required role: admin or operator" {
		t.Fatalf("unexpected message %q", body.Message)
	}

	admin := auth.Identity{ID: uuid.New(), Role: "admin", IsActive: true}
	req = httptest.NewRequest(http.MethodGet, "/", nil).WithContext(WithIdentity(context.Background(), admin))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRecoverWritesEnvelope(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || decodeError(t, rec).Error != "Internal server error" {
		t.Fatalf("unexpected response %d", rec.Code)
	}
}

func TestIPRateLimit(t *testing.T) {
	handler := IPRateLimit(NewRateLimiter(1, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	handler.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)

	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429, got %d then %d", first.Code, second.Code)
	}
}

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	handler := CORS([]string{"https://painel.coleta.gov.br", "*.prefeitura.gov.br"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := map[string]bool{
		"https://painel.coleta.gov.br":   true,
		"https://app.prefeitura.gov.br": true,
		"https://prefeitura.gov.br":     false,
		"https://evil.example.com":      false,
	}
	for origin, allowed := range cases {
		req := httptest.NewRequest(http.MethodOptions, "/api/bins", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		got := rec.Header().Get("Access-Control-Allow-Origin") == origin
		if got != allowed {
			t.Fatalf("origin %s: expected allowed=%v", origin, allowed)
		}
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 preflight, got %d", rec.Code)
		}
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

func TestLoggingRecordsAuthenticatedCitizen(t *testing.T) {
	jwtMgr, resolver, identity := setup(t)
	buf := captureLog(t)

	handler := Logging(Authenticate(jwtMgr, resolver)(http.HandlerFunc(echoIdentity)))
	req := httptest.NewRequest(http.MethodGet, "/api/trucks", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, jwtMgr, identity.ID))
	req.Header.Set("X-Real-IP", "10.1.2.3")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["citizen_id"] != identity.ID.String() || line["role"] != "operator" {
		t.Fatalf("expected citizen in access log, got %v", line)
	}
	if line["level"] != "info" || line["status"] != float64(http.StatusOK) || line["ip"] != "10.1.2.3" {
		t.Fatalf("unexpected access log %v", line)
	}
}

func TestLoggingAnonymousFailure(t *testing.T) {
	jwtMgr, resolver, _ := setup(t)
	buf := captureLog(t)

	handler := Logging(Authenticate(jwtMgr, resolver)(http.HandlerFunc(echoIdentity)))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/trucks", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if _, ok := line["citizen_id"]; ok {
		t.Fatalf("anonymous request must not carry citizen_id: %v", line)
	}
	if line["level"] != "warn" || line["status"] != float64(http.StatusUnauthorized) {
		t.Fatalf("unexpected access log %v", line)
	}
}
