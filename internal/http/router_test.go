package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/config"
	"github.com/geocoder89/kinerjahub/internal/db"
	apphttp "github.com/geocoder89/kinerjahub/internal/http"
	"github.com/geocoder89/kinerjahub/internal/observability"
	"github.com/geocoder89/kinerjahub/internal/repo/memory"
	"github.com/geocoder89/kinerjahub/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Code    string          `json:"code"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
	Type string `json:"type"`
}

type testServer struct {
	t      *testing.T
	router http.Handler
}

func testConfig() config.Config {
	return config.Config{
		Env:              config.EnvTest,
		Storage:          config.StorageMemory,
		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    7 * 24 * time.Hour,
		BcryptCost:       bcrypt.MinCost,
		AuthRateLimit:    1000,
		AuthRateWindow:   time.Minute,
		MaxBodyBytes:     1 << 20,
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := testConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	stores := memory.NewStore().Stores()
	if err := db.Seed(context.Background(), stores, hasher, log); err != nil {
		t.Fatalf("seed: %v", err)
	}

	reg := prometheus.NewRegistry()

	router := apphttp.NewRouter(log, cfg, apphttp.Deps{
		Stores:   stores,
		Tokens:   auth.NewManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		Hasher:   hasher,
		Prom:     observability.NewProm(reg),
		Gatherer: reg,
	})

	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("decode %s %s: %v body=%s", method, path, err, w.Body.String())
		}
	}
	return w, env
}

type loginData struct {
	User struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *testServer) login(email string) loginData {
	s.t.Helper()

	w, env := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": db.SeedPassword,
	})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}

	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		s.t.Fatalf("decode login data: %v", err)
	}
	return data
}

func TestLogin_SuperAdmin(t *testing.T) {
	s := newTestServer(t)

	data := s.login(db.SeedSuperAdminEmail)

	if data.User.Role != "SUPER_USER" {
		t.Fatalf("expected SUPER_USER, got %q", data.User.Role)
	}
	if data.AccessToken == "" || data.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	w, env := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    db.SeedSuperAdminEmail,
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized || env.Code != "invalid_credentials" {
		t.Fatalf("expected 401 invalid_credentials, got %d %q", w.Code, env.Code)
	}
}

func TestEntryUser_CannotPostForOtherUnit(t *testing.T) {
	s := newTestServer(t)
	entry := s.login(db.SeedEntryUserEmail)

	body := map[string]any{
		"tanggal":     "2024-05-01",
		"target":      100,
		"realisasi":   90,
		"unitKerjaId": 3,
		"kategori":    []map[string]any{{"kategoriKinerjaId": 1, "nilai": 4.5}},
	}

	w, env := s.do(http.MethodPost, "/api/reports", entry.AccessToken, body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %s", w.Code, w.Body.String())
	}
	if env.Code != "cross_unit_access" {
		t.Fatalf("expected cross_unit_access, got %q", env.Code)
	}

	body["unitKerjaId"] = 1
	w, env = s.do(http.MethodPost, "/api/reports", entry.AccessToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("own unit: expected 201, got %d %s", w.Code, w.Body.String())
	}

	var created struct {
		ID       int64 `json:"id"`
		UnitID   int64 `json:"unitKerjaId"`
		Kategori []struct {
			ID   int64  `json:"kategoriKinerjaId"`
			Name string `json:"nama"`
		} `json:"kategori"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if created.UnitID != 1 || len(created.Kategori) != 1 || created.Kategori[0].Name == "" {
		t.Fatalf("unexpected report: %s", env.Data)
	}

	// entry users cannot delete, super users can
	path := "/api/reports/" + strconv.FormatInt(created.ID, 10)
	if w, _ := s.do(http.MethodDelete, path, entry.AccessToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("entry delete: expected 403, got %d", w.Code)
	}
	admin := s.login(db.SeedSuperAdminEmail)
	if w, _ := s.do(http.MethodDelete, path, admin.AccessToken, nil); w.Code != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d", w.Code)
	}
	if w, _ := s.do(http.MethodGet, path, admin.AccessToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("deleted report: expected 404, got %d", w.Code)
	}
}

func TestEntryUser_CannotReadOtherUnitReport(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(db.SeedSuperAdminEmail)
	entry := s.login(db.SeedEntryUserEmail)

	w, env := s.do(http.MethodPost, "/api/reports", admin.AccessToken, map[string]any{
		"tanggal":     "2024-05-01",
		"target":      100,
		"realisasi":   90,
		"keterangan":  "audit",
		"unitKerjaId": 3,
		"kategori":    []map[string]any{{"kategoriKinerjaId": 1}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	path := "/api/reports/" + strconv.FormatInt(created.ID, 10)

	w, env = s.do(http.MethodGet, path, entry.AccessToken, nil)
	if w.Code != http.StatusForbidden || env.Code != "report_forbidden" {
		t.Fatalf("expected 403 report_forbidden, got %d %q", w.Code, env.Code)
	}

	if w, _ := s.do(http.MethodGet, path, admin.AccessToken, nil); w.Code != http.StatusOK {
		t.Fatalf("admin get: expected 200, got %d", w.Code)
	}
	if w, _ := s.do(http.MethodGet, "/api/reports/999", entry.AccessToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing report: expected 404, got %d", w.Code)
	}

	// an explicit null clears keterangan
	w, env = s.do(http.MethodPatch, path, admin.AccessToken, map[string]any{"keterangan": nil})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d %s", w.Code, w.Body.String())
	}
	var patched map[string]any
	if err := json.Unmarshal(env.Data, &patched); err != nil {
		t.Fatalf("decode patched: %v", err)
	}
	if v, ok := patched["keterangan"]; !ok || v != nil {
		t.Fatalf("expected keterangan null, got %v", v)
	}
}

func TestReports_EmptyCategoriesRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(db.SeedSuperAdminEmail)

	w, env := s.do(http.MethodPost, "/api/reports", admin.AccessToken, map[string]any{
		"tanggal":     "2024-05-01",
		"target":      10,
		"realisasi":   5,
		"unitKerjaId": 1,
		"kategori":    []any{},
	})
	if w.Code != http.StatusBadRequest || env.Code != "no_categories" {
		t.Fatalf("expected 400 no_categories, got %d %q", w.Code, env.Code)
	}

	w, _ = s.do(http.MethodGet, "/api/reports", admin.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
}

func TestSuperAdmin_DeleteUsers(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(db.SeedSuperAdminEmail)
	viewer := s.login(db.SeedUserEmail)

	self := "/api/users/" + strconv.FormatInt(admin.User.ID, 10)
	w, env := s.do(http.MethodDelete, self, admin.AccessToken, nil)
	if w.Code != http.StatusForbidden || env.Code != "self_delete" {
		t.Fatalf("self delete: expected 403 self_delete, got %d %q", w.Code, env.Code)
	}

	other := "/api/users/" + strconv.FormatInt(viewer.User.ID, 10)
	if w, _ := s.do(http.MethodDelete, other, admin.AccessToken, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete other: expected 204, got %d", w.Code)
	}
}

func TestRefresh_WithAccessTokenIsInvalid(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(db.SeedSuperAdminEmail)

	w, env := s.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": admin.AccessToken})
	if w.Code != http.StatusUnauthorized || env.Code != "invalid_token" {
		t.Fatalf("expected 401 invalid_token, got %d %q", w.Code, env.Code)
	}

	w, env = s.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": admin.RefreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d %s", w.Code, w.Body.String())
	}

	var pair struct {
		AccessToken string `json:"accessToken"`
	}
	_ = json.Unmarshal(env.Data, &pair)
	if w, _ := s.do(http.MethodGet, "/api/auth/me", pair.AccessToken, nil); w.Code != http.StatusOK {
		t.Fatalf("me with refreshed token: %d", w.Code)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/reports", "", nil)
	if w.Code != http.StatusUnauthorized || env.Code != "missing_token" {
		t.Fatalf("expected 401 missing_token, got %d %q", w.Code, env.Code)
	}

	w, env = s.do(http.MethodGet, "/api/reports", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized || env.Code != "invalid_token" {
		t.Fatalf("expected 401 invalid_token, got %d %q", w.Code, env.Code)
	}
}

func TestUnits_DeleteConflictAndInvalidID(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(db.SeedSuperAdminEmail)

	// unit 1 is referenced by the seeded entry user
	w, env := s.do(http.MethodDelete, "/api/units/1", admin.AccessToken, nil)
	if w.Code != http.StatusConflict || env.Code != "unit_in_use" {
		t.Fatalf("expected 409 unit_in_use, got %d %q", w.Code, env.Code)
	}

	// unit 2 has no users or reports
	if w, _ := s.do(http.MethodDelete, "/api/units/2", admin.AccessToken, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w, env = s.do(http.MethodGet, "/api/units/abc", admin.AccessToken, nil)
	if w.Code != http.StatusBadRequest || len(env.Errors) != 1 || env.Errors[0].Field != "id" {
		t.Fatalf("expected 400 on id, got %d %+v", w.Code, env.Errors)
	}
}

func TestCategories_ETag(t *testing.T) {
	s := newTestServer(t)
	viewer := s.login(db.SeedUserEmail)

	w, env := s.do(http.MethodGet, "/api/reports/kategori", viewer.AccessToken, nil)
	if w.Code != http.StatusOK || env.Count == nil || *env.Count != 5 {
		t.Fatalf("expected 5 categories, got %d %s", w.Code, w.Body.String())
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/reports/kategori", nil)
	req.Header.Set("Authorization", "Bearer "+viewer.AccessToken)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/health", "/healthz", "/readyz"} {
		if w, _ := s.do(http.MethodGet, path, "", nil); w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("kinerjahub_http_requests_total")) {
		t.Fatalf("metrics missing http counter: %d", w.Code)
	}
}
