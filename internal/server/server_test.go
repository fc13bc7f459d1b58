package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"btcbuzzbot/internal/config"
	"btcbuzzbot/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func fptr(f float64) *float64 { return &f }

func newTestServer(t *testing.T, db *database.DB) *Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	t.Setenv("TEST_SERVER_ADMIN_HASH", string(hash))
	t.Setenv("TEST_SERVER_SESSION_SECRET", "test-session-secret")

	cfg := &config.Config{}
	cfg.Server.AdminUsername = "admin"
	cfg.Server.AdminHashEnv = "TEST_SERVER_ADMIN_HASH"
	cfg.Server.SessionSecretEnv = "TEST_SERVER_SESSION_SECRET"

	srv, err := New(cfg, db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

// login posts valid credentials and returns the session cookie.
func login(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	body := strings.NewReader("username=admin&password=secret")
	req := httptest.NewRequest("POST", "/admin/login", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 after login, got %d", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "btcbuzzbot_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("expected session cookie after login")
	return nil
}

func TestHomeRoute(t *testing.T) {
	db := openTestDB(t)
	db.InsertPrice(67432.1, fptr(2.5), "usd")
	db.InsertPost("111", "Stack sats and stay humble.", "quote")

	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "$67,432.10") {
		t.Error("expected formatted price in response")
	}
	if !strings.Contains(body, "trend-up") {
		t.Error("expected trend-up class for a positive change")
	}
	if !strings.Contains(body, "+2.50%") {
		t.Error("expected formatted change in response")
	}
	if !strings.Contains(body, "Stack sats and stay humble.") {
		t.Error("expected post content in response")
	}
}

func TestHomeRouteEmptyDB(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "No price data yet") {
		t.Error("expected price placeholder on empty db")
	}
	if !strings.Contains(body, "No posts yet") {
		t.Error("expected posts placeholder on empty db")
	}
}

func TestPostsRoute(t *testing.T) {
	db := openTestDB(t)
	db.InsertPost("111", "BTC going up.", "price")
	db.InsertPost("dry-run-abc", "Simulated post.", "quote")

	metrics := `{"like_count":7,"retweet_count":3,"reply_count":1}`
	analysis := `{"significance":"High","sentiment":"Positive","summary":"Record **ETF** inflows."}`
	id, err := db.InsertNewsItem("tw-1", "Bitcoin ETF inflows hit a record.",
		ptr("newsdesk"), ptr("CoinDesk"), ptr("https://example.com/etf"),
		ptr("2026-08-25T12:00:00Z"), &metrics)
	if err != nil {
		t.Fatalf("failed to insert news item: %v", err)
	}
	if err := db.SaveNewsAnalysis(id, analysis, &analysis); err != nil {
		t.Fatalf("failed to save analysis: %v", err)
	}
	db.InsertNewsItem("tw-2", "Unreviewed headline.", nil, ptr("Decrypt"), nil, nil, nil)

	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/posts", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()

	if !strings.Contains(body, "BTC going up.") {
		t.Error("expected post content in response")
	}
	if !strings.Contains(body, "simulated") {
		t.Error("expected simulated badge for dry-run post")
	}
	if !strings.Contains(body, "badge-high") {
		t.Error("expected high significance badge")
	}
	if !strings.Contains(body, "badge-positive") {
		t.Error("expected positive sentiment badge")
	}
	if !strings.Contains(body, "badge-pending") {
		t.Error("expected pending badge for unanalyzed item")
	}
	if !strings.Contains(body, "7 likes") {
		t.Error("expected like count in response")
	}
	if !strings.Contains(body, "<strong>ETF</strong>") {
		t.Error("expected summary rendered as markdown")
	}
	if !strings.Contains(body, "json-key") {
		t.Error("expected highlighted analysis JSON")
	}
	if !strings.Contains(body, "json-toggle") {
		t.Error("expected JSON expand toggle")
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/admin", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("expected redirect to /admin/login, got %q", loc)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)

	body := strings.NewReader("username=admin&password=wrong")
	req := httptest.NewRequest("POST", "/admin/login", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("expected redirect to /admin/login, got %q", loc)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "btcbuzzbot_session" && c.Value != "" {
			t.Error("expected no session cookie after failed login")
		}
	}

	// The flash shows once on the next page, then clears.
	req = httptest.NewRequest("GET", "/admin/login", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec2, req)
	if !strings.Contains(rec2.Body.String(), "Invalid username or password.") {
		t.Error("expected flash message after failed login")
	}

	req = httptest.NewRequest("GET", "/admin/login", nil)
	for _, c := range rec2.Result().Cookies() {
		if c.Value != "" {
			req.AddCookie(c)
		}
	}
	rec3 := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec3, req)
	if strings.Contains(rec3.Body.String(), "Invalid username or password.") {
		t.Error("expected flash to clear after being shown")
	}
}

func TestLoginNotConfigured(t *testing.T) {
	db := openTestDB(t)
	t.Setenv("TEST_SERVER_ADMIN_HASH", "")
	t.Setenv("TEST_SERVER_SESSION_SECRET", "test-session-secret")

	cfg := &config.Config{}
	cfg.Server.AdminUsername = "admin"
	cfg.Server.AdminHashEnv = "TEST_SERVER_ADMIN_HASH"
	cfg.Server.SessionSecretEnv = "TEST_SERVER_SESSION_SECRET"
	srv, err := New(cfg, db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	body := strings.NewReader("username=admin&password=secret")
	req := httptest.NewRequest("POST", "/admin/login", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "btcbuzzbot_session" && c.Value != "" {
			t.Error("expected no session when login is not configured")
		}
	}
}

func TestLoginAndLogout(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)

	session := login(t, srv)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for logged-in admin, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Admin dashboard") {
		t.Error("expected admin dashboard in response")
	}

	req = httptest.NewRequest("POST", "/admin/logout", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302 after logout, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "btcbuzzbot_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie cleared after logout")
	}
}

func TestSessionCookieTamperRejected(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "btcbuzzbot_session", Value: "not-a-token"})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302 for forged session, got %d", rec.Code)
	}
}

func TestContentAddAndDelete(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)
	session := login(t, srv)

	body := strings.NewReader("content_type=quote&text=Stack+sats.")
	req := httptest.NewRequest("POST", "/admin/content/add", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302 after add, got %d", rec.Code)
	}
	quotes, _ := db.GetContentItems("quote")
	if len(quotes) != 1 || quotes[0].Text != "Stack sats." {
		t.Fatalf("expected one quote 'Stack sats.', got %v", quotes)
	}

	req = httptest.NewRequest("GET", "/admin/content", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "Stack sats.") {
		t.Error("expected new quote listed on content page")
	}

	req = httptest.NewRequest("POST", fmt.Sprintf("/admin/content/quote/%d/delete", quotes[0].ID), nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302 after delete, got %d", rec.Code)
	}
	quotes, _ = db.GetContentItems("quote")
	if len(quotes) != 0 {
		t.Errorf("expected quote deleted, got %d left", len(quotes))
	}
}

func TestContentAddRejectsBadType(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)
	session := login(t, srv)

	body := strings.NewReader("content_type=witticism&text=Nope.")
	req := httptest.NewRequest("POST", "/admin/content/add", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
	items, _ := db.GetAllContentItems()
	if len(items) != 0 {
		t.Errorf("expected no items stored, got %d", len(items))
	}

	req = httptest.NewRequest("GET", "/admin/content", nil)
	req.AddCookie(session)
	for _, c := range rec.Result().Cookies() {
		if c.Value != "" {
			req.AddCookie(c)
		}
	}
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "Content type must be quote or joke.") {
		t.Error("expected validation flash on content page")
	}
}

func TestContentDeleteMissing(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)
	session := login(t, srv)

	req := httptest.NewRequest("POST", "/admin/content/joke/99/delete", nil)
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/admin/content", nil)
	req.AddCookie(session)
	for _, c := range rec.Result().Cookies() {
		if c.Value != "" {
			req.AddCookie(c)
		}
	}
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "No joke with ID 99 found.") {
		t.Error("expected missing-item flash on content page")
	}
}

func TestAdminPostRoutesRequireLogin(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)

	body := strings.NewReader("content_type=quote&text=Sneaky.")
	req := httptest.NewRequest("POST", "/admin/content/add", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("expected redirect to /admin/login, got %q", loc)
	}
	items, _ := db.GetAllContentItems()
	if len(items) != 0 {
		t.Errorf("expected no items stored without login, got %d", len(items))
	}
}

func TestStaticRoute(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".price-panel") {
		t.Error("expected CSS content")
	}
}
