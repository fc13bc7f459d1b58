package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookie = "btcbuzzbot_session"
	sessionTTL    = 24 * time.Hour
)

// sessionStore mints and verifies the signed session cookies.
type sessionStore struct {
	secret []byte
}

// newSessionStore wraps the signing secret. An empty secret gets a random
// per-process one; sessions then expire on restart.
func newSessionStore(secret string) *sessionStore {
	if secret == "" {
		secret = uuid.NewString()
	}
	return &sessionStore{secret: []byte(secret)}
}

func (st *sessionStore) mint(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(st.secret)
}

// verify returns the username a valid token was minted for, or "".
func (st *sessionStore) verify(token string) string {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return st.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ""
	}
	return claims.Subject
}

// currentUser returns the logged-in username, or "".
func (s *Server) currentUser(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return s.sessions.verify(c.Value)
}

// requireAuth redirects unauthenticated requests to the login form.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.currentUser(r) == "" {
			addFlash(w, r, "warning", "Please log in first.")
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if s.currentUser(r) != "" {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	s.render(w, r, "login.html", nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if s.adminHash == "" {
		addFlash(w, r, "error", "Admin login is not configured.")
		http.Redirect(w, r, "/admin/login", http.StatusFound)
		return
	}

	if username != s.adminUser ||
		bcrypt.CompareHashAndPassword([]byte(s.adminHash), []byte(password)) != nil {
		addFlash(w, r, "error", "Invalid username or password.")
		http.Redirect(w, r, "/admin/login", http.StatusFound)
		return
	}

	token, err := s.sessions.mint(username)
	if err != nil {
		log.Printf("Failed to mint session: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	addFlash(w, r, "success", "Logged in.")
	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	addFlash(w, r, "info", "Logged out.")
	http.Redirect(w, r, "/", http.StatusFound)
}
