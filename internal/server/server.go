// Package server serves the public dashboard and the admin panel.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/yuin/goldmark"

	"btcbuzzbot/internal/config"
	"btcbuzzbot/internal/database"
	"btcbuzzbot/internal/format"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// List limits for the dashboard pages.
const (
	homePostLimit  = 5
	postsPageLimit = 25
	newsPageLimit  = 25
)

// Server is the HTTP server for the dashboard and admin panel.
type Server struct {
	db        *database.DB
	pages     map[string]*template.Template
	router    *mux.Router
	adminUser string
	adminHash string
	sessions  *sessionStore
}

// New creates a new Server.
func New(cfg *config.Config, db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"timeAgo":  format.TimeAgo,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"home.html", "posts.html", "login.html", "admin.html", "admin_content.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	adminHash := os.Getenv(cfg.Server.AdminHashEnv)
	if adminHash == "" {
		log.Printf("Admin login disabled: %s not set", cfg.Server.AdminHashEnv)
	}

	s := &Server{
		db:        db,
		pages:     pages,
		router:    mux.NewRouter(),
		adminUser: cfg.Server.AdminUsername,
		adminHash: adminHash,
		sessions:  newSessionStore(os.Getenv(cfg.Server.SessionSecretEnv)),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Public pages
	s.router.HandleFunc("/", s.handleHome).Methods("GET")
	s.router.HandleFunc("/posts", s.handlePosts).Methods("GET")

	// Session entry and exit stay outside the auth gate
	s.router.HandleFunc("/admin/login", s.handleLoginForm).Methods("GET")
	s.router.HandleFunc("/admin/login", s.handleLogin).Methods("POST")
	s.router.HandleFunc("/admin/logout", s.handleLogout).Methods("POST")

	admin := s.router.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireAuth)
	admin.HandleFunc("", s.handleAdmin).Methods("GET")
	admin.HandleFunc("/content", s.handleAdminContent).Methods("GET")
	admin.HandleFunc("/content/add", s.handleContentAdd).Methods("POST")
	admin.HandleFunc("/content/{content_type}/{item_id:[0-9]+}/delete", s.handleContentDelete).Methods("POST")
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	posts, _ := s.db.GetRecentPosts(homePostLimit)

	s.render(w, r, "home.html", map[string]any{
		"Price": newPriceView(stats.LatestPrice),
		"Stats": newStatsView(stats),
		"Posts": newPostViews(posts),
	})
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	posts, _ := s.db.GetRecentPosts(postsPageLimit)
	items, _ := s.db.GetRecentNews(newsPageLimit)

	s.render(w, r, "posts.html", map[string]any{
		"Posts": newPostViews(posts),
		"News":  newNewsViews(items),
	})
}

// render executes a page template. Flashes and the session state ride along
// with every page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	data["Flashes"] = popFlashes(w, r)
	data["LoggedIn"] = s.currentUser(r) != ""

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(cfg *config.Config, db *database.DB, port int) error {
	srv, err := New(cfg, db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
