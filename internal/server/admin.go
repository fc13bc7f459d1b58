package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	posts, _ := s.db.GetRecentPosts(homePostLimit)
	items, _ := s.db.GetRecentNews(homePostLimit)

	s.render(w, r, "admin.html", map[string]any{
		"Price": newPriceView(stats.LatestPrice),
		"Stats": newStatsView(stats),
		"Posts": newPostViews(posts),
		"News":  newNewsViews(items),
	})
}

func (s *Server) handleAdminContent(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.db.GetContentItems("quote")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	jokes, err := s.db.GetContentItems("joke")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "admin_content.html", map[string]any{
		"Quotes": quotes,
		"Jokes":  jokes,
	})
}

func (s *Server) handleContentAdd(w http.ResponseWriter, r *http.Request) {
	contentType := r.FormValue("content_type")
	text := strings.TrimSpace(r.FormValue("text"))

	if contentType != "quote" && contentType != "joke" {
		addFlash(w, r, "error", "Content type must be quote or joke.")
		http.Redirect(w, r, "/admin/content", http.StatusFound)
		return
	}
	if text == "" {
		addFlash(w, r, "error", "Text must not be empty.")
		http.Redirect(w, r, "/admin/content", http.StatusFound)
		return
	}

	if _, err := s.db.InsertContentItem(contentType, text); err != nil {
		addFlash(w, r, "error", "Could not add the "+contentType+".")
	} else {
		addFlash(w, r, "success", "Added "+contentType+".")
	}
	http.Redirect(w, r, "/admin/content", http.StatusFound)
}

func (s *Server) handleContentDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	contentType := vars["content_type"]
	itemID, err := strconv.ParseInt(vars["item_id"], 10, 64)
	if err != nil {
		addFlash(w, r, "error", "Invalid item ID.")
		http.Redirect(w, r, "/admin/content", http.StatusFound)
		return
	}

	deleted, err := s.db.DeleteContentItem(contentType, itemID)
	switch {
	case err != nil:
		addFlash(w, r, "error", "Could not delete the "+contentType+".")
	case !deleted:
		addFlash(w, r, "warning", "No "+contentType+" with ID "+vars["item_id"]+" found.")
	default:
		addFlash(w, r, "success", "Deleted "+contentType+" #"+vars["item_id"]+".")
	}
	http.Redirect(w, r, "/admin/content", http.StatusFound)
}
