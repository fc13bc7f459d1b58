package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "btcbuzzbot_flash"

// Flash is a one-time notice rendered on the next page load.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// addFlash queues a flash message. Messages accumulate across redirects
// until a page render pops them.
func addFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	flashes := append(readFlashes(r), Flash{
		Category: normalizeCategory(category),
		Message:  message,
	})
	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes returns the queued flashes and clears the cookie so they show
// exactly once.
func popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) == 0 {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}

// normalizeCategory folds the legacy "danger" category into "error" and
// anything unknown into "info". The stylesheet only knows four classes.
func normalizeCategory(category string) string {
	switch category {
	case "success", "warning", "error", "info":
		return category
	case "danger":
		return "error"
	default:
		return "info"
	}
}
