package handler

import (
	"encoding/json"
	"net/http"
)

const (
	themeLight  = "promptpad-light"
	themeDark   = "promptpad-dark"
	themeCookie = "theme"
	themeMaxAge = 365 * 24 * 60 * 60
)

func validTheme(t string) bool {
	return t == themeLight || t == themeDark
}

// nextTheme flips the theme in the request cookie. With no cookie the page
// followed the system preference, which the server cannot see, so light is
// assumed and dark comes next.
func nextTheme(r *http.Request) string {
	if themeFromRequest(r) == themeDark {
		return themeLight
	}
	return themeDark
}

// ThemeHandler stores the color theme in a cookie.
type ThemeHandler struct{}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// Toggle handles POST /theme. The form may name the theme; otherwise the
// current one is flipped. The page swaps data-theme on the themeChanged event.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	theme := r.FormValue("theme")
	switch {
	case theme == "":
		theme = nextTheme(r)
	case !validTheme(theme):
		http.Error(w, "invalid theme", http.StatusBadRequest)
		return
	}

	// Not HttpOnly: the anti-flash script reads it.
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    theme,
		Path:     "/",
		MaxAge:   themeMaxAge,
		SameSite: http.SameSiteLaxMode,
	})

	trigger, _ := json.Marshal(map[string]any{
		"themeChanged": map[string]string{"theme": theme},
	})
	w.Header().Set("HX-Trigger", string(trigger))
	w.WriteHeader(http.StatusOK)
}
