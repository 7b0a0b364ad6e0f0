package httpadapter

import (
	"html/template"
	"net/http"
	"net/url"
	"os"
)

const fallbackFaviconEmoji = "📉"

// faviconHref is the icon link for pages: the configured file when it
// exists, otherwise an inline emoji.
func (rt *Router) faviconHref() template.URL {
	if rt.faviconAvailable() {
		return template.URL("/favicon.ico")
	}
	svg := "<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>" + fallbackFaviconEmoji + "</text></svg>"
	return template.URL("data:image/svg+xml," + url.PathEscape(svg))
}

func (rt *Router) faviconAvailable() bool {
	if rt.cfg.FaviconPath == "" {
		return false
	}
	info, err := os.Stat(rt.cfg.FaviconPath)
	return err == nil && !info.IsDir()
}

func (rt *Router) favicon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if !rt.faviconAvailable() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, rt.cfg.FaviconPath)
}
