package server

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// uiFS holds the embedded web client. Set via SetUI before New.
var uiFS fs.FS

// SetUI sets the embedded filesystem for serving the web client.
func SetUI(fsys fs.FS) {
	uiFS = fsys
}

// spaHandler serves the embedded client. Paths without a file extension
// that do not exist fall back to index.html for client-side routes
// (/home, /onboarding); a missing asset is a plain 404.
func spaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if uiFS == nil {
			http.Error(w, "web client not embedded", http.StatusNotFound)
			return
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		info, err := fs.Stat(uiFS, name)
		switch {
		case err == nil && !info.IsDir():
		case errors.Is(err, fs.ErrNotExist) && path.Ext(name) != "":
			http.NotFound(w, r)
			return
		default:
			name = "index.html"
		}

		if name == "index.html" {
			w.Header().Set("Cache-Control", "no-cache")
		} else if strings.HasPrefix(name, "assets/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		http.ServeFileFS(w, r, uiFS, name)
	}
}
