package handlers

import (
	"net/http"
	"path"
	"strings"
)

// Static serves the single-page app bundle in dir. Paths without a matching
// file get index.html so the client-side router can resolve them. Paths under
// /api/ never fall back and receive a JSON 404.
func Static(dir string) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			MethodNotAllowed(w, r)
			return
		}

		name := path.Clean("/" + r.URL.Path)
		if name == "/api" || strings.HasPrefix(name, "/api/") {
			NotFound(w, r)
			return
		}

		f, err := root.Open(name)
		if err != nil {
			serveIndex(w, r, root)
			return
		}
		st, err := f.Stat()
		f.Close()
		if err != nil || st.IsDir() {
			serveIndex(w, r, root)
			return
		}

		files.ServeHTTP(w, r)
	})
}

func serveIndex(w http.ResponseWriter, r *http.Request, root http.FileSystem) {
	f, err := root.Open("/index.html")
	if err != nil {
		NotFound(w, r)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "index.html unreadable")
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", st.ModTime(), f)
}
