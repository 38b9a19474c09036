package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".ico":  "image/x-icon",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

// StaticHandler serves the frontend assets. Requests for /cp or /cp.json fall
// back to the bootstrap document so a fresh client can always seed itself.
type StaticHandler struct {
	root          string
	bootstrapPath string
}

func NewStaticHandler(root, bootstrapPath string) *StaticHandler {
	return &StaticHandler{root: root, bootstrapPath: bootstrapPath}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqPath := r.URL.Path
	if strings.Contains(reqPath, "..") {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if reqPath == "/" {
		reqPath = "/index.html"
	}

	data, err := os.ReadFile(filepath.Join(h.root, path.Clean(reqPath)))
	if err != nil {
		if reqPath == "/cp" || reqPath == "/cp.json" {
			if boot, berr := os.ReadFile(h.bootstrapPath); berr == nil {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				_, _ = w.Write(boot)
				return
			}
		}
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	ct := contentTypes[strings.ToLower(filepath.Ext(reqPath))]
	if ct == "" {
		ct = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", ct)
	_, _ = w.Write(data)
}
