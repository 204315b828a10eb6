package receiver

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// spaHandler serves the built frontend bundle. Paths that do not map to a
// file fall back to index.html so client-side routes survive a page reload.
type spaHandler struct {
	dir  string
	root http.Dir
	fs   http.Handler
}

func newSPAHandler(dir string) http.Handler {
	root := http.Dir(dir)
	return &spaHandler{dir: dir, root: root, fs: http.FileServer(root)}
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, err := h.root.Open(path.Clean(r.URL.Path))
	if err == nil {
		f.Close()
		h.fs.ServeHTTP(w, r)
		return
	}
	if !os.IsNotExist(err) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
}
