// internal/api/http/assets.go
package http

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/examportal/internal/storage"
)

func MountAssets(r chi.Router, bs storage.BlobStore) {
	// GET /assets/*   -> returns the blob at whatever follows /assets/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")        // everything after /assets/
		key = strings.TrimPrefix(key, "/") // normalize
		rc, err := bs.Get(key)
		switch {
		case errors.Is(err, storage.ErrBadKey):
			http.Error(w, "bad key", http.StatusBadRequest)
			return
		case errors.Is(err, fs.ErrNotExist):
			http.NotFound(w, r)
			return
		case err != nil:
			http.Error(w, "read error", http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		ct := mime.TypeByExtension(strings.ToLower(path.Ext(key)))
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		w.Header().Set("Cache-Control", "private, max-age=86400")
		_, _ = io.Copy(w, rc)
	})
}
