package http

import (
	"net/http"
	"strconv"

	authmw "github.com/mind-engage/examportal/internal/auth/middleware"
	"github.com/mind-engage/examportal/internal/exam"
	"github.com/mind-engage/examportal/internal/rbac"
)

// ListExamsHandler returns exam summaries. Teachers see their own exams,
// admins see all.
//
// Query: q (title search), limit, offset.
func ListExamsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := exam.ListOpts{
			Q:      q.Get("q"),
			Limit:  parseIntDefault(q.Get("limit"), 50),
			Offset: parseIntDefault(q.Get("offset"), 0),
		}
		if !rbac.IsAdmin(r.Context()) {
			opts.CreatedBy = authmw.SubjectFromContext(r.Context())
		}
		items, err := d.Store.ListExams(r.Context(), opts)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "limit": opts.Limit, "offset": opts.Offset})
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return def
}
