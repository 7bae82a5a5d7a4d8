package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	authmw "github.com/mind-engage/examportal/internal/auth/middleware"
	"github.com/mind-engage/examportal/internal/exam"
	"github.com/mind-engage/examportal/internal/rbac"
	"github.com/mind-engage/examportal/internal/storage"
	syncx "github.com/mind-engage/examportal/internal/sync"
	"github.com/mind-engage/examportal/internal/wordparser"
)

// readUpload reads the multipart "file" field. It writes the error response
// itself and reports false when the request is unusable.
func readUpload(w http.ResponseWriter, r *http.Request, max int64) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, max)
	if err := r.ParseMultipartForm(max); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return nil, "", false
		}
		http.Error(w, "multipart form required", http.StatusBadRequest)
		return nil, "", false
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file required", http.StatusBadRequest)
		return nil, "", false
	}
	defer f.Close()
	if !strings.EqualFold(path.Ext(hdr.Filename), ".docx") {
		http.Error(w, "only .docx files are supported", http.StatusUnsupportedMediaType)
		return nil, "", false
	}
	data, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, "read upload", http.StatusBadRequest)
		return nil, "", false
	}
	return data, hdr.Filename, true
}

// parseUpload runs the word parser over the uploaded document.
func parseUpload(w http.ResponseWriter, r *http.Request, d Deps) (wordparser.Result, bool) {
	data, name, ok := readUpload(w, r, d.Config.MaxUploadBytes())
	if !ok {
		return wordparser.Result{}, false
	}
	res, err := wordparser.Parse(data,
		wordparser.WithFilename(name),
		wordparser.WithTitle(r.FormValue("title")),
		wordparser.WithDefaultTimeLimit(d.Config.DefaultTimeLimitMin),
	)
	switch {
	case errors.Is(err, wordparser.ErrNotZip),
		errors.Is(err, wordparser.ErrMissingDocument),
		errors.Is(err, wordparser.ErrMalformedDocument):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return wordparser.Result{}, false
	case err != nil:
		log.Error().Err(err).Str("file", name).Msg("parse docx")
		http.Error(w, "parse failed", http.StatusInternalServerError)
		return wordparser.Result{}, false
	}
	for _, img := range res.Exam.Images {
		if !img.IsWebCompatible() {
			res.Warnings = append(res.Warnings, wordparser.Warning{
				Stage:   wordparser.StageMedia,
				Message: "image " + img.Filename + " (" + img.ContentType + ") may not display in browsers",
			})
		}
	}
	log.Info().Str("file", name).Int("questions", len(res.Exam.Questions)).
		Int("images", len(res.Exam.Images)).Int("warnings", len(res.Warnings)).Msg("docx parsed")
	return res, true
}

// ParseExamHandler previews a document without storing anything.
func ParseExamHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := parseUpload(w, r, d)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"exam":       res.Exam,
			"warnings":   res.Warnings,
			"validation": wordparser.Validate(res.Exam),
		})
	}
}

// ImportExamHandler parses a document, moves its pictures into blob storage
// and stores the exam under the caller's name.
func ImportExamHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := parseUpload(w, r, d)
		if !ok {
			return
		}
		validation := wordparser.Validate(res.Exam)
		if len(res.Exam.Questions) == 0 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":      "no questions found in document",
				"warnings":   res.Warnings,
				"validation": validation,
			})
			return
		}

		e := exam.Exam{
			ID:        uuid.NewString(),
			CreatedBy: authmw.SubjectFromContext(r.Context()),
			ExamData:  res.Exam,
		}
		for _, img := range e.Images {
			if _, err := d.Blobs.Put(storage.MediaKey(e.ID, img.Filename), bytes.NewReader(img.Data)); err != nil {
				log.Error().Err(err).Str("exam", e.ID).Str("media", img.Filename).Msg("store media")
				_ = d.Blobs.DeletePrefix(storage.ExamPrefix(e.ID))
				http.Error(w, "store error", http.StatusInternalServerError)
				return
			}
		}
		e.ExternalizeMedia(func(filename string) string {
			u, err := d.Blobs.SignedURL(storage.MediaKey(e.ID, filename))
			if err != nil {
				return ""
			}
			return u
		})
		if err := d.Store.PutExam(r.Context(), e); err != nil {
			_ = d.Blobs.DeletePrefix(storage.ExamPrefix(e.ID))
			storeError(w, err)
			return
		}
		d.emit(r.Context(), syncx.EventExamImported, e.ID, map[string]any{
			"title":          e.Title,
			"question_count": len(e.Questions),
			"warnings":       len(res.Warnings),
			"created_by":     e.CreatedBy,
		})
		writeJSON(w, http.StatusCreated, map[string]any{
			"exam_id":        e.ID,
			"question_count": len(e.Questions),
			"warnings":       res.Warnings,
			"validation":     validation,
		})
	}
}

// ownsExam loads the full exam and checks the caller created it. Admins own
// everything.
func ownsExam(w http.ResponseWriter, r *http.Request, d Deps) (exam.Exam, bool) {
	e, err := d.Store.GetExamAdmin(r.Context(), chi.URLParam(r, "examID"))
	if err != nil {
		storeError(w, err)
		return exam.Exam{}, false
	}
	if !rbac.CanAccess(r.Context(), authmw.SubjectFromContext(r.Context()), e.CreatedBy, "") {
		http.Error(w, "forbidden", http.StatusForbidden)
		return exam.Exam{}, false
	}
	return e, true
}

func GetExamAdminHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := ownsExam(w, r, d)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// SetTrueFalseKeyHandler serves PUT /exams/{examID}/true-false-key with
// {"keys": {"201": "ac"}}.
func SetTrueFalseKeyHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := ownsExam(w, r, d)
		if !ok {
			return
		}
		var req struct {
			Keys map[int]string `json:"keys"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(req.Keys) == 0 {
			http.Error(w, "keys required", http.StatusBadRequest)
			return
		}
		updated, err := d.Store.SetTrueFalseKey(r.Context(), e.ID, req.Keys)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"exam_id": updated.ID, "true_false_keys": updated.TrueFalseKeys})
	}
}

func DeleteExamHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := ownsExam(w, r, d)
		if !ok {
			return
		}
		if err := d.Store.DeleteExam(r.Context(), e.ID); err != nil {
			storeError(w, err)
			return
		}
		if err := d.Blobs.DeletePrefix(storage.ExamPrefix(e.ID)); err != nil {
			log.Warn().Err(err).Str("exam", e.ID).Msg("delete media")
		}
		d.emit(r.Context(), syncx.EventExamDeleted, e.ID, map[string]any{"title": e.Title})
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListExamSubmissionsHandler is the teacher's results table, best first.
func ListExamSubmissionsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := ownsExam(w, r, d)
		if !ok {
			return
		}
		q := r.URL.Query()
		subs, err := d.Store.ListSubmissions(r.Context(), exam.SubmissionListOpts{
			ExamID: e.ID,
			Status: q.Get("status"),
			Limit:  parseIntDefault(q.Get("limit"), 0),
			Offset: parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"exam_id": e.ID, "items": subs})
	}
}
