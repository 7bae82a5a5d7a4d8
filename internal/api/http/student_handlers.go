package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	authmw "github.com/mind-engage/examportal/internal/auth/middleware"
	"github.com/mind-engage/examportal/internal/exam"
	"github.com/mind-engage/examportal/internal/rbac"
	syncx "github.com/mind-engage/examportal/internal/sync"
)

var validate = validator.New()

// GetExamHandler serves the exam without any answer keys.
func GetExamHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := d.Store.GetExam(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// CreateSubmissionHandler starts (or resumes) the caller's submission.
func CreateSubmissionHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamID string `json:"exam_id" validate:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.ExamID = strings.TrimSpace(req.ExamID)
		if err := validate.Struct(req); err != nil {
			http.Error(w, "exam_id required", http.StatusBadRequest)
			return
		}
		c := authmw.ClaimsFromContext(r.Context())
		if c == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		st := exam.Student{ID: c.Sub, Name: c.Name, ClassName: c.Class, StudentID: c.StudentID}
		sub, err := d.Store.NewSubmission(r.Context(), req.ExamID, st)
		if err != nil {
			storeError(w, err)
			return
		}
		status := http.StatusCreated
		if sub.Status == exam.StatusSubmitted {
			status = http.StatusOK
		}
		writeJSON(w, status, sub)
	}
}

// loadOwnSubmission fetches the {id} submission and checks the caller may
// see it: its student, or anyone holding attempt:view-all.
func loadOwnSubmission(w http.ResponseWriter, r *http.Request, d Deps) (exam.Submission, bool) {
	sub, err := d.Store.GetSubmission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err)
		return exam.Submission{}, false
	}
	if !rbac.CanAccess(r.Context(), authmw.SubjectFromContext(r.Context()), sub.Student.ID, "attempt:view-all") {
		http.Error(w, "forbidden", http.StatusForbidden)
		return exam.Submission{}, false
	}
	return sub, true
}

// SubmitAnswersHandler grades {"answers": {"101": "B", "201": "ac"}}.
// A submission can be submitted once.
func SubmitAnswersHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, ok := loadOwnSubmission(w, r, d)
		if !ok {
			return
		}
		if sub.Student.ID != authmw.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var req struct {
			Answers map[int]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		done, err := d.Store.SubmitAnswers(r.Context(), sub.ID, req.Answers)
		if err != nil {
			storeError(w, err)
			return
		}
		d.emit(r.Context(), syncx.EventSubmissionSubmitted, done.ID, map[string]any{
			"exam_id":    done.ExamID,
			"student":    done.Student.ID,
			"percentage": done.Percentage,
		})
		writeJSON(w, http.StatusOK, done)
	}
}

func GetSubmissionHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, ok := loadOwnSubmission(w, r, d)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}
