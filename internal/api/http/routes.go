// Package http exposes the exam portal over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phuslu/log"

	"github.com/mind-engage/examportal/internal/auth"
	authmw "github.com/mind-engage/examportal/internal/auth/middleware"
	"github.com/mind-engage/examportal/internal/config"
	"github.com/mind-engage/examportal/internal/exam"
	"github.com/mind-engage/examportal/internal/rbac"
	"github.com/mind-engage/examportal/internal/storage"
	syncx "github.com/mind-engage/examportal/internal/sync"
)

// EventSink receives domain events. *syncx.EventRepo satisfies it.
type EventSink interface {
	Append(ctx context.Context, e syncx.Event) error
}

type Deps struct {
	Config config.Config
	Store  exam.Store
	Blobs  storage.BlobStore
	Auth   *authmw.AuthService
	Events EventSink // nil disables the event log
}

// Mount registers every API route on r.
func Mount(r chi.Router, d Deps) {
	r.Post("/auth/login", auth.TeacherLoginHandler(d.Auth, d.Config))
	r.Post("/auth/student", auth.StudentJoinHandler(d.Auth))

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(rbac.Require("exam:create")).Post("/exams/parse", ParseExamHandler(d))
		pr.With(rbac.Require("exam:create")).Post("/exams/import", ImportExamHandler(d))
		pr.With(rbac.Require("exam:list")).Get("/exams", ListExamsHandler(d))
		pr.With(rbac.Require("exam:view")).Get("/exams/{examID}", GetExamHandler(d))
		pr.With(rbac.Require("exam:export")).Get("/exams/{examID}/admin", GetExamAdminHandler(d))
		pr.With(rbac.Require("exam:create")).Put("/exams/{examID}/true-false-key", SetTrueFalseKeyHandler(d))
		pr.With(rbac.Require("exam:delete_own")).Delete("/exams/{examID}", DeleteExamHandler(d))
		pr.With(rbac.Require("attempt:view-all")).Get("/exams/{examID}/submissions", ListExamSubmissionsHandler(d))

		pr.With(rbac.Require("attempt:create")).Post("/submissions", CreateSubmissionHandler(d))
		pr.With(rbac.Require("attempt:submit")).Post("/submissions/{id}/submit", SubmitAnswersHandler(d))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).Get("/submissions/{id}", GetSubmissionHandler(d))

		pr.With(rbac.Require("asset:view")).Route("/assets", func(ar chi.Router) {
			MountAssets(ar, d.Blobs)
		})
	})
}

func (d Deps) emit(ctx context.Context, typ, key string, payload any) {
	if d.Events == nil {
		return
	}
	ev, err := syncx.NewEvent(typ, key, payload)
	if err == nil {
		err = d.Events.Append(ctx, ev)
	}
	if err != nil {
		log.Warn().Err(err).Str("event", typ).Str("key", key).Msg("event append failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// storeError maps store errors onto status codes.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exam.ErrExamNotFound), errors.Is(err, exam.ErrSubmissionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, exam.ErrAlreadySubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, exam.ErrInvalidKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("store")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
