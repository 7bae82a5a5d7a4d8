package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/mind-engage/examportal/internal/auth/middleware"
	"github.com/mind-engage/examportal/internal/config"
)

var validate = validator.New()

const studentCookie = "ep_student_id"

type tokenOut struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Subject     string `json:"subject"`
	Name        string `json:"name,omitempty"`
}

// TeacherLoginHandler serves POST /auth/login {"username","password"} against
// the single configured teacher account.
func TeacherLoginHandler(a *authmw.AuthService, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username" validate:"required"`
			Password string `json:"password" validate:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "username and password required", http.StatusBadRequest)
			return
		}
		if req.Username != cfg.TeacherUser ||
			bcrypt.CompareHashAndPassword([]byte(cfg.TeacherPassHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(authmw.Claims{Sub: req.Username, Role: authmw.RoleTeacher, Name: req.Username})
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenOut{AccessToken: tok, Role: authmw.RoleTeacher, Subject: req.Username, Name: req.Username})
	}
}

// StudentJoinHandler serves POST /auth/student: students identify themselves
// with a name, a class and optionally their school id; no password. The
// subject is derived from the school id when given, otherwise it is kept in
// a cookie so a reload does not start a second submission.
func StudentJoinHandler(a *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name      string `json:"name" validate:"required,min=2,max=80"`
			ClassName string `json:"class_name" validate:"omitempty,max=40"`
			StudentID string `json:"student_id" validate:"omitempty,alphanum,max=32"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.ClassName = strings.TrimSpace(req.ClassName)
		req.StudentID = strings.TrimSpace(req.StudentID)
		if err := validate.Struct(req); err != nil {
			http.Error(w, "invalid student: "+err.Error(), http.StatusBadRequest)
			return
		}

		var sub string
		switch {
		case req.StudentID != "":
			sub = "student|" + strings.ToLower(req.StudentID)
		default:
			if c, err := r.Cookie(studentCookie); err == nil && strings.HasPrefix(c.Value, "anon|") {
				sub = c.Value
			} else {
				sub = "anon|" + uuid.NewString()
			}
		}

		tok, err := a.IssueJWT(authmw.Claims{
			Sub:       sub,
			Role:      authmw.RoleStudent,
			Name:      req.Name,
			Class:     req.ClassName,
			StudentID: req.StudentID,
		})
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     studentCookie,
			Value:    sub,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(30 * 24 * time.Hour),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenOut{AccessToken: tok, Role: authmw.RoleStudent, Subject: sub, Name: req.Name})
	}
}
