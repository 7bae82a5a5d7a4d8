package wordparser

import (
	"fmt"
	"strings"

	"github.com/mind-engage/examportal/internal/exam"
)

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate is advisory: it reports problems without touching data. Callers
// decide whether to accept a parse that has errors.
func Validate(data exam.ExamData) ValidationResult {
	errs := []string{}
	if len(data.Questions) == 0 {
		errs = append(errs, "no questions found in document")
	}
	for _, q := range data.Questions {
		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, fmt.Sprintf("question %d: missing text", q.Number))
		}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
