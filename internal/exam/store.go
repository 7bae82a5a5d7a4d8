package exam

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mind-engage/examportal/internal/grading"
)

var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadySubmitted   = errors.New("submission already submitted")
	ErrInvalidKey         = errors.New("invalid true/false key")
)

type ListOpts struct {
	Q         string // title substring, case-insensitive
	CreatedBy string
	Limit     int
	Offset    int
}

type SubmissionListOpts struct {
	ExamID    string
	StudentID string // Student.ID
	Status    string // optional: in_progress|submitted
	Limit     int
	Offset    int
}

type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)      // student-safe (no answer keys)
	GetExamAdmin(ctx context.Context, id string) (Exam, error) // full exam, for teachers
	ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error)
	DeleteExam(ctx context.Context, id string) error

	// SetTrueFalseKey merges keys (question number -> letters of the true
	// statements) into the exam and returns the updated admin view.
	SetTrueFalseKey(ctx context.Context, examID string, keys map[int]string) (Exam, error)

	// NewSubmission starts a submission, or returns the one the student
	// already has for this exam.
	NewSubmission(ctx context.Context, examID string, st Student) (Submission, error)
	SubmitAnswers(ctx context.Context, submissionID string, answers map[int]string) (Submission, error)
	GetSubmission(ctx context.Context, id string) (Submission, error)
	// ListSubmissions orders by percentage, best first.
	ListSubmissions(ctx context.Context, opts SubmissionListOpts) ([]Submission, error)
}

// normalizeTrueFalseKeys checks every key against the exam's part-2
// questions. Letters are lower-cased, de-duplicated and sorted; an empty key
// means every statement is false.
func normalizeTrueFalseKeys(e Exam, keys map[int]string) (map[int]string, error) {
	byNumber := make(map[int]Question, len(e.Questions))
	for _, q := range e.Questions {
		byNumber[q.Number] = q
	}
	out := make(map[int]string, len(keys))
	for n, raw := range keys {
		q, ok := byNumber[n]
		if !ok || q.Type != TrueFalse {
			return nil, fmt.Errorf("%w: question %d is not a true/false question", ErrInvalidKey, n)
		}
		allowed := map[rune]bool{}
		for _, o := range q.Options {
			for _, r := range strings.ToLower(o.Letter) {
				allowed[r] = true
			}
		}
		seen := map[rune]bool{}
		var letters []rune
		for _, r := range strings.ToLower(raw) {
			if r == ' ' || r == ',' {
				continue
			}
			if !allowed[r] {
				return nil, fmt.Errorf("%w: question %d has no statement %q", ErrInvalidKey, n, r)
			}
			if !seen[r] {
				seen[r] = true
				letters = append(letters, r)
			}
		}
		sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
		out[n] = string(letters)
	}
	return out, nil
}

// gradeSubmission scores answers and fills the result fields of s.
func gradeSubmission(ctx context.Context, g grading.Grader, e Exam, s *Submission, answers map[int]string, now time.Time) {
	sum := grading.ScoreSubmission(ctx, g, e.GradingQuestions(), answers)
	s.Answers = answers
	s.Score = sum.Score
	s.CorrectCount = sum.CorrectCount
	s.WrongCount = sum.WrongCount
	s.TotalQuestions = sum.Total
	s.Percentage = sum.Percentage
	s.NeedsManual = sum.NeedsManual
	s.SubmittedAt = now.Unix()
	if s.StartedAt > 0 {
		s.Duration = s.SubmittedAt - s.StartedAt
	}
	s.Status = StatusSubmitted
}

func sortSubmissions(subs []Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].Percentage != subs[j].Percentage {
			return subs[i].Percentage > subs[j].Percentage
		}
		if subs[i].SubmittedAt != subs[j].SubmittedAt {
			return subs[i].SubmittedAt > subs[j].SubmittedAt
		}
		return subs[i].ID < subs[j].ID
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
