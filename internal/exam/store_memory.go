package exam

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/examportal/internal/grading"
)

type memoryStore struct {
	mu          sync.RWMutex
	exams       map[string]Exam
	submissions map[string]Submission
	grader      grading.Grader
	now         func() time.Time
}

func NewInMemoryStore(g grading.Grader) Store {
	if g == nil {
		g = grading.NewDefaultGrader()
	}
	return &memoryStore{
		exams:       map[string]Exam{},
		submissions: map[string]Submission{},
		grader:      g,
		now:         time.Now,
	}
}

// clone deep-copies through JSON so callers never share maps or image
// pointers with the store.
func clone[T any](v T) T {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt == 0 {
		e.CreatedAt = m.now().Unix()
	}
	m.exams[e.ID] = clone(e)
	return nil
}

func (m *memoryStore) GetExam(ctx context.Context, id string) (Exam, error) {
	e, err := m.GetExamAdmin(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	return e.StudentView(), nil
}

func (m *memoryStore) GetExamAdmin(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	return clone(e), nil
}

func (m *memoryStore) ListExams(_ context.Context, opts ListOpts) ([]ExamSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(opts.Q))
	out := []ExamSummary{}
	for _, e := range m.exams {
		if opts.CreatedBy != "" && e.CreatedBy != opts.CreatedBy {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Title), q) {
			continue
		}
		out = append(out, e.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) DeleteExam(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[id]; !ok {
		return ErrExamNotFound
	}
	delete(m.exams, id)
	for sid, s := range m.submissions {
		if s.ExamID == id {
			delete(m.submissions, sid)
		}
	}
	return nil
}

func (m *memoryStore) SetTrueFalseKey(_ context.Context, examID string, keys map[int]string) (Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[examID]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	norm, err := normalizeTrueFalseKeys(e, keys)
	if err != nil {
		return Exam{}, err
	}
	if e.TrueFalseKeys == nil {
		e.TrueFalseKeys = map[int]string{}
	}
	for n, k := range norm {
		e.TrueFalseKeys[n] = k
	}
	m.exams[examID] = e
	return clone(e), nil
}

func (m *memoryStore) NewSubmission(_ context.Context, examID string, st Student) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[examID]; !ok {
		return Submission{}, ErrExamNotFound
	}
	for _, s := range m.submissions {
		if s.ExamID == examID && s.Student.ID == st.ID {
			return clone(s), nil
		}
	}
	s := Submission{
		ID:        uuid.NewString(),
		ExamID:    examID,
		Student:   st,
		Answers:   map[int]string{},
		StartedAt: m.now().Unix(),
		Status:    StatusInProgress,
	}
	m.submissions[s.ID] = s
	return clone(s), nil
}

func (m *memoryStore) SubmitAnswers(ctx context.Context, submissionID string, answers map[int]string) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[submissionID]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	if s.Status == StatusSubmitted {
		return Submission{}, ErrAlreadySubmitted
	}
	e, ok := m.exams[s.ExamID]
	if !ok {
		return Submission{}, ErrExamNotFound
	}
	gradeSubmission(ctx, m.grader, e, &s, clone(answers), m.now())
	m.submissions[s.ID] = s
	return clone(s), nil
}

func (m *memoryStore) GetSubmission(_ context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.submissions[id]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return clone(s), nil
}

func (m *memoryStore) ListSubmissions(_ context.Context, opts SubmissionListOpts) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Submission{}
	for _, s := range m.submissions {
		if opts.ExamID != "" && s.ExamID != opts.ExamID {
			continue
		}
		if opts.StudentID != "" && s.Student.ID != opts.StudentID {
			continue
		}
		if opts.Status != "" && s.Status != opts.Status {
			continue
		}
		out = append(out, clone(s))
	}
	sortSubmissions(out)
	return page(out, opts.Limit, opts.Offset), nil
}
