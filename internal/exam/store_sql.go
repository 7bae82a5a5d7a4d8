package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/examportal/internal/grading"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	grader grading.Grader
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, driver string, g grading.Grader) *SQLStore {
	if g == nil {
		g = grading.NewDefaultGrader()
	}
	return &SQLStore{db: db, driver: driver, grader: g, now: time.Now}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	ej, err := json.Marshal(e.ExamData)
	if err != nil {
		return err
	}
	kj, err := json.Marshal(nonNilKeys(e.TrueFalseKeys))
	if err != nil {
		return err
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = s.now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams (id,title,time_limit,question_count,exam_json,tf_keys_json,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, time_limit=EXCLUDED.time_limit,
			question_count=EXCLUDED.question_count, exam_json=EXCLUDED.exam_json, tf_keys_json=EXCLUDED.tf_keys_json`,
		e.ID, e.Title, e.TimeLimit, len(e.Questions), string(ej), string(kj), e.CreatedBy, e.CreatedAt)
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	e, err := s.GetExamAdmin(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	// Strip answer keys when serving to students (parity with in-memory behavior)
	return e.StudentView(), nil
}

func (s *SQLStore) GetExamAdmin(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,exam_json,tf_keys_json,created_by,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var ejson, kjson string
	if err := row.Scan(&e.ID, &ejson, &kjson, &e.CreatedBy, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(ejson), &e.ExamData); err != nil {
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(kjson), &e.TrueFalseKeys); err != nil {
		e.TrueFalseKeys = map[int]string{}
	}
	return e, nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error) {
	query := `SELECT id,title,time_limit,question_count,created_by,created_at FROM exams`
	var args []any
	if opts.CreatedBy != "" {
		query += ` WHERE created_by=$1`
		args = append(args, opts.CreatedBy)
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	q := strings.ToLower(strings.TrimSpace(opts.Q))
	out := []ExamSummary{}
	for rows.Next() {
		var es ExamSummary
		if err := rows.Scan(&es.ID, &es.Title, &es.TimeLimit, &es.QuestionCount, &es.CreatedBy, &es.CreatedAt); err != nil {
			return nil, err
		}
		// Title search runs here: SQLite's lower() only folds ASCII.
		if q != "" && !strings.Contains(strings.ToLower(es.Title), q) {
			continue
		}
		out = append(out, es)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return page(out, opts.Limit, opts.Offset), nil
}

func (s *SQLStore) DeleteExam(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE exam_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM exams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExamNotFound
	}
	return tx.Commit()
}

func (s *SQLStore) SetTrueFalseKey(ctx context.Context, examID string, keys map[int]string) (Exam, error) {
	e, err := s.GetExamAdmin(ctx, examID)
	if err != nil {
		return Exam{}, err
	}
	norm, err := normalizeTrueFalseKeys(e, keys)
	if err != nil {
		return Exam{}, err
	}
	merged := nonNilKeys(e.TrueFalseKeys)
	for n, k := range norm {
		merged[n] = k
	}
	kj, err := json.Marshal(merged)
	if err != nil {
		return Exam{}, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE exams SET tf_keys_json=$1 WHERE id=$2`, string(kj), examID); err != nil {
		return Exam{}, err
	}
	e.TrueFalseKeys = merged
	return e, nil
}

func (s *SQLStore) NewSubmission(ctx context.Context, examID string, st Student) (Submission, error) {
	// ensure exam exists
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, examID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrExamNotFound
		}
		return Submission{}, err
	}

	var existing string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM submissions WHERE exam_id=$1 AND student_id=$2`, examID, st.ID).Scan(&existing)
	switch {
	case err == nil:
		return s.GetSubmission(ctx, existing)
	case !errors.Is(err, sql.ErrNoRows):
		return Submission{}, err
	}

	sub := Submission{
		ID:        uuid.NewString(),
		ExamID:    examID,
		Student:   st,
		Answers:   map[int]string{},
		StartedAt: s.now().Unix(),
		Status:    StatusInProgress,
	}
	stJSON, _ := json.Marshal(st)
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions (id,exam_id,student_id,student_json,status,answers_json,needs_manual_json,started_at)
		VALUES ($1,$2,$3,$4,$5,'{}','[]',$6)`,
		sub.ID, examID, st.ID, string(stJSON), sub.Status, sub.StartedAt)
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (s *SQLStore) SubmitAnswers(ctx context.Context, submissionID string, answers map[int]string) (Submission, error) {
	sub, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if sub.Status == StatusSubmitted {
		return Submission{}, ErrAlreadySubmitted
	}
	// load full exam WITH keys for grading
	e, err := s.GetExamAdmin(ctx, sub.ExamID)
	if err != nil {
		return Submission{}, err
	}
	if answers == nil {
		answers = map[int]string{}
	}
	gradeSubmission(ctx, s.grader, e, &sub, answers, s.now())

	aj, _ := json.Marshal(sub.Answers)
	nj, _ := json.Marshal(nonNilInts(sub.NeedsManual))
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET status=$1, score=$2, correct_count=$3, wrong_count=$4,
		total_questions=$5, percentage=$6, answers_json=$7, needs_manual_json=$8, submitted_at=$9, duration=$10
		WHERE id=$11 AND status=$12`,
		sub.Status, sub.Score, sub.CorrectCount, sub.WrongCount, sub.TotalQuestions, sub.Percentage,
		string(aj), string(nj), sub.SubmittedAt, sub.Duration, sub.ID, StatusInProgress)
	if err != nil {
		return Submission{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// lost a race with a concurrent submit
		return Submission{}, ErrAlreadySubmitted
	}
	return sub, nil
}

const submissionColumns = `id,exam_id,student_json,status,score,correct_count,wrong_count,total_questions,percentage,answers_json,needs_manual_json,started_at,submitted_at,duration`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(r rowScanner) (Submission, error) {
	var sub Submission
	var stJSON, aJSON, nJSON string
	if err := r.Scan(&sub.ID, &sub.ExamID, &stJSON, &sub.Status, &sub.Score, &sub.CorrectCount, &sub.WrongCount,
		&sub.TotalQuestions, &sub.Percentage, &aJSON, &nJSON, &sub.StartedAt, &sub.SubmittedAt, &sub.Duration); err != nil {
		return Submission{}, err
	}
	_ = json.Unmarshal([]byte(stJSON), &sub.Student)
	if err := json.Unmarshal([]byte(aJSON), &sub.Answers); err != nil || sub.Answers == nil {
		sub.Answers = map[int]string{}
	}
	_ = json.Unmarshal([]byte(nJSON), &sub.NeedsManual)
	return sub, nil
}

func (s *SQLStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id=$1`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	return sub, nil
}

func (s *SQLStore) ListSubmissions(ctx context.Context, opts SubmissionListOpts) ([]Submission, error) {
	var (
		where []string
		args  []any
	)
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		where = append(where, col+"=$"+strconv.Itoa(len(args)))
	}
	add("exam_id", opts.ExamID)
	add("student_id", opts.StudentID)
	add("status", opts.Status)

	query := `SELECT ` + submissionColumns + ` FROM submissions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY percentage DESC, submitted_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return page(out, opts.Limit, opts.Offset), nil
}

func nonNilKeys(m map[int]string) map[int]string {
	out := make(map[int]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
