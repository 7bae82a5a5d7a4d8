package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/examportal/internal/db"
)

func strp(s string) *string { return &s }

func sampleExam(id string) Exam {
	mc := []Option{{Letter: "A", Text: "1"}, {Letter: "B", Text: "2"}, {Letter: "C", Text: "3"}, {Letter: "D", Text: "4"}}
	tf := []Option{{Letter: "a", Text: "s1"}, {Letter: "b", Text: "s2"}, {Letter: "c", Text: "s3"}, {Letter: "d", Text: "s4"}}
	img := &MediaAsset{ID: "img_0", Filename: "image1.png", Data: []byte{1, 2, 3}, ContentType: "image/png"}
	qs := []Question{
		{Number: 101, Type: MultipleChoice, Text: "Một cộng một?", Options: mc, CorrectAnswer: strp("B"), Images: []*MediaAsset{img}},
		{Number: 201, Type: TrueFalse, Text: "Xét các mệnh đề", Options: tf},
		{Number: 301, Type: ShortAnswer, Text: "Tính x", CorrectAnswer: strp("1,5")},
	}
	return Exam{
		ID:        id,
		CreatedBy: "teacher",
		ExamData: ExamData{
			Title:     "Đề Thi Thử " + id,
			TimeLimit: 90,
			Questions: qs,
			Sections: []ExamSection{
				{Name: "PHẦN 1", SectionType: MultipleChoice, Questions: qs[:1]},
			},
			Answers: map[int]string{101: "B", 301: "1,5"},
			Images:  []MediaAsset{*img},
		},
	}
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	conn, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// forEachStore runs the same contract against both implementations.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewInMemoryStore(nil)) })
	t.Run("sqlite", func(t *testing.T) { fn(t, NewSQLStore(openSQLite(t), "sqlite", nil)) })
}

func TestStoreExamRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.PutExam(ctx, sampleExam("e1")))

		admin, err := s.GetExamAdmin(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, "teacher", admin.CreatedBy)
		assert.NotZero(t, admin.CreatedAt)
		assert.Equal(t, map[int]string{101: "B", 301: "1,5"}, admin.Answers)
		require.NotNil(t, admin.Questions[0].CorrectAnswer)
		assert.Equal(t, []byte{1, 2, 3}, admin.Images[0].Data)

		student, err := s.GetExam(ctx, "e1")
		require.NoError(t, err)
		assert.Empty(t, student.Answers)
		assert.Empty(t, student.TrueFalseKeys)
		for _, q := range student.Questions {
			assert.Nil(t, q.CorrectAnswer, "question %d", q.Number)
		}
		assert.Nil(t, student.Sections[0].Questions[0].CorrectAnswer)

		_, err = s.GetExam(ctx, "missing")
		assert.True(t, errors.Is(err, ErrExamNotFound))
	})
}

func TestStoreListExams(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		a := sampleExam("a")
		a.CreatedAt = 100
		b := sampleExam("b")
		b.CreatedAt = 200
		b.CreatedBy = "other"
		require.NoError(t, s.PutExam(ctx, a))
		require.NoError(t, s.PutExam(ctx, b))

		all, err := s.ListExams(ctx, ListOpts{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "b", all[0].ID, "newest first")
		assert.Equal(t, 3, all[0].QuestionCount)

		mine, err := s.ListExams(ctx, ListOpts{CreatedBy: "teacher"})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "a", mine[0].ID)

		found, err := s.ListExams(ctx, ListOpts{Q: "đề thi thử a"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "a", found[0].ID)

		paged, err := s.ListExams(ctx, ListOpts{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, paged, 1)
		assert.Equal(t, "a", paged[0].ID)
	})
}

func TestStoreTrueFalseKeys(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.PutExam(ctx, sampleExam("e1")))

		e, err := s.SetTrueFalseKey(ctx, "e1", map[int]string{201: "C, a,c"})
		require.NoError(t, err)
		assert.Equal(t, "ac", e.TrueFalseKeys[201])

		_, err = s.SetTrueFalseKey(ctx, "e1", map[int]string{101: "a"})
		assert.True(t, errors.Is(err, ErrInvalidKey))
		_, err = s.SetTrueFalseKey(ctx, "e1", map[int]string{201: "ae"})
		assert.True(t, errors.Is(err, ErrInvalidKey))
		_, err = s.SetTrueFalseKey(ctx, "nope", map[int]string{201: "a"})
		assert.True(t, errors.Is(err, ErrExamNotFound))

		admin, err := s.GetExamAdmin(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, map[int]string{201: "ac"}, admin.TrueFalseKeys)
	})
}

func TestStoreSubmissionFlow(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.PutExam(ctx, sampleExam("e1")))
		_, err := s.SetTrueFalseKey(ctx, "e1", map[int]string{201: "ac"})
		require.NoError(t, err)

		an := Student{ID: "s-an", Name: "Nguyễn Văn An", ClassName: "12A1"}
		sub, err := s.NewSubmission(ctx, "e1", an)
		require.NoError(t, err)
		assert.Equal(t, StatusInProgress, sub.Status)

		again, err := s.NewSubmission(ctx, "e1", an)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, again.ID, "one submission per student and exam")

		done, err := s.SubmitAnswers(ctx, sub.ID, map[int]string{101: "b", 201: "ca", 301: "1.5"})
		require.NoError(t, err)
		assert.Equal(t, StatusSubmitted, done.Status)
		assert.Equal(t, 3, done.CorrectCount)
		assert.Equal(t, 0, done.WrongCount)
		assert.Equal(t, 3, done.TotalQuestions)
		assert.Equal(t, 100, done.Percentage)

		_, err = s.SubmitAnswers(ctx, sub.ID, map[int]string{101: "A"})
		assert.True(t, errors.Is(err, ErrAlreadySubmitted))

		got, err := s.GetSubmission(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "Nguyễn Văn An", got.Student.Name)
		assert.Equal(t, "b", got.Answers[101])
		assert.Equal(t, 100, got.Percentage)

		binh, err := s.NewSubmission(ctx, "e1", Student{ID: "s-binh", Name: "Bình"})
		require.NoError(t, err)
		low, err := s.SubmitAnswers(ctx, binh.ID, map[int]string{101: "A"})
		require.NoError(t, err)
		assert.Equal(t, 0, low.CorrectCount)
		assert.Equal(t, 0, low.Percentage)

		list, err := s.ListSubmissions(ctx, SubmissionListOpts{ExamID: "e1"})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, sub.ID, list[0].ID, "best first")

		mine, err := s.ListSubmissions(ctx, SubmissionListOpts{StudentID: "s-binh"})
		require.NoError(t, err)
		require.Len(t, mine, 1)

		_, err = s.NewSubmission(ctx, "missing", an)
		assert.True(t, errors.Is(err, ErrExamNotFound))
		_, err = s.GetSubmission(ctx, "missing")
		assert.True(t, errors.Is(err, ErrSubmissionNotFound))
	})
}

func TestStoreDeleteExam(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.PutExam(ctx, sampleExam("e1")))
		sub, err := s.NewSubmission(ctx, "e1", Student{ID: "s1", Name: "An"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteExam(ctx, "e1"))
		_, err = s.GetExamAdmin(ctx, "e1")
		assert.True(t, errors.Is(err, ErrExamNotFound))
		_, err = s.GetSubmission(ctx, sub.ID)
		assert.True(t, errors.Is(err, ErrSubmissionNotFound))

		assert.True(t, errors.Is(s.DeleteExam(ctx, "e1"), ErrExamNotFound))
	})
}
