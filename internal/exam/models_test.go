package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/examportal/internal/grading"
)

func TestExternalizeMedia(t *testing.T) {
	e := sampleExam("e1")
	e.ExternalizeMedia(func(name string) string { return "/assets/exams/e1/media/" + name })

	assert.Equal(t, "/assets/exams/e1/media/image1.png", e.Images[0].URL)
	assert.Nil(t, e.Images[0].Data)
	require.Len(t, e.Questions[0].Images, 1)
	assert.Equal(t, "/assets/exams/e1/media/image1.png", e.Questions[0].Images[0].URL)
	assert.Nil(t, e.Questions[0].Images[0].Data)
}

func TestExternalizeMediaFallsBackToDataURL(t *testing.T) {
	e := sampleExam("e1")
	e.ExternalizeMedia(func(string) string { return "" })

	assert.Equal(t, "data:image/png;base64,AQID", e.Images[0].URL)
	assert.Equal(t, []byte{1, 2, 3}, e.Images[0].Data)
}

func TestMediaAssetHelpers(t *testing.T) {
	assert.Empty(t, MediaAsset{ContentType: "image/png"}.DataURL())
	assert.True(t, MediaAsset{ContentType: "image/jpeg"}.IsWebCompatible())
	assert.False(t, MediaAsset{ContentType: "image/x-emf"}.IsWebCompatible())
}

func TestGradingQuestions(t *testing.T) {
	e := sampleExam("e1")
	e.TrueFalseKeys = map[int]string{201: "ac"}
	qs := e.GradingQuestions()
	require.Len(t, qs, 3)

	assert.Equal(t, grading.Q{Number: 101, Type: grading.TypeMultipleChoice, Points: 1, AnswerKey: []string{"B"}}, qs[0])
	assert.Equal(t, []string{"ac"}, qs[1].AnswerKey)
	assert.Equal(t, []string{"a", "b", "c", "d"}, qs[1].Statements)
	assert.Equal(t, []string{"1,5"}, qs[2].AnswerKey)

	e.TrueFalseKeys = nil
	assert.Empty(t, e.GradingQuestions()[1].AnswerKey, "no key until the teacher sets one")
}

func TestStudentViewStripsKeys(t *testing.T) {
	e := sampleExam("e1")
	e.TrueFalseKeys = map[int]string{201: "ac"}
	v := e.StudentView()
	assert.Empty(t, v.Answers)
	assert.Nil(t, v.TrueFalseKeys)
	assert.Nil(t, v.Questions[0].CorrectAnswer)
	require.NotNil(t, e.Questions[0].CorrectAnswer, "original untouched")
	assert.Equal(t, 2, PartOf(201))
}
