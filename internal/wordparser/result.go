package wordparser

import (
	"errors"
	"fmt"

	"github.com/mind-engage/examportal/internal/exam"
)

// Fatal failures. Parse returns no ExamData when one of these is hit.
var (
	ErrNotZip            = errors.New("file is not a docx (zip) archive")
	ErrMissingDocument   = errors.New("word/document.xml not found in archive")
	ErrMalformedDocument = errors.New("word/document.xml is not well-formed")
)

type Stage string

const (
	StageMedia     Stage = "media"
	StageSections  Stage = "sections"
	StageQuestions Stage = "questions"
)

// Warning records a degraded, non-fatal condition. The parse still produces
// a usable (possibly smaller) ExamData.
type Warning struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

type Result struct {
	Exam     exam.ExamData `json:"exam"`
	Warnings []Warning     `json:"warnings"`
}

type warnings []Warning

func (w *warnings) add(stage Stage, format string, args ...any) {
	*w = append(*w, Warning{Stage: stage, Message: fmt.Sprintf(format, args...)})
}
