package exam

import (
	"encoding/base64"

	"github.com/mind-engage/examportal/internal/grading"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice" // PHẦN 1
	TrueFalse      QuestionType = "true_false"      // PHẦN 2
	ShortAnswer    QuestionType = "short_answer"    // PHẦN 3
)

// MediaAsset is one picture embedded in the source document. Questions
// reference assets; ExamData.Images owns them.
type MediaAsset struct {
	ID             string `json:"id"`       // img_0, img_1, ...
	Filename       string `json:"filename"` // image1.png
	Data           []byte `json:"base64"`   // encoded as base64 by encoding/json
	ContentType    string `json:"content_type"`
	RelationshipID string `json:"rel_id,omitempty"` // rId4, rId5, ...
	// URL is set once the bytes live in blob storage; Data is then dropped.
	URL string `json:"url,omitempty"`
}

// DataURL renders the asset as a data: URL for inline display.
func (m MediaAsset) DataURL() string {
	if len(m.Data) == 0 {
		return ""
	}
	return "data:" + m.ContentType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}

// IsWebCompatible reports whether browsers can render the asset as-is.
func (m MediaAsset) IsWebCompatible() bool {
	switch m.ContentType {
	case "image/png", "image/jpeg", "image/gif", "image/webp", "image/svg+xml":
		return true
	}
	return false
}

type Option struct {
	Letter string `json:"letter"` // A-D for multiple choice, a-d for true/false
	Text   string `json:"text"`
}

type SectionInfo struct {
	Letter string `json:"letter"`
	Name   string `json:"name"`
	Points string `json:"points"`
}

type Question struct {
	// Number encodes part*100 + the number printed in the document ("Câu 5" in
	// PHẦN 2 is 205). Part is recoverable as Number/100.
	Number        int           `json:"number"`
	Text          string        `json:"text"`
	Type          QuestionType  `json:"type"`
	Options       []Option      `json:"options"`
	CorrectAnswer *string       `json:"correct_answer"`
	Section       SectionInfo   `json:"section"`
	Part          string        `json:"part,omitempty"`
	Images        []*MediaAsset `json:"images,omitempty"`
}

// PartOf returns the exam part a question number belongs to.
func PartOf(number int) int { return number / 100 }

type ExamSection struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Points      string       `json:"points"`
	Questions   []Question   `json:"questions"`
	SectionType QuestionType `json:"section_type"`
}

// ExamData is the parser's only output. Answers holds keys for multiple
// choice and short answer questions; true/false statements are graded
// against keys supplied outside the document.
type ExamData struct {
	Title     string         `json:"title"`
	TimeLimit int            `json:"time_limit"` // minutes
	Sections  []ExamSection  `json:"sections"`
	Questions []Question     `json:"questions"`
	Answers   map[int]string `json:"answers"`
	Images    []MediaAsset   `json:"images"`
}

// Exam is a stored ExamData.
type Exam struct {
	ID        string `json:"id"`
	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
	ExamData

	// TrueFalseKeys maps a part-2 question number to the letters of its true
	// statements ("ac"). Teachers set these after import.
	TrueFalseKeys map[int]string `json:"true_false_keys,omitempty"`
}

type ExamSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	TimeLimit     int    `json:"time_limit"`
	QuestionCount int    `json:"question_count"`
	CreatedBy     string `json:"created_by,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}

type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"class_name,omitempty"`
	StudentID string `json:"student_id,omitempty"`
}

type Submission struct {
	ID             string         `json:"id"`
	ExamID         string         `json:"exam_id"`
	Student        Student        `json:"student"`
	Answers        map[int]string `json:"answers"`
	Score          float64        `json:"score"`
	CorrectCount   int            `json:"correct_count"`
	WrongCount     int            `json:"wrong_count"`
	TotalQuestions int            `json:"total_questions"`
	Percentage     int            `json:"percentage"`
	StartedAt      int64          `json:"started_at"`
	SubmittedAt    int64          `json:"submitted_at,omitempty"`
	Duration       int64          `json:"duration"` // seconds
	Status         string         `json:"status"`   // in_progress|submitted
	NeedsManual    []int          `json:"needs_manual,omitempty"`
}

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

// StudentView strips every answer-bearing field.
func (e Exam) StudentView() Exam {
	out := e
	out.Answers = map[int]string{}
	out.TrueFalseKeys = nil
	out.Questions = stripAnswers(e.Questions)
	out.Sections = make([]ExamSection, len(e.Sections))
	for i, s := range e.Sections {
		s.Questions = stripAnswers(s.Questions)
		out.Sections[i] = s
	}
	return out
}

func stripAnswers(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		q.CorrectAnswer = nil
		out[i] = q
	}
	return out
}

func (e Exam) Summary() ExamSummary {
	return ExamSummary{
		ID:            e.ID,
		Title:         e.Title,
		TimeLimit:     e.TimeLimit,
		QuestionCount: len(e.Questions),
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
	}
}

// ExternalizeMedia points every image at url(filename) and drops the inline
// bytes, in the image list and in every question that references it. When
// url returns "" the bytes stay and URL becomes a data: URL.
func (e *Exam) ExternalizeMedia(url func(filename string) string) {
	fix := func(m *MediaAsset) {
		if m == nil {
			return
		}
		if u := url(m.Filename); u != "" {
			m.URL = u
			m.Data = nil
			return
		}
		m.URL = m.DataURL()
	}
	for i := range e.Images {
		fix(&e.Images[i])
	}
	for i := range e.Questions {
		for _, m := range e.Questions[i].Images {
			fix(m)
		}
	}
	for i := range e.Sections {
		for j := range e.Sections[i].Questions {
			for _, m := range e.Sections[i].Questions[j].Images {
				fix(m)
			}
		}
	}
}

// GradingQuestions is the exam as the grader sees it. Multiple choice and
// short answer keys come from Answers; true/false keys from TrueFalseKeys.
func (e Exam) GradingQuestions() []grading.Q {
	out := make([]grading.Q, 0, len(e.Questions))
	for _, q := range e.Questions {
		gq := grading.Q{Number: q.Number, Type: string(q.Type), Points: 1}
		switch q.Type {
		case TrueFalse:
			if k, ok := e.TrueFalseKeys[q.Number]; ok {
				gq.AnswerKey = []string{k}
			}
			for _, o := range q.Options {
				gq.Statements = append(gq.Statements, o.Letter)
			}
		default:
			if a, ok := e.Answers[q.Number]; ok && a != "" {
				gq.AnswerKey = []string{a}
			} else if q.CorrectAnswer != nil {
				gq.AnswerKey = []string{*q.CorrectAnswer}
			}
		}
		out = append(out, gq)
	}
	return out
}
