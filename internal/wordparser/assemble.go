package wordparser

import (
	"fmt"

	"github.com/mind-engage/examportal/internal/exam"
)

type partInfo struct {
	name        string
	title       string
	description string
	qtype       exam.QuestionType
}

var parts = map[int]partInfo{
	1: {
		name:        "Trắc nghiệm nhiều lựa chọn",
		title:       "PHẦN 1. Trắc nghiệm nhiều lựa chọn",
		description: "Thí sinh chọn một phương án đúng A, B, C hoặc D",
		qtype:       exam.MultipleChoice,
	},
	2: {
		name:        "Trắc nghiệm đúng sai",
		title:       "PHẦN 2. Trắc nghiệm đúng sai",
		description: "Thí sinh chọn Đúng hoặc Sai cho mỗi ý a), b), c), d)",
		qtype:       exam.TrueFalse,
	},
	3: {
		name:        "Trắc nghiệm trả lời ngắn",
		title:       "PHẦN 3. Trắc nghiệm trả lời ngắn",
		description: "Thí sinh điền đáp án số vào ô trống",
		qtype:       exam.ShortAnswer,
	},
}

// assemble renumbers the per-part questions into part*100+local, escapes
// them for HTML and groups them into sections. byPart[i] holds part i+1,
// already sorted.
func assemble(title string, timeLimit int, byPart [3][]parsedQuestion, images []exam.MediaAsset) exam.ExamData {
	data := exam.ExamData{
		Title:     title,
		TimeLimit: timeLimit,
		Sections:  []exam.ExamSection{},
		Questions: []exam.Question{},
		Answers:   map[int]string{},
		Images:    images,
	}
	for i, list := range byPart {
		if len(list) == 0 {
			continue
		}
		part := i + 1
		info := parts[part]
		section := exam.ExamSection{
			Name:        info.title,
			Description: info.description,
			SectionType: info.qtype,
			Questions:   make([]exam.Question, 0, len(list)),
		}
		for _, pq := range list {
			q := toQuestion(pq)
			section.Questions = append(section.Questions, q)
			data.Questions = append(data.Questions, q)
			// true/false correctness is per statement, never a single key
			if q.Type != exam.TrueFalse && q.CorrectAnswer != nil && *q.CorrectAnswer != "" {
				data.Answers[q.Number] = *q.CorrectAnswer
			}
		}
		data.Sections = append(data.Sections, section)
	}
	return data
}

func toQuestion(pq parsedQuestion) exam.Question {
	opts := make([]exam.Option, len(pq.options))
	for i, o := range pq.options {
		opts[i] = exam.Option{Letter: o.Letter, Text: EscapeHTMLPreservingMath(o.Text)}
	}
	return exam.Question{
		Number:        pq.part*100 + pq.localNumber,
		Text:          EscapeHTMLPreservingMath(pq.text),
		Type:          pq.qtype,
		Options:       opts,
		CorrectAnswer: pq.correctAnswer,
		Part:          fmt.Sprintf("PHẦN %d", pq.part),
		Images:        pq.images,
		Section: exam.SectionInfo{
			Letter: fmt.Sprint(pq.part),
			Name:   parts[pq.part].name,
		},
	}
}
