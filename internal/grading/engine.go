package grading

import (
	"context"
	"errors"
	"strings"
)

// Question types, mirrored from the exam model so grading stays import-free.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
)

// Q is a minimal view of a question needed for grading.
type Q struct {
	Number    int
	Type      string
	Points    float64
	AnswerKey []string
	// Statements lists the option letters of a true/false question.
	Statements []string
}

// Result is the outcome of grading a single question response.
type Result struct {
	AutoPoints  float64  // points awarded automatically
	MaxPoints   float64  // the question's max points
	NeedsManual bool     // true if teacher review is required
	Feedback    []string // optional notes
}

// Correct reports whether the response earned full credit.
func (r Result) Correct() bool {
	return r.MaxPoints > 0 && r.AutoPoints >= r.MaxPoints
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, response interface{}) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{MaxPoints: q.Points, NeedsManual: true, Feedback: []string{"no strategy available"}}, nil
	}
	return s.Grade(ctx, q, response)
}

// Engine options

type Option func(*config)

type config struct {
	MaxEditDistance       int  // for short-answer fuzzy
	AllowPartialTrueFalse bool // proportional credit per statement
}

func WithMaxEditDistance(n int) Option   { return func(c *config) { c.MaxEditDistance = n } }
func WithPartialTrueFalse(b bool) Option { return func(c *config) { c.AllowPartialTrueFalse = b } }

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{
		MaxEditDistance:       0,
		AllowPartialTrueFalse: true,
	}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{
		strategies: map[string]Strategy{
			TypeMultipleChoice: choiceStrategy{},
			TypeTrueFalse:      trueFalseStrategy{allowPartial: cfg.AllowPartialTrueFalse},
			TypeShortAnswer:    shortAnswerStrategy{maxEdit: cfg.MaxEditDistance},
		},
	}
}

// --- Strategies ---

// choiceStrategy compares option letters case-insensitively.
type choiceStrategy struct{}

func (choiceStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	resp, ok := response.(string)
	if !ok {
		return res, errors.New("response must be string")
	}
	resp = strings.TrimSpace(resp)
	if len(q.AnswerKey) == 0 {
		res.NeedsManual = true
		res.Feedback = append(res.Feedback, "no answer key")
		return res, nil
	}
	for _, k := range q.AnswerKey {
		if resp != "" && strings.EqualFold(resp, strings.TrimSpace(k)) {
			res.AutoPoints = q.Points
			return res, nil
		}
	}
	return res, nil
}

// trueFalseStrategy grades each statement separately. Key and response both
// list the letters of the statements considered true, e.g. "ac".
type trueFalseStrategy struct{ allowPartial bool }

func (s trueFalseStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	resp, ok := response.(string)
	if !ok {
		return res, errors.New("response must be string")
	}
	if len(q.AnswerKey) == 0 {
		res.NeedsManual = true
		res.Feedback = append(res.Feedback, "no true/false key")
		return res, nil
	}
	key := letterSet(q.AnswerKey[0])
	chosen := letterSet(resp)

	statements := q.Statements
	if len(statements) == 0 {
		statements = []string{"a", "b", "c", "d"}
	}
	right := 0
	for _, st := range statements {
		st = strings.ToLower(st)
		_, isTrue := key[st]
		_, marked := chosen[st]
		if isTrue == marked {
			right++
		}
	}
	switch {
	case right == len(statements):
		res.AutoPoints = q.Points
	case s.allowPartial:
		res.AutoPoints = q.Points * float64(right) / float64(len(statements))
	}
	return res, nil
}

// shortAnswerStrategy accepts a normalized exact match, a numeric match
// ("0,5" equals "0.5") or, when maxEdit > 0, a close match for half credit.
type shortAnswerStrategy struct{ maxEdit int }

func (s shortAnswerStrategy) Grade(ctx context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	resp, ok := response.(string)
	if !ok {
		return res, errors.New("response must be string")
	}
	if len(q.AnswerKey) == 0 {
		res.NeedsManual = true
		res.Feedback = append(res.Feedback, "no answer key")
		return res, nil
	}
	normResp := normalize(resp)
	if normResp == "" {
		return res, nil
	}

	fuzzy := false
	for _, k := range q.AnswerKey {
		nk := normalize(k)
		if nk == normResp {
			res.AutoPoints = q.Points
			return res, nil
		}
		if num, _ := (numericStrategy{}).Grade(ctx, Q{Points: q.Points, AnswerKey: []string{decimalPoint(k)}}, decimalPoint(resp)); num.AutoPoints > 0 {
			res.AutoPoints = q.Points
			return res, nil
		}
		if s.maxEdit > 0 && levenshtein(nk, normResp) <= s.maxEdit {
			fuzzy = true
		}
	}
	if fuzzy {
		res.AutoPoints = q.Points * 0.5
		res.Feedback = append(res.Feedback, "close match (fuzzy)")
	}
	return res, nil
}

// helpers

func letterSet(s string) map[string]struct{} {
	m := map[string]struct{}{}
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			m[string(r)] = struct{}{}
		}
	}
	return m
}
