package grading

import (
	"context"
	"math"
	"strings"
)

// Summary totals one graded submission.
type Summary struct {
	Score        float64        `json:"score"`
	MaxScore     float64        `json:"max_score"`
	CorrectCount int            `json:"correct_count"`
	WrongCount   int            `json:"wrong_count"`
	Total        int            `json:"total_questions"`
	Percentage   int            `json:"percentage"`
	NeedsManual  []int          `json:"needs_manual,omitempty"`
	Results      map[int]Result `json:"-"`
}

// ScoreSubmission grades every question of an exam against the responses,
// keyed by question number. Unanswered questions count as wrong. A question
// with zero Points is worth one.
func ScoreSubmission(ctx context.Context, g Grader, qs []Q, responses map[int]string) Summary {
	sum := Summary{Total: len(qs), Results: make(map[int]Result, len(qs))}
	for _, q := range qs {
		if q.Points <= 0 {
			q.Points = 1
		}
		sum.MaxScore += q.Points

		res := Result{MaxPoints: q.Points}
		resp := strings.TrimSpace(responses[q.Number])
		if r, err := g.Grade(ctx, q, resp); err == nil {
			if resp == "" {
				// unanswered earns nothing, but a missing key still needs a teacher
				res.NeedsManual = r.NeedsManual
				res.Feedback = r.Feedback
			} else {
				res = r
			}
		}
		sum.Results[q.Number] = res
		sum.Score += res.AutoPoints
		if res.NeedsManual {
			sum.NeedsManual = append(sum.NeedsManual, q.Number)
		}
		if res.Correct() {
			sum.CorrectCount++
		}
	}
	sum.WrongCount = sum.Total - sum.CorrectCount
	sum.Score = math.Round(sum.Score*100) / 100
	if sum.MaxScore > 0 {
		sum.Percentage = int(math.Round(sum.Score / sum.MaxScore * 100))
	}
	return sum
}
