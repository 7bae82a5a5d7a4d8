package grading

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalize prepares a short answer for comparison: NFC, lower case, all
// whitespace removed, decimal comma read as a point and trailing
// punctuation dropped. "  X = 0,5. " and "x=0.5" normalize alike.
func normalize(s string) string {
	s = norm.NFC.String(s)
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	for i := 1; i+1 < len(out); i++ {
		if out[i] == ',' && unicode.IsDigit(out[i-1]) && unicode.IsDigit(out[i+1]) {
			out[i] = '.'
		}
	}
	return strings.TrimRightFunc(string(out), func(r rune) bool {
		return strings.ContainsRune(".,;:!?'\"", r)
	})
}

// decimalPoint rewrites a decimal comma for number parsing.
func decimalPoint(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
}

// levenshtein computes edit distance (insertion, deletion, substitution cost 1).
func levenshtein(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	n, m := len(ar), len(br)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	dp := make([]int, m+1)
	for j := 0; j <= m; j++ {
		dp[j] = j
	}
	for i := 1; i <= n; i++ {
		prev := dp[0]
		dp[0] = i
		for j := 1; j <= m; j++ {
			tmp := dp[j]
			cost := 0
			if ar[i-1] != br[j-1] {
				cost = 1
			}
			ins := dp[j] + 1
			del := dp[j-1] + 1
			sub := prev + cost
			dp[j] = min3(ins, del, sub)
			prev = tmp
		}
	}
	return dp[m]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
