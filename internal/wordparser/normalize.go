package wordparser

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	displayMathPattern = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)
	inlineMathPattern  = regexp.MustCompile(`(?s)\\\((.*?)\\\)`)
	dollarRunPattern   = regexp.MustCompile(`\${3,}`)
	// Word puts non-breaking spaces between runs; \s alone is ASCII-only.
	spaceRunPattern = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// normalizeText composes Vietnamese diacritics (NFC) and rewrites LaTeX
// delimiters into the $...$ / $$...$$ form the math renderer expects.
func normalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(strings.TrimSpace(s))
	s = displayMathPattern.ReplaceAllString(s, `$$$$${1}$$$$`)
	s = inlineMathPattern.ReplaceAllString(s, `$$${1}$$`)
	s = dollarRunPattern.ReplaceAllLiteralString(s, "$$")
	s = spaceRunPattern.ReplaceAllLiteralString(s, " ")
	return strings.TrimSpace(s)
}
