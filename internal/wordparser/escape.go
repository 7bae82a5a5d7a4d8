package wordparser

import "strings"

// EscapeHTMLPreservingMath escapes &, < and > for safe HTML embedding while
// copying $$...$$ and $...$ spans through untouched, so LaTeX source reaches
// the math renderer byte for byte. Display spans take precedence over inline
// ones; an unmatched $ is ordinary text.
func EscapeHTMLPreservingMath(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '$' {
			if span := mathSpan(s[i:]); span > 0 {
				b.WriteString(s[i : i+span])
				i += span
				continue
			}
		}
		switch s[i] {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteByte(s[i])
		}
		i++
	}
	return b.String()
}

// mathSpan returns the byte length of the math span starting at s[0] == '$',
// or 0 when the delimiter is never closed.
func mathSpan(s string) int {
	if strings.HasPrefix(s, "$$") {
		if end := strings.Index(s[2:], "$$"); end >= 0 {
			return 2 + end + 2
		}
	}
	if end := strings.IndexByte(s[1:], '$'); end >= 0 {
		return 1 + end + 1
	}
	return 0
}
