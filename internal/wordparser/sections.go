package wordparser

import "regexp"

// SectionRange is the half-open paragraph interval [Start, End) of one part.
type SectionRange struct {
	Part  int
	Start int
	End   int
	Found bool // header seen in the document
}

func (r SectionRange) Len() int { return r.End - r.Start }

// Header spellings seen in real exam files: Arabic or Roman numbering,
// with or without diacritics, or only the part's title. Every spelling must
// start the line. The bare titles are matched case-sensitively because
// question text uses them in lower case.
var partHeaderPatterns = [3][]*regexp.Regexp{
	{
		regexp.MustCompile(`(?i)^[*\s]*ph[ầaà]n\s*1(?:\D|$)`),
		regexp.MustCompile(`(?i)^[*\s]*ph[ầaà]n\s+i(?:[.:\s]|$)`),
		regexp.MustCompile(`(?i)^[*\s]*i\.\s*tr[ắaă]c\s*nghi[ệeê]m`),
	},
	{
		regexp.MustCompile(`(?i)^[*\s]*ph[ầaà]n\s*2(?:\D|$)`),
		regexp.MustCompile(`(?i)^[*\s]*ph[ầaà]n\s+ii(?:[.:\s]|$)`),
		regexp.MustCompile(`(?i)^[*\s]*ii\.\s*[đd][úu]ng\s*sai`),
		regexp.MustCompile(`^[*\s]*[ĐD][ÚU]NG\s*SAI`),
	},
	{
		regexp.MustCompile(`(?i)^[*\s]*ph[ầaà]n\s*3(?:\D|$)`),
		regexp.MustCompile(`(?i)^[*\s]*ph[ầaà]n\s+iii(?:[.:\s]|$)`),
		regexp.MustCompile(`(?i)^[*\s]*iii\.\s*tr[ảa]\s*l[ờoở]i`),
		regexp.MustCompile(`^[*\s]*TR[ẢA]\s*L[ỜO]I\s*NG[ẮAĂ]N`),
	},
}

// matchesPart reports whether text is a header of part. A "Câu N" line is
// never a header, whatever its stem mentions.
func matchesPart(part int, text string) bool {
	if questionPattern.MatchString(text) {
		return false
	}
	for _, re := range partHeaderPatterns[part-1] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// detectSections locates the first header of each part. A header only counts
// when it comes after every earlier part's header, so a stray "PHẦN 1" inside
// part 2 is ignored. Without a part 1 header the whole document up to the
// next part is treated as part 1. A missing part 2 or 3 gets an empty range
// positioned where the following part starts (or at the end), which keeps
// ranges ascending and non-overlapping.
func detectSections(paras []Paragraph) [3]SectionRange {
	start := [3]int{-1, -1, -1}
	for i, p := range paras {
		if start[0] == -1 && start[1] == -1 && start[2] == -1 && matchesPart(1, p.Text) {
			start[0] = i
			continue
		}
		if start[1] == -1 && start[2] == -1 && i > start[0] && matchesPart(2, p.Text) {
			start[1] = i
			continue
		}
		if start[2] == -1 && i > start[0] && i > start[1] && matchesPart(3, p.Text) {
			start[2] = i
		}
	}

	n := len(paras)
	var ranges [3]SectionRange
	for i := range ranges {
		ranges[i].Part = i + 1
		ranges[i].Found = start[i] != -1
	}
	if start[0] == -1 {
		start[0] = 0
	}

	// each part ends where the next detected part begins
	next := n
	for i := 2; i >= 0; i-- {
		if ranges[i].Found || i == 0 {
			ranges[i].Start, ranges[i].End = start[i], next
			next = start[i]
			continue
		}
		ranges[i].Start, ranges[i].End = next, next
	}
	return ranges
}
