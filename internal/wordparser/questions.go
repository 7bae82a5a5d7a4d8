package wordparser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mind-engage/examportal/internal/exam"
)

// Markers shared by every part.
var (
	questionPattern = regexp.MustCompile(`(?i)^c[âa]u\s*(\d+)\s*[.:]\s*(.*)$`)
	solutionPattern = regexp.MustCompile(`(?i)^l[ờơo]i\s*gi[ảa]i`)
	figurePattern   = regexp.MustCompile(`(?i)^h[ìi]nh\s*\d+`)
	partHeaderLine  = regexp.MustCompile(`(?i)^ph[ầaà]n\s*(?:\d|[ivx]+\b)`)
)

// grammar is what distinguishes one part's scanner from another.
type grammar struct {
	part  int
	qtype exam.QuestionType

	// option matches an option/statement line: group 1 letter, group 2 text.
	option       *regexp.Regexp
	optionLetter func(string) string

	// answer matches an in-band answer: group 1 is the answer.
	answer      *regexp.Regexp
	answerValue func(string) string

	// extra lines dropped as headers besides "PHẦN n"
	headers []*regexp.Regexp
}

var (
	multipleChoiceGrammar = grammar{
		part:         1,
		qtype:        exam.MultipleChoice,
		option:       regexp.MustCompile(`(?i)^([A-D])[.)]\s*(.*)$`),
		optionLetter: strings.ToUpper,
		// "Chọn B" anywhere on the line; the letter must not start a word ("Chọn câu").
		answer:      regexp.MustCompile(`(?i)ch[oọ]n\s*([A-D])(?:[^\pL\pN]|$)`),
		answerValue: strings.ToUpper,
		headers:     []*regexp.Regexp{regexp.MustCompile(`(?i)^(?:[ivx]+\.\s*)?tr[ắaă]c\s*nghi[ệeê]m`)},
	}

	// True/false statements carry no in-band answer; their key is supplied
	// by the grading side.
	trueFalseGrammar = grammar{
		part:         2,
		qtype:        exam.TrueFalse,
		option:       regexp.MustCompile(`(?i)^([a-d])\)\s*(.*)$`),
		optionLetter: strings.ToLower,
	}

	shortAnswerGrammar = grammar{
		part:        3,
		qtype:       exam.ShortAnswer,
		answer:      regexp.MustCompile(`(?i)^[*\s]*[đd][áa]p\s*[áa]n[:\s]*(.+)$`),
		answerValue: strings.TrimSpace,
	}

	grammars = [3]grammar{multipleChoiceGrammar, trueFalseGrammar, shortAnswerGrammar}
)

type parsedQuestion struct {
	localNumber   int
	part          int
	qtype         exam.QuestionType
	text          string
	options       []exam.Option
	correctAnswer *string
	images        []*exam.MediaAsset
}

type scanState int

const (
	seekingQuestion scanState = iota
	collectingContent
	inSolution
)

// questionScanner is the per-part state machine. One instance scans one
// paragraph range left to right.
type questionScanner struct {
	g      grammar
	images *imageResolver
	warn   *warnings

	out   []parsedQuestion
	cur   *parsedQuestion
	buf   []string
	state scanState
}

func scanPart(paras []Paragraph, rng SectionRange, g grammar, images *imageResolver, warn *warnings) []parsedQuestion {
	if rng.Start < 0 || rng.End > len(paras) || rng.Start >= rng.End {
		return nil
	}
	s := &questionScanner{g: g, images: images, warn: warn}
	for _, p := range paras[rng.Start:rng.End] {
		s.line(p)
	}
	s.finalize()

	sort.SliceStable(s.out, func(i, j int) bool { return s.out[i].localNumber < s.out[j].localNumber })
	return s.out
}

func (s *questionScanner) line(p Paragraph) {
	text := p.Text
	if s.isHeader(text) {
		return
	}

	if n, rest, ok := matchQuestion(text); ok {
		s.finalize()
		s.cur = &parsedQuestion{localNumber: n, part: s.g.part, qtype: s.g.qtype}
		if rest != "" {
			s.buf = append(s.buf, rest)
		}
		s.state = collectingContent
		s.attach(p.ImageRefs)
		return
	}

	if s.cur == nil {
		// content and pictures before the first "Câu" belong to no question
		return
	}

	if solutionPattern.MatchString(text) {
		s.commitText()
		s.state = inSolution
		s.attach(p.ImageRefs)
		return
	}

	// Answer markers are honored in the solution too; worked solutions
	// usually end by restating the answer.
	if s.g.answer != nil {
		if m := s.g.answer.FindStringSubmatch(text); m != nil {
			if v := s.g.answerValue(m[1]); v != "" {
				s.cur.correctAnswer = &v
			}
			s.attach(p.ImageRefs)
			return
		}
	}

	if s.g.option != nil && s.state == collectingContent {
		if m := s.g.option.FindStringSubmatch(text); m != nil {
			if len(s.cur.options) == 0 {
				s.commitText()
			}
			s.cur.options = append(s.cur.options, exam.Option{
				Letter: s.g.optionLetter(m[1]),
				Text:   strings.TrimSpace(m[2]),
			})
			s.attach(p.ImageRefs)
			return
		}
	}

	if s.state == collectingContent && text != "" && !figurePattern.MatchString(text) {
		s.buf = append(s.buf, text)
	}
	s.attach(p.ImageRefs)
}

func (s *questionScanner) isHeader(text string) bool {
	if partHeaderLine.MatchString(text) {
		return true
	}
	for _, re := range s.g.headers {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// matchQuestion recognizes "Câu N." / "Câu N:" and returns N and the rest of
// the line. N must be a positive integer.
func matchQuestion(text string) (int, string, bool) {
	m := questionPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, "", false
	}
	return n, strings.TrimSpace(m[2]), true
}

// commitText moves the buffered stem into the question text unless it was
// already set.
func (s *questionScanner) commitText() {
	if len(s.buf) > 0 && s.cur.text == "" {
		s.cur.text = strings.TrimSpace(strings.Join(s.buf, " "))
	}
	s.buf = s.buf[:0]
}

// attach adds pictures to the open question, in every state. Only the text
// of a worked solution is left out; its figures stay with the question.
func (s *questionScanner) attach(refs []string) {
	if s.cur == nil {
		return
	}
	for _, id := range refs {
		img := s.images.resolve(id)
		if img == nil {
			s.warn.add(StageQuestions, "part %d question %d: image reference %s does not resolve to a media file", s.g.part, s.cur.localNumber, id)
			continue
		}
		if !containsImage(s.cur.images, img) {
			s.cur.images = append(s.cur.images, img)
		}
	}
}

func containsImage(list []*exam.MediaAsset, img *exam.MediaAsset) bool {
	for _, x := range list {
		if x.ID == img.ID {
			return true
		}
	}
	return false
}

// finalize closes the open question. A question that never received text
// is discarded.
func (s *questionScanner) finalize() {
	if s.cur == nil {
		return
	}
	s.commitText()
	if s.cur.text != "" {
		s.out = append(s.out, *s.cur)
	}
	s.cur = nil
	s.state = seekingQuestion
}
