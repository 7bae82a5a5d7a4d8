// Package wordparser extracts a three-part exam (multiple choice, true/false,
// short answer) from a Word .docx file.
package wordparser

import (
	"encoding/xml"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/phuslu/log"
)

// DefaultTimeLimit is used when the document does not state one (minutes).
const DefaultTimeLimit = 90

const untitled = "Untitled exam"

type Option func(*options)

type options struct {
	title            string
	filename         string
	defaultTimeLimit int
}

// WithTitle overrides every other title source.
func WithTitle(t string) Option { return func(o *options) { o.title = strings.TrimSpace(t) } }

// WithFilename derives the title from the uploaded file name.
func WithFilename(name string) Option { return func(o *options) { o.filename = name } }

func WithDefaultTimeLimit(minutes int) Option {
	return func(o *options) {
		if minutes > 0 {
			o.defaultTimeLimit = minutes
		}
	}
}

// Parse turns the raw bytes of a .docx into ExamData. It fails only when the
// archive cannot be opened or the document body is missing or unreadable;
// everything else degrades into Result.Warnings.
//
// Parse keeps no state between calls and is safe for concurrent use.
func Parse(data []byte, opts ...Option) (Result, error) {
	cfg := options{defaultTimeLimit: DefaultTimeLimit}
	for _, o := range opts {
		o(&cfg)
	}

	ar, err := openArchive(data)
	if err != nil {
		return Result{}, err
	}

	warn := warnings{}
	rels := relMap{byID: map[string]string{}}
	if ar.rels == nil {
		warn.add(StageMedia, "%s missing; images cannot be attached to questions", relsPath)
	} else if m, ok := parseRelationships(ar.rels); ok {
		rels = m
	} else {
		warn.add(StageMedia, "%s has no relationships; images cannot be attached to questions", relsPath)
	}

	images, err := extractMedia(ar, rels, &warn)
	if err != nil {
		return Result{}, err
	}

	paras, err := extractParagraphs(ar.document)
	if err != nil {
		return Result{}, err
	}

	ranges := detectSections(paras)
	for _, r := range ranges {
		if r.Found {
			continue
		}
		if r.Part == 1 {
			warn.add(StageSections, "no PHẦN 1 header; treating the document start as part 1")
			continue
		}
		warn.add(StageSections, "no PHẦN %d header; part %d is empty", r.Part, r.Part)
	}

	resolver := newImageResolver(images, rels)
	var byPart [3][]parsedQuestion
	for i, g := range grammars {
		byPart[i] = scanPart(paras, ranges[i], g, resolver, &warn)
		if g.answer == nil {
			continue
		}
		for _, q := range byPart[i] {
			if q.correctAnswer == nil {
				warn.add(StageQuestions, "part %d question %d: no answer marker found", g.part, q.localNumber)
			}
		}
	}

	examData := assemble(resolveTitle(cfg, ar.coreProps), detectTimeLimit(paras, cfg.defaultTimeLimit), byPart, images)

	log.Debug().
		Int("paragraphs", len(paras)).
		Int("images", len(images)).
		Int("part1", len(byPart[0])).
		Int("part2", len(byPart[1])).
		Int("part3", len(byPart[2])).
		Int("warnings", len(warn)).
		Msg("wordparser: parsed document")

	return Result{Exam: examData, Warnings: warn}, nil
}

func resolveTitle(cfg options, coreProps []byte) string {
	if cfg.title != "" {
		return cfg.title
	}
	if cfg.filename != "" {
		base := path.Base(strings.ReplaceAll(cfg.filename, `\`, "/"))
		if t := strings.TrimSpace(strings.TrimSuffix(base, path.Ext(base))); t != "" && t != "." {
			return t
		}
	}
	if len(coreProps) > 0 {
		var core struct {
			Title string `xml:"title"`
		}
		if err := xml.Unmarshal(coreProps, &core); err == nil {
			if t := normalizeText(core.Title); t != "" {
				return t
			}
		}
	}
	return untitled
}

var timeLimitPattern = regexp.MustCompile(`(?i)th[ờo]i\s*gian(?:\s*l[àa]m\s*b[àa]i)?\s*[:：]?\s*(\d{1,3})\s*ph[úu]t`)

// detectTimeLimit looks for "Thời gian làm bài: 90 phút" in the front matter,
// i.e. before the first question.
func detectTimeLimit(paras []Paragraph, def int) int {
	for _, p := range paras {
		if _, _, ok := matchQuestion(p.Text); ok {
			break
		}
		if m := timeLimitPattern.FindStringSubmatch(p.Text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return def
}
