// Command docx2json prints the exam extracted from a Word document as JSON.
//
//	docx2json [-title "Đề thi thử"] [-time 90] de-thi.docx
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/phuslu/log"

	"github.com/mind-engage/examportal/internal/config"
	"github.com/mind-engage/examportal/internal/logging"
	"github.com/mind-engage/examportal/internal/wordparser"
)

func main() {
	title := flag.String("title", "", "exam title; defaults to the document title or file name")
	timeLimit := flag.Int("time", wordparser.DefaultTimeLimit, "time limit in minutes when the document states none")
	verbose := flag.Bool("v", false, "log parse details to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.docx\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logging.Setup(level, config.ModeOffline)

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("read")
	}
	res, err := wordparser.Parse(data,
		wordparser.WithFilename(path),
		wordparser.WithTitle(*title),
		wordparser.WithDefaultTimeLimit(*timeLimit),
	)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("parse")
	}
	for _, w := range res.Warnings {
		log.Warn().Str("stage", string(w.Stage)).Msg(w.Message)
	}

	out := struct {
		wordparser.Result
		Validation wordparser.ValidationResult `json:"validation"`
	}{res, wordparser.Validate(res.Exam)}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("encode")
	}
}
