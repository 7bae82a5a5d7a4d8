package wordparser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	documentPath  = "word/document.xml"
	relsPath      = "word/_rels/document.xml.rels"
	corePropsPath = "docProps/core.xml"
	mediaPrefix   = "word/media/"
)

// archive holds the parts of a .docx the extractor needs, read fully into memory.
type archive struct {
	document  []byte
	rels      []byte // nil when the relationship part is absent or unreadable
	coreProps []byte
	media     []*zip.File
}

func openArchive(data []byte) (*archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotZip, err)
	}

	// Build file index for quick lookup
	index := make(map[string]*zip.File, len(zr.File))
	a := &archive{}
	for _, f := range zr.File {
		index[f.Name] = f
		if strings.HasPrefix(f.Name, mediaPrefix) && !f.FileInfo().IsDir() && len(f.Name) > len(mediaPrefix) {
			a.media = append(a.media, f)
		}
	}

	doc := index[documentPath]
	if doc == nil {
		return nil, ErrMissingDocument
	}
	if a.document, err = readEntry(doc); err != nil {
		return nil, fmt.Errorf("reading %s: %w", documentPath, err)
	}

	// Optional parts: a failure here only degrades the result.
	if f := index[relsPath]; f != nil {
		a.rels, _ = readEntry(f)
	}
	if f := index[corePropsPath]; f != nil {
		a.coreProps, _ = readEntry(f)
	}
	return a, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
