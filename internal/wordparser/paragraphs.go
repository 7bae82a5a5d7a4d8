package wordparser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Paragraph is one flattened w:p: its visible text and the relationship ids
// of the pictures it embeds.
type Paragraph struct {
	Text      string
	ImageRefs []string
}

func isWordElement(n xml.Name, local string) bool {
	return n.Local == local && (n.Space == nsW || n.Space == "w" || n.Space == "")
}

// extractParagraphs walks document.xml token by token. Text is taken from
// w:t elements inside runs only; formatting is dropped, order is kept.
// Paragraphs nested in text boxes are folded into their enclosing paragraph.
func extractParagraphs(docXML []byte) ([]Paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var (
		out      []Paragraph
		text     strings.Builder
		refs     []string
		seen     map[string]bool
		pDepth   int
		runDepth int
		inText   bool
	)
	addRef := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		refs = append(refs, id)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isWordElement(t.Name, "p"):
				if pDepth == 0 {
					text.Reset()
					refs = nil
					seen = map[string]bool{}
				}
				pDepth++
			case pDepth == 0:
				// outside any paragraph (tables handled per cell paragraph)
			case isWordElement(t.Name, "r"):
				runDepth++
			case isWordElement(t.Name, "t"):
				inText = runDepth > 0
			case runDepth > 0 && t.Name.Local == "blip":
				// a:blip, either directly under a drawing (inline/anchor) or
				// nested in an mc:AlternateContent / w:pict wrapper.
				addRef(attrValue(t, "embed"))
			case runDepth > 0 && t.Name.Local == "imagedata":
				// legacy VML: <v:imagedata r:id="..."/> or o:relid
				id := attrValueNS(t, "id", nsR, "r")
				if id == "" {
					id = attrValue(t, "relid")
				}
				addRef(id)
			}

		case xml.CharData:
			if inText {
				text.Write(t)
			}

		case xml.EndElement:
			switch {
			case isWordElement(t.Name, "t"):
				inText = false
			case isWordElement(t.Name, "r"):
				if runDepth > 0 {
					runDepth--
				}
			case isWordElement(t.Name, "p"):
				if pDepth == 0 {
					continue
				}
				pDepth--
				if pDepth > 0 {
					continue
				}
				p := Paragraph{Text: normalizeText(text.String()), ImageRefs: refs}
				if p.Text != "" || len(p.ImageRefs) > 0 {
					out = append(out, p)
				}
			}
		}
	}
	return out, nil
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func attrValueNS(el xml.StartElement, local string, spaces ...string) string {
	for _, a := range el.Attr {
		if a.Name.Local != local {
			continue
		}
		for _, s := range spaces {
			if a.Name.Space == s {
				return a.Value
			}
		}
	}
	return ""
}
