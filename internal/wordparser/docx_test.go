package wordparser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const docHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
 xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"
 xmlns:v="urn:schemas-microsoft-com:vml"
 xmlns:o="urn:schemas-microsoft-com:office:office"><w:body>`

const docFooter = `</w:body></w:document>`

func xmlText(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// para renders one paragraph; each string becomes its own run.
func para(runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p><w:pPr><w:jc w:val=\"left\"/></w:pPr>")
	for _, r := range runs {
		fmt.Fprintf(&b, `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r>`, xmlText(r))
	}
	b.WriteString("</w:p>")
	return b.String()
}

func drawingRun(rID string) string {
	return `<w:r><w:drawing><wp:inline><a:graphic><a:graphicData><pic:pic><pic:blipFill>` +
		`<a:blip r:embed="` + rID + `"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`
}

func vmlRun(rID string) string {
	return `<w:r><w:pict><v:shape><v:imagedata r:id="` + rID + `" o:title=""/></v:shape></w:pict></w:r>`
}

// imagePara is a paragraph holding only pictures, optionally with text.
func imagePara(text string, runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if text != "" {
		fmt.Fprintf(&b, `<w:r><w:t>%s</w:t></w:r>`, xmlText(text))
	}
	for _, r := range runs {
		b.WriteString(r)
	}
	b.WriteString("</w:p>")
	return b.String()
}

func paras(lines ...string) string {
	var b strings.Builder
	for _, l := range lines {
		if strings.HasPrefix(l, "<w:p>") {
			b.WriteString(l)
			continue
		}
		b.WriteString(para(l))
	}
	return b.String()
}

type docxFixture struct {
	body  string
	rels  *string
	media map[string][]byte
	core  string
	// extra entries written verbatim
	files map[string]string
}

func relsXML(pairs ...string) *string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/%s"/>`, pairs[i], pairs[i+1])
	}
	b.WriteString(`</Relationships>`)
	s := b.String()
	return &s
}

func buildDocx(t *testing.T, fx docxFixture) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name string, data []byte) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	write("[Content_Types].xml", []byte(`<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	write(documentPath, []byte(docHeader+fx.body+docFooter))
	if fx.rels != nil {
		write(relsPath, []byte(*fx.rels))
	}
	for name, data := range fx.media {
		write(mediaPrefix+name, data)
	}
	if fx.core != "" {
		write(corePropsPath, []byte(`<?xml version="1.0"?><cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>`+xmlText(fx.core)+`</dc:title></cp:coreProperties>`))
	}
	for name, data := range fx.files {
		write(name, []byte(data))
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

var pngStub = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}

// buildZip writes an arbitrary archive, for documents too broken for buildDocx.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
