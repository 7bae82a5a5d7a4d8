package wordparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"whitespace", "  a \t\n b  ", "a b"},
		{"nbsp", "a\u00a0\u00a0b", "a b"},
		{"nfc", "Tie\u0302\u0301ng Vie\u0323\u0302t", "Tiếng Việt"},
		{"inline latex", `Tính \(x^2\) và \(y\)`, "Tính $x^2$ và $y$"},
		{"display latex", `\[\int_0^1 f\]`, `$$\int_0^1 f$$`},
		{"dollar runs", "$$$x$$$", "$$x$$"},
		{"plain dollars kept", "$a$ và $$b$$", "$a$ và $$b$$"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeText(tc.in))
		})
	}
}

func TestEscapeHTMLPreservingMath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"a<b", "a&lt;b"},
		{"Tom & Jerry", "Tom &amp; Jerry"},
		{"$$a<b$$ & $c>d$", "$$a<b$$ &amp; $c>d$"},
		{"giá $5 & hơn", "giá $5 &amp; hơn"},
		{"$x^2$ là <b>bình phương</b>", "$x^2$ là &lt;b&gt;bình phương&lt;/b&gt;"},
		{"$$ a $ b $$", "$$ a $ b $$"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EscapeHTMLPreservingMath(tc.in), tc.in)
	}
}

func textParas(lines ...string) []Paragraph {
	out := make([]Paragraph, len(lines))
	for i, l := range lines {
		out[i] = Paragraph{Text: l}
	}
	return out
}

func bounds(rs [3]SectionRange) [][2]int {
	out := make([][2]int, 3)
	for i, r := range rs {
		out[i] = [2]int{r.Start, r.End}
	}
	return out
}

func TestDetectSections(t *testing.T) {
	t.Run("all parts", func(t *testing.T) {
		rs := detectSections(textParas("Đề thi", "PHẦN 1", "q", "PHẦN 2", "q", "PHẦN 3", "q"))
		assert.Equal(t, [][2]int{{1, 3}, {3, 5}, {5, 7}}, bounds(rs))
		for _, r := range rs {
			assert.True(t, r.Found)
		}
	})

	t.Run("no headers", func(t *testing.T) {
		rs := detectSections(textParas("a", "b", "c"))
		assert.Equal(t, [][2]int{{0, 3}, {3, 3}, {3, 3}}, bounds(rs))
		assert.False(t, rs[0].Found)
		assert.Equal(t, 0, rs[1].Len())
	})

	t.Run("missing middle part", func(t *testing.T) {
		rs := detectSections(textParas("PHẦN 1", "a", "PHẦN 3", "b"))
		assert.Equal(t, [][2]int{{0, 2}, {2, 2}, {2, 4}}, bounds(rs))
		assert.False(t, rs[1].Found)
	})

	t.Run("headers out of order are ignored", func(t *testing.T) {
		rs := detectSections(textParas("PHẦN 3", "PHẦN 2", "PHẦN 1"))
		assert.Equal(t, [][2]int{{0, 0}, {0, 0}, {0, 3}}, bounds(rs))
	})

	t.Run("roman numerals and bare titles", func(t *testing.T) {
		rs := detectSections(textParas("PHẦN I. Trắc nghiệm", "x", "ĐÚNG SAI", "y", "TRẢ LỜI NGẮN", "z"))
		assert.Equal(t, [][2]int{{0, 2}, {2, 4}, {4, 6}}, bounds(rs))
	})

	t.Run("question stem mentioning a part", func(t *testing.T) {
		rs := detectSections(textParas(
			"PHẦN 1. TRẮC NGHIỆM",
			"Câu 1. Chia bánh thành 3 phần, phần 2 chiếm bao nhiêu?",
			"A. 1",
			"Câu 2: Phần 3 của đề gồm mấy câu?",
		))
		assert.Equal(t, [][2]int{{0, 4}, {4, 4}, {4, 4}}, bounds(rs))
		assert.False(t, rs[1].Found)
		assert.False(t, rs[2].Found)
	})

	t.Run("header must start the line", func(t *testing.T) {
		rs := detectSections(textParas("PHẦN 1", "x", "Xem lại phần 2 trước khi nộp", "y"))
		assert.False(t, rs[1].Found)
		assert.Equal(t, 4, rs[0].End)
	})

	t.Run("roman numerals followed by a colon", func(t *testing.T) {
		rs := detectSections(textParas("PHẦN I: Trắc nghiệm", "x", "PHẦN II: Đúng sai", "y", "**PHẦN III:** Trả lời ngắn", "z"))
		assert.Equal(t, [][2]int{{0, 2}, {2, 4}, {4, 6}}, bounds(rs))
	})

	t.Run("lower case title in a question", func(t *testing.T) {
		rs := detectSections(textParas("Câu 1. Chọn đúng sai cho mỗi ý", "a) x"))
		assert.False(t, rs[1].Found)
	})
}

func TestParseRelationships(t *testing.T) {
	raw := []byte(`<Relationships>
<Relationship Target="media/image1.png" Type="image" Id="rId9"/>
<Relationship Id="rId2" Target="styles.xml"/>
<pr:Relationship Id="rId3" Target="../word/media/image2.emf"/>
<Relationship Id="rId9" Target="media/other.png"/>
</Relationships>`)
	m, ok := parseRelationships(raw)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"rId9": "image1.png", "rId3": "image2.emf"}, m.byID)
	assert.Equal(t, "rId9", m.firstIDFor("image1.png"))
	assert.Empty(t, m.firstIDFor("missing.png"))

	_, ok = parseRelationships([]byte(`<Relationships/>`))
	assert.False(t, ok)
}

func TestContentTypeFor(t *testing.T) {
	ct, ok := contentTypeFor("a.JPG")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)

	ct, ok = contentTypeFor("chart.emf")
	assert.False(t, ok)
	assert.Equal(t, "image/png", ct)
}

func TestExtractParagraphs(t *testing.T) {
	body := para("Câu ", "1", ". Nội dung") +
		`<w:p></w:p>` +
		`<w:p><w:r><w:instrText>PAGE</w:instrText></w:r><w:r><w:t>Trang</w:t></w:r></w:p>` +
		imagePara("", drawingRun("rId5"), drawingRun("rId5"), vmlRun("rId6")) +
		`<w:p><w:r><w:pict><v:shape><v:imagedata o:relid="rId8"/></v:shape></w:pict></w:r></w:p>` +
		`<w:p><w:r><w:t>Ngoài</w:t></w:r><w:r><w:txbxContent><w:p><w:r><w:t xml:space="preserve"> trong</w:t></w:r></w:p></w:txbxContent></w:r></w:p>`

	got, err := extractParagraphs([]byte(docHeader + body + docFooter))
	require.NoError(t, err)
	assert.Equal(t, []Paragraph{
		{Text: "Câu 1. Nội dung"},
		{Text: "Trang"},
		{ImageRefs: []string{"rId5", "rId6"}},
		{ImageRefs: []string{"rId8"}},
		{Text: "Ngoài trong"},
	}, got)
}

func TestDetectTimeLimit(t *testing.T) {
	assert.Equal(t, 45, detectTimeLimit(textParas("Thời gian: 45 phút", "Câu 1. x"), 90))
	assert.Equal(t, 60, detectTimeLimit(textParas("(Thời gian làm bài 60 phút, không kể thời gian phát đề)"), 90))
	assert.Equal(t, 90, detectTimeLimit(textParas("Câu 1. Một vật đi trong thời gian 30 phút"), 90))
}
