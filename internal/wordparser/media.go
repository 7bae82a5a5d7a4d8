package wordparser

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/mind-engage/examportal/internal/exam"
)

var contentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
}

const defaultContentType = "image/png"

// contentTypeFor infers a MIME type from the file extension. Unknown
// extensions fall back to image/png.
func contentTypeFor(filename string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ct, ok := contentTypes[ext]; ok {
		return ct, true
	}
	return defaultContentType, false
}

// Attribute order inside <Relationship> varies between producers, so each
// element is scanned for Id and Target independently.
var (
	relElementPattern = regexp.MustCompile(`<(?:\w+:)?Relationship\b[^>]*>`)
	relAttrPattern    = regexp.MustCompile(`\b(Id|Target)\s*=\s*"([^"]*)"`)
)

type relationship struct {
	id       string
	filename string
}

// relMap maps relationship ids to media filenames, in document order.
type relMap struct {
	order []relationship
	byID  map[string]string
}

// parseRelationships reads the media relationships out of
// word/_rels/document.xml.rels. ok is false when the part holds no
// Relationship elements at all.
func parseRelationships(raw []byte) (m relMap, ok bool) {
	m.byID = map[string]string{}
	elems := relElementPattern.FindAll(raw, -1)
	if len(elems) == 0 {
		return m, false
	}
	for _, el := range elems {
		var id, target string
		for _, a := range relAttrPattern.FindAllSubmatch(el, -1) {
			switch string(a[1]) {
			case "Id":
				id = string(a[2])
			case "Target":
				target = string(a[2])
			}
		}
		if id == "" || !strings.Contains(target, "media/") {
			continue
		}
		name := path.Base(target)
		if _, dup := m.byID[id]; dup {
			continue
		}
		m.byID[id] = name
		m.order = append(m.order, relationship{id: id, filename: name})
	}
	return m, true
}

// firstIDFor returns the first relationship id bound to filename.
func (m relMap) firstIDFor(filename string) string {
	for _, r := range m.order {
		if r.filename == filename {
			return r.id
		}
	}
	return ""
}

// extractMedia reads every word/media entry, whether or not a relationship
// points at it.
func extractMedia(a *archive, rels relMap, warn *warnings) ([]exam.MediaAsset, error) {
	images := make([]exam.MediaAsset, 0, len(a.media))
	for _, f := range a.media {
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		filename := path.Base(f.Name)
		ct, known := contentTypeFor(filename)
		if !known {
			warn.add(StageMedia, "unrecognized image extension for %s, assuming %s", filename, ct)
		}
		images = append(images, exam.MediaAsset{
			ID:             fmt.Sprintf("img_%d", len(images)),
			Filename:       filename,
			Data:           data,
			ContentType:    ct,
			RelationshipID: rels.firstIDFor(filename),
		})
	}
	return images, nil
}

// imageResolver turns paragraph image references back into assets.
type imageResolver struct {
	rels   relMap
	assets []*exam.MediaAsset
	byFile map[string]*exam.MediaAsset
	byRel  map[string]*exam.MediaAsset
}

// newImageResolver indexes images in place; the returned pointers alias the slice.
func newImageResolver(images []exam.MediaAsset, rels relMap) *imageResolver {
	r := &imageResolver{
		rels:   rels,
		byFile: make(map[string]*exam.MediaAsset, len(images)),
		byRel:  make(map[string]*exam.MediaAsset, len(images)),
	}
	for i := range images {
		img := &images[i]
		r.assets = append(r.assets, img)
		r.byFile[img.Filename] = img
		if img.RelationshipID != "" {
			r.byRel[img.RelationshipID] = img
		}
	}
	return r
}

func (r *imageResolver) resolve(rID string) *exam.MediaAsset {
	if name, ok := r.rels.byID[rID]; ok {
		if img := r.byFile[name]; img != nil {
			return img
		}
	}
	if img := r.byRel[rID]; img != nil {
		return img
	}
	// Some producers embed the media filename in the reference itself.
	for _, img := range r.assets {
		if img.Filename != "" && strings.Contains(rID, img.Filename) {
			return img
		}
	}
	return nil
}
