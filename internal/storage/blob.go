package storage

import (
	"errors"
	"io"
	"path"
	"strings"
)

var ErrBadKey = errors.New("invalid blob key")

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	SignedURL(key string) (string, error) // fs returns the public /assets path, or "file://..." for dev
	// DeletePrefix removes every blob under prefix.
	DeletePrefix(prefix string) error
}

// MediaKey is where an imported exam's picture lives.
func MediaKey(examID, filename string) string {
	return path.Join("exams", examID, "media", path.Base(filename))
}

// ExamPrefix holds every blob of one exam.
func ExamPrefix(examID string) string {
	return path.Join("exams", examID) + "/"
}

// cleanKey rejects absolute keys and keys escaping the store root.
func cleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, `\`, "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrBadKey
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrBadKey
	}
	return c, nil
}
