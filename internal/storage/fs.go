package storage

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type FSStore struct {
	base      string
	publicURL string // e.g. "/assets"; empty means file:// URLs
}

type FSOption func(*FSStore)

// WithPublicURL makes SignedURL return publicURL + "/" + key, for blobs
// served over HTTP.
func WithPublicURL(prefix string) FSOption {
	return func(s *FSStore) { s.publicURL = strings.TrimSuffix(prefix, "/") }
}

func NewFSStore(base string, opts ...FSOption) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	s := &FSStore{base: base}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *FSStore) path(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.base, filepath.FromSlash(k)), nil
}

func (s *FSStore) Put(key string, r io.Reader) (string, error) {
	dst, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return cleanKey(key)
}

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (s *FSStore) SignedURL(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if s.publicURL != "" {
		return s.publicURL + "/" + k, nil
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(s.base, k))}
	return u.String(), nil
}

func (s *FSStore) DeletePrefix(prefix string) error {
	p, err := s.path(prefix)
	if err != nil {
		return err
	}
	return os.RemoveAll(p)
}
