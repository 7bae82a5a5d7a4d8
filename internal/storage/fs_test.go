package storage

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStorePutGet(t *testing.T) {
	s, err := NewFSStore(t.TempDir(), WithPublicURL("/assets/"))
	require.NoError(t, err)

	key := MediaKey("e1", "word/media/image1.png")
	assert.Equal(t, "exams/e1/media/image1.png", key)

	got, err := s.Put(key, strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	rc, err := s.Get(key)
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "png-bytes", string(b))

	u, err := s.SignedURL(key)
	require.NoError(t, err)
	assert.Equal(t, "/assets/exams/e1/media/image1.png", u)

	require.NoError(t, s.DeletePrefix(ExamPrefix("e1")))
	_, err = s.Get(key)
	assert.True(t, os.IsNotExist(err))
}

func TestFSStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, k := range []string{"", "/etc/passwd", "../x", "a/../../x", `..\x`} {
		_, err := s.Put(k, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrBadKey, k)
		_, err = s.Get(k)
		assert.ErrorIs(t, err, ErrBadKey, k)
	}

	u, err := s.SignedURL("exams/e1/media/a.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file://"), u)
}
