package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/post", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}

func TestStore_StageCommit(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	staged, err := store.Stage(multipartFile(t, "photo.PNG", []byte("image-bytes")))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(staged.Path(), URLPrefix+"/"))
	assert.True(t, strings.HasSuffix(staged.Path(), ".png"))
	assert.False(t, strings.Contains(staged.Path(), stageSuffix))

	// before commit only the .part file exists
	name := filepath.Base(staged.Path())
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(store.Dir(), name+stageSuffix))
	assert.NoError(t, err)

	require.NoError(t, staged.Commit())

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestStore_Discard(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	staged, err := store.Stage(multipartFile(t, "photo.png", []byte("x")))
	require.NoError(t, err)
	require.NoError(t, staged.Discard())

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSanitizeExt(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"photo.png", ".png"},
		{"photo.PNG", ".png"},
		{"archive.tar.gz", ".gz"},
		{"noextension", ""},
		{"trailingdot.", ""},
		{"../../etc/passwd", ""},
		{"evil.p/ng", ""},
		{"spaces.p g", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeExt(tt.filename))
		})
	}
}

func TestStore_SweepRemovesStaleStagedFiles(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	stale := filepath.Join(store.Dir(), "stale.png"+stageSuffix)
	fresh := filepath.Join(store.Dir(), "fresh.png"+stageSuffix)
	committed := filepath.Join(store.Dir(), "committed.png")
	for _, path := range []string{stale, fresh, committed} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	old := time.Now().Add(-2 * stagedMaxAge)
	require.NoError(t, os.Chtimes(stale, old, old))

	store.sweepOnce(time.Now())

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(committed)
	assert.NoError(t, err)
}
