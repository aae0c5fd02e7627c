package storage

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real multipart.FileHeader by round-tripping a request.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveAndRemove(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root, "http://localhost:8080/", 1<<20)

	url, err := l.Save(fileHeader(t, "Gauge.PNG", []byte("png-bytes")), KindProductImage)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/products/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	onDisk := filepath.Join(root, "products", filepath.Base(url))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, l.Remove(url))
	_, err = os.Stat(onDisk)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// removing twice is fine
	assert.NoError(t, l.Remove(url))
}

func TestSaveRejectsWrongTypeAndSize(t *testing.T) {
	l := NewLocal(t.TempDir(), "", 4)

	_, err := l.Save(fileHeader(t, "cv.exe", []byte("x")), KindResume)
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = l.Save(fileHeader(t, "cv.pdf", []byte("too large")), KindResume)
	assert.True(t, errors.Is(err, ErrTooLarge))

	url, err := l.Save(fileHeader(t, "cv.docx", []byte("ok")), KindResume)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/resumes/"), url)
}

func TestRemoveIgnoresForeignPaths(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))

	l := NewLocal(root, "", 0)
	assert.NoError(t, l.Remove("https://cdn.example.com/a.jpg"))
	assert.NoError(t, l.Remove("/uploads/../../"+filepath.Base(outside)))

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}
