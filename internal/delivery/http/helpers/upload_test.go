package helpers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/tickets/scan", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestSaveUploadedFile(t *testing.T) {
	t.Run("writes the upload under dir with the original extension", func(t *testing.T) {
		dir := t.TempDir()
		req := multipartRequest(t, "ticket", "scan.png", []byte("image-bytes"))

		path, err := SaveUploadedFile(req, "ticket", dir)
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(path))
		assert.True(t, strings.HasSuffix(path, ".png"))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("image-bytes"), content)
	})

	t.Run("distinct uploads get distinct names", func(t *testing.T) {
		dir := t.TempDir()
		first, err := SaveUploadedFile(multipartRequest(t, "ticket", "a.png", []byte("a")), "ticket", dir)
		require.NoError(t, err)
		second, err := SaveUploadedFile(multipartRequest(t, "ticket", "a.png", []byte("b")), "ticket", dir)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("missing field", func(t *testing.T) {
		req := multipartRequest(t, "other", "scan.png", []byte("image-bytes"))
		_, err := SaveUploadedFile(req, "ticket", t.TempDir())
		require.Error(t, err)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tickets/scan", strings.NewReader("plain body"))
		_, err := SaveUploadedFile(req, "ticket", t.TempDir())
		require.Error(t, err)
	})
}
