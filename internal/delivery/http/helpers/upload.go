package helpers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// maxUploadSize caps multipart uploads for the scan endpoint.
const maxUploadSize = 10 << 20 // 10 MiB

// SaveUploadedFile reads the named multipart file field from the request and
// writes it to a uniquely named file under dir. The caller owns the returned
// path and is responsible for deleting it.
func SaveUploadedFile(r *http.Request, field, dir string) (string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", fmt.Errorf("parse multipart form: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing file field %q: %w", field, err)
	}
	defer file.Close()

	path := filepath.Join(dir, uuid.NewString()+filepath.Ext(header.Filename))
	if err := writeFile(path, file); err != nil {
		return "", err
	}
	return path, nil
}

func writeFile(path string, src multipart.File) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return fmt.Errorf("write upload file: %w", err)
	}
	return nil
}
