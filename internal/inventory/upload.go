package inventory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UploadPrefix is the public path prefix stored in invoice_file.
const UploadPrefix = "uploads/"

// SaveUpload writes an uploaded file into dir as "<unix-millis>-<basename>" and returns the
// value to store in invoice_file.
func SaveUpload(dir, filename string, src io.Reader, now time.Time) (string, error) {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("invalid upload file name %q", filename)
	}
	name := fmt.Sprintf("%d-%s", now.UnixMilli(), base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return UploadPrefix + name, nil
}
