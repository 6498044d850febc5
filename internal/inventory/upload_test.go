package inventory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	now := time.UnixMilli(1717236000123)

	stored, err := SaveUpload(dir, `C:\scans\invoice 12.pdf`, strings.NewReader("pdf"), now)
	require.NoError(t, err)
	assert.Equal(t, "uploads/1717236000123-invoice 12.pdf", stored)

	b, err := os.ReadFile(filepath.Join(dir, "1717236000123-invoice 12.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(b))
}

func TestSaveUpload_RejectsEmptyName(t *testing.T) {
	_, err := SaveUpload(t.TempDir(), "", strings.NewReader("x"), time.Now())
	assert.Error(t, err)
}
