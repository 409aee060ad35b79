package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_WritesFileAndReturnsPublicPath(t *testing.T) {
	saver := &Saver{Dir: t.TempDir()}

	url, err := saver.Save("photo.PNG", strings.NewReader("image bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	data, err := os.ReadFile(filepath.Join(saver.Dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))
}

func TestSave_DefaultsExtensionToJPG(t *testing.T) {
	saver := &Saver{Dir: t.TempDir()}

	url, err := saver.Save("noext", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)
}

func TestSave_UniqueNamesForSameOriginal(t *testing.T) {
	saver := &Saver{Dir: t.TempDir()}

	first, err := saver.Save("photo.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := saver.Save("photo.jpg", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSave_CreatesMissingDirectory(t *testing.T) {
	saver := &Saver{Dir: filepath.Join(t.TempDir(), "nested", "uploads")}

	_, err := saver.Save("photo.jpg", strings.NewReader("x"))
	require.NoError(t, err)
}
