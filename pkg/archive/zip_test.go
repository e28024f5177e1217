package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleRoundTrip(t *testing.T) {
	files := []File{
		{Name: "Asha_Rao_DLWD1RV21IS002MAR24.pdf", Data: []byte("%PDF-1.3 first")},
		{Name: "Ravi_Kumar_DLPY1RV21CS001MAR24.pdf", Data: []byte("%PDF-1.3 second")},
	}

	data, err := Bundle(files)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, r.File, 2)

	for i, entry := range r.File {
		assert.Equal(t, files[i].Name, entry.Name)
		rc, err := entry.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		assert.Equal(t, files[i].Data, content)
	}
}

func TestBundleEmpty(t *testing.T) {
	data, err := Bundle(nil)
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Empty(t, r.File)
}
