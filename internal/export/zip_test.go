package export

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildZipRoundTrip(t *testing.T) {
	files := []File{
		{Name: "GATE_CSE_QP.pdf", Content: []byte("%PDF-qp")},
		{Name: "GATE_CSE_SOL.pdf", Content: []byte("%PDF-sol")},
	}

	archive, err := BuildZip(files)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	for i, f := range zr.File {
		assert.Equal(t, files[i].Name, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		assert.Equal(t, files[i].Content, content)
	}
}

func TestBuildZipEmptyInputIsValidArchive(t *testing.T) {
	archive, err := BuildZip(nil)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}

func TestArchiveNameCarriesGenerationDate(t *testing.T) {
	at := time.Date(2026, 2, 7, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, "Bulk_Question_Papers_2026-02-07.zip", ArchiveName(at))
}
