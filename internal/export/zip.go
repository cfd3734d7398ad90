package export

import (
	"archive/zip"
	"bytes"
	"time"

	"paperforge/internal/domain"
)

// File is a named payload destined for an archive or a download response.
type File struct {
	Name    string
	Content []byte
}

// ArchiveName returns the canonical bulk archive file name for a given day.
func ArchiveName(t time.Time) string {
	return "Bulk_Question_Papers_" + t.Format("2006-01-02") + ".zip"
}

// BuildZip packs the given files into a single zip archive.
func BuildZip(files []File) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			zw.Close()
			return nil, domain.NewRenderError("failed to add "+f.Name+" to archive", err)
		}
		if _, err := w.Write(f.Content); err != nil {
			zw.Close()
			return nil, domain.NewRenderError("failed to write "+f.Name+" to archive", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, domain.NewRenderError("failed to finalize archive", err)
	}
	return buf.Bytes(), nil
}
