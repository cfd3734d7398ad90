package collector

import (
	"bytes"
	"strings"
	"testing"

	"paperforge/internal/domain"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildPDF produces a document with one page per entry of pageTexts.
func buildPDF(t *testing.T, pageTexts []string) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pageTexts {
		doc.AddPage()
		doc.MultiCell(180, 6, text, "", "L", false)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

const questionText = "Q1. A ball is thrown vertically upward with an initial velocity of 20 m/s. " +
	"Calculate the maximum height reached. Take g as 9.8 m/s2."

func TestExtractEmitsOneChunkPerContentPage(t *testing.T) {
	c := NewPDFCollector(zap.NewNop())
	data := buildPDF(t, []string{questionText, questionText + " Q2. Repeat for 30 m/s."})

	chunks, err := c.Extract(data, "mechanics.pdf")

	require.NoError(t, err)
	require.Len(t, chunks, 2)

	first := chunks[0]
	assert.Equal(t, domain.ChunkPending, first.Status)
	assert.Equal(t, domain.SourcePDF, first.SourceType)
	assert.Equal(t, "mechanics.pdf", first.SourceName)
	assert.Equal(t, "Page 1", first.SourceRef)
	assert.NotEmpty(t, first.ID)
	assert.Contains(t, first.Text, "vertically upward")

	assert.Equal(t, "Page 2", chunks[1].SourceRef)
}

func TestExtractSkipsLowContentPages(t *testing.T) {
	c := NewPDFCollector(zap.NewNop())
	data := buildPDF(t, []string{"Cover", questionText})

	chunks, err := c.Extract(data, "booklet.pdf")

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	// Page numbering reflects the document, not the chunk index.
	assert.Equal(t, "Page 2", chunks[0].SourceRef)
}

func TestExtractRejectsGarbageInput(t *testing.T) {
	c := NewPDFCollector(zap.NewNop())

	_, err := c.Extract([]byte(strings.Repeat("not a pdf ", 50)), "junk.pdf")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}
