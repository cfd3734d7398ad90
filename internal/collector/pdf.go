package collector

import (
	"bytes"
	"fmt"
	"strings"

	"paperforge/internal/domain"
	"paperforge/internal/util"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Pages shorter than this carry no extractable questions and are skipped.
const minPageChars = 50

// PDFCollector turns uploaded PDF bytes into per-page raw chunks.
type PDFCollector struct {
	logger *zap.Logger
}

func NewPDFCollector(logger *zap.Logger) *PDFCollector {
	return &PDFCollector{logger: logger}
}

// Extract reads every page of the document and emits one pending chunk per
// page with enough text. Individual page failures are logged and skipped;
// only an unreadable document is an error.
func (c *PDFCollector) Extract(data []byte, fileName string) ([]domain.RawChunk, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("could not read PDF %s: %v", fileName, err))
	}

	totalPages := reader.NumPage()
	c.logger.Info("PDF loaded",
		zap.String("file_name", fileName),
		zap.Int("pages", totalPages))

	var chunks []domain.RawChunk
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			c.logger.Error("Error extracting page",
				zap.String("file_name", fileName),
				zap.Int("page", i),
				zap.Error(err))
			continue
		}

		text = strings.TrimSpace(text)
		if len(text) <= minPageChars {
			c.logger.Warn("Skipping empty/low-content page",
				zap.String("file_name", fileName),
				zap.Int("page", i))
			continue
		}

		chunks = append(chunks, domain.RawChunk{
			ID:         util.NewULID(),
			Text:       text,
			SourceType: domain.SourcePDF,
			SourceName: fileName,
			SourceRef:  fmt.Sprintf("Page %d", i),
			Status:     domain.ChunkPending,
		})
	}

	c.logger.Info("Finished PDF extraction",
		zap.String("file_name", fileName),
		zap.Int("chunks", len(chunks)))
	return chunks, nil
}
