package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"paperforge/internal/bank"
	"paperforge/internal/domain"
)

// BankCSV serializes the question bank for spreadsheet review. One row per
// question, options flattened into separate columns.
func BankCSV(questions []domain.Question) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"qid", "question", "a", "b", "c", "d", "source_type", "source_name", "page_or_url"}
	if err := w.Write(header); err != nil {
		return nil, domain.NewRenderError("failed to write csv header", err)
	}
	for _, q := range questions {
		row := []string{
			q.ID,
			q.Prompt,
			q.Options.A,
			q.Options.B,
			q.Options.C,
			q.Options.D,
			string(q.SourceType),
			q.SourceName,
			q.SourceRef,
		}
		if err := w.Write(row); err != nil {
			return nil, domain.NewRenderError("failed to write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, domain.NewRenderError("failed to flush csv", err)
	}
	return buf.Bytes(), nil
}

// RunLogCSV serializes pipeline log entries for download.
func RunLogCSV(entries []bank.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"seq", "timestamp", "level", "source", "message"}); err != nil {
		return nil, domain.NewRenderError("failed to write csv header", err)
	}
	for i, e := range entries {
		row := []string{
			strconv.Itoa(i + 1),
			e.Timestamp.Format("2006-01-02 15:04:05"),
			string(e.Level),
			e.Source,
			e.Message,
		}
		if err := w.Write(row); err != nil {
			return nil, domain.NewRenderError("failed to write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, domain.NewRenderError("failed to flush csv", err)
	}
	return buf.Bytes(), nil
}
