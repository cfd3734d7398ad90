package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"paperforge/internal/domain"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	pageMargin = 15.0
	// Pixel width handed to the raster renderer; chosen so text wrapping in
	// the raster block roughly matches the PDF content width.
	richWidthPx = 700

	questionBreakY = 230.0
	optionBreakY   = 270.0
	sectionBreakY  = 250.0
)

// PDFRenderer assembles question papers and solution keys. Rich content
// (math markup, embedded images) goes through the raster renderer when one
// is available; malformed or unrenderable content degrades to wrapped
// plain text instead of aborting the document.
type PDFRenderer struct {
	rich    domain.RichContentRenderer
	brand   string
	tagline string
	logger  *zap.Logger
}

func NewPDFRenderer(rich domain.RichContentRenderer, brand, tagline string, logger *zap.Logger) *PDFRenderer {
	return &PDFRenderer{rich: rich, brand: brand, tagline: tagline, logger: logger}
}

// RenderPaper produces the question paper: branding header, title and
// section summary table, instruction block, then one banner plus numbered
// entries per section, paginated dynamically.
func (r *PDFRenderer) RenderPaper(ctx context.Context, sel domain.Selection, cfg domain.PaperConfig) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, pageMargin)
	doc.AddPage()

	pageWidth, _ := doc.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	r.drawHeader(doc, pageWidth)

	y := 50.0
	doc.SetTextColor(0, 0, 0)
	r.centerText(doc, pageWidth, "MODEL QUESTION PAPER: "+strings.ToUpper(cfg.SubjectName), y, 16, "B")
	y += 10
	r.centerText(doc, pageWidth, fmt.Sprintf("Duration: %d Minutes", cfg.DurationMins), y, 12, "")
	y += 12

	y = r.drawSummaryTable(doc, cfg, y, contentWidth)
	y = r.drawInstructions(doc, y)

	// Questions always start on a fresh page.
	doc.AddPage()
	y = 20

	qNum := 0
	for secIdx, secSel := range sel.Sections {
		if y > sectionBreakY {
			doc.AddPage()
			y = 20
		}
		y = r.drawSectionBanner(doc, secIdx, secSel.Section, y, contentWidth)

		for _, q := range secSel.Questions {
			qNum++
			if y > questionBreakY {
				doc.AddPage()
				y = 20
			}
			y = r.drawQuestion(ctx, doc, q, qNum, y, contentWidth)
		}
	}

	return r.output(doc, "question paper")
}

// RenderSolutions produces the key + solutions document: one table row per
// question in selection order.
func (r *PDFRenderer) RenderSolutions(ctx context.Context, sel domain.Selection, cfg domain.PaperConfig) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()

	pageWidth, _ := doc.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	r.drawHeader(doc, pageWidth)

	y := 50.0
	doc.SetTextColor(0, 0, 0)
	r.centerText(doc, pageWidth, "KEY & SOLUTIONS: "+strings.ToUpper(cfg.SubjectName), y, 16, "B")
	y += 15

	widths := []float64{15, 15, 25, contentWidth - 55}
	headers := []string{"Q.No", "Type", "Answer Key", "Explanation / Solution"}

	doc.SetY(y)
	doc.SetX(pageMargin)
	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(0, 102, 204)
	doc.SetTextColor(255, 255, 255)
	for i, h := range headers {
		doc.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(0, 0, 0)
	for idx, q := range sel.Flatten() {
		answer := q.Answer
		if answer == "" {
			answer = "N/A"
		}
		explanation := q.Explanation
		if explanation == "" {
			explanation = "No explanation provided."
		}
		fill := idx%2 == 1
		doc.SetFillColor(235, 240, 248)
		doc.SetX(pageMargin)
		doc.CellFormat(widths[0], 7, fmt.Sprintf("%d", idx+1), "1", 0, "C", fill, 0, "")
		doc.CellFormat(widths[1], 7, string(q.Kind), "1", 0, "C", fill, 0, "")
		doc.CellFormat(widths[2], 7, truncate(flattenMarkup(answer), 18), "1", 0, "C", fill, 0, "")
		doc.CellFormat(widths[3], 7, truncate(flattenMarkup(explanation), 100), "1", 1, "L", fill, 0, "")
	}

	return r.output(doc, "solutions")
}

func (r *PDFRenderer) drawHeader(doc *fpdf.Fpdf, pageWidth float64) {
	doc.SetFont("Helvetica", "B", 22)
	doc.SetTextColor(0, 102, 204)
	doc.Text(pageMargin, 25, r.brand)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(80, 80, 80)
	doc.Text(pageMargin, 30, r.tagline)

	doc.SetDrawColor(0, 0, 0)
	doc.SetLineWidth(0.5)
	doc.Line(pageMargin, 35, pageWidth-pageMargin, 35)
}

func (r *PDFRenderer) centerText(doc *fpdf.Fpdf, pageWidth float64, text string, y, size float64, style string) {
	doc.SetFont("Helvetica", style, size)
	w := doc.GetStringWidth(text)
	doc.Text((pageWidth-w)/2, y, text)
}

func (r *PDFRenderer) drawSummaryTable(doc *fpdf.Fpdf, cfg domain.PaperConfig, y, contentWidth float64) float64 {
	headers := []string{"Section Type", "No. of Questions", "Marks / Q", "Negative Marks", "Total Marks"}
	colWidth := contentWidth / float64(len(headers))

	doc.SetY(y)
	doc.SetX(pageMargin)
	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(0, 102, 204)
	doc.SetTextColor(255, 255, 255)
	for _, h := range headers {
		doc.CellFormat(colWidth, 8, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	for _, sec := range cfg.Sections {
		doc.SetX(pageMargin)
		doc.CellFormat(colWidth, 7, string(sec.Kind), "1", 0, "C", false, 0, "")
		doc.CellFormat(colWidth, 7, fmt.Sprintf("%d", sec.Count), "1", 0, "C", false, 0, "")
		doc.CellFormat(colWidth, 7, fmt.Sprintf("%d", sec.MarksPerQuestion), "1", 0, "C", false, 0, "")
		doc.CellFormat(colWidth, 7, fmt.Sprintf("%g", sec.NegativeMarks), "1", 0, "C", false, 0, "")
		doc.CellFormat(colWidth, 7, fmt.Sprintf("%d", sec.TotalMarks()), "1", 1, "C", false, 0, "")
	}

	doc.SetFont("Helvetica", "B", 10)
	doc.SetX(pageMargin)
	doc.CellFormat(colWidth, 7, "TOTAL", "1", 0, "C", false, 0, "")
	doc.CellFormat(colWidth, 7, fmt.Sprintf("%d", cfg.TotalQuestions()), "1", 0, "C", false, 0, "")
	doc.CellFormat(colWidth, 7, "-", "1", 0, "C", false, 0, "")
	doc.CellFormat(colWidth, 7, "-", "1", 0, "C", false, 0, "")
	doc.CellFormat(colWidth, 7, fmt.Sprintf("%d", cfg.TotalMarks()), "1", 1, "C", false, 0, "")

	return doc.GetY() + 12
}

func (r *PDFRenderer) drawInstructions(doc *fpdf.Fpdf, y float64) float64 {
	doc.SetFont("Helvetica", "B", 11)
	doc.Text(pageMargin, y, "INSTRUCTIONS:")
	y += 7

	doc.SetFont("Helvetica", "", 10)
	instructions := []string{
		"1. This question paper contains multiple sections as detailed above.",
		"2. NAT questions require a specific numerical value.",
		"3. MSQ may have one or more correct options.",
		"4. Diagrams are included where necessary.",
		"5. Answer every question in the space or sheet provided.",
	}
	for _, inst := range instructions {
		doc.Text(pageMargin, y, inst)
		y += 6
	}
	return y
}

func (r *PDFRenderer) drawSectionBanner(doc *fpdf.Fpdf, secIdx int, sec domain.Section, y, contentWidth float64) float64 {
	doc.SetFillColor(240, 240, 240)
	doc.Rect(pageMargin, y-5, contentWidth, 10, "F")
	doc.SetFont("Helvetica", "B", 11)
	doc.SetTextColor(0, 0, 0)
	doc.Text(pageMargin+2, y+1,
		fmt.Sprintf("SECTION %d: %s (%d Marks)", secIdx+1, sec.Kind, sec.MarksPerQuestion))
	return y + 15
}

func (r *PDFRenderer) drawQuestion(ctx context.Context, doc *fpdf.Fpdf, q domain.Question, qNum int, y, contentWidth float64) float64 {
	doc.SetFont("Helvetica", "B", 10)
	doc.Text(pageMargin, y, fmt.Sprintf("Q.%d", qNum))

	y = r.drawRichOrPlain(ctx, doc, questionMarkup(q), y, contentWidth, pageMargin+10)

	if q.Kind == domain.KindNAT {
		if y > optionBreakY-10 {
			doc.AddPage()
			y = 20
		}
		doc.SetFont("Helvetica", "", 10)
		doc.SetDrawColor(150, 150, 150)
		doc.Text(pageMargin+12, y+5, "Answer:")
		doc.Rect(pageMargin+30, y, 40, 8, "D")
		doc.SetDrawColor(0, 0, 0)
		return y + 20
	}

	for _, opt := range q.Options.Labeled() {
		if y > optionBreakY {
			doc.AddPage()
			y = 20
		}
		y = r.drawRichOrPlain(ctx, doc, opt.Label+") "+opt.Text, y, contentWidth, pageMargin+12)
	}
	return y + 10
}

// drawRichOrPlain places one content block, going through the raster
// renderer for rich markup and falling back to wrapped plain text when the
// renderer is unavailable or fails.
func (r *PDFRenderer) drawRichOrPlain(ctx context.Context, doc *fpdf.Fpdf, markup string, y, contentWidth, textX float64) float64 {
	if HasRichContent(markup) && r.rich != nil {
		img, err := r.rich.Render(ctx, markup, richWidthPx)
		if err != nil {
			r.logger.Warn("Rich content render failed, using plain text", zap.Error(err))
		} else if img != nil {
			newY, embErr := r.embedImage(doc, img, y, contentWidth)
			if embErr == nil {
				return newY
			}
			r.logger.Warn("Image embed failed, using plain text", zap.Error(embErr))
		}
	}

	doc.SetFont("Helvetica", "", 10)
	lines := doc.SplitText(flattenMarkup(markup), contentWidth-15)
	for _, line := range lines {
		doc.Text(textX, y, line)
		y += 5
	}
	return y + 3
}

func (r *PDFRenderer) embedImage(doc *fpdf.Fpdf, img image.Image, y, contentWidth float64) (float64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return y, err
	}

	b := img.Bounds()
	displayWidth := contentWidth - 10
	displayHeight := displayWidth * float64(b.Dy()) / float64(b.Dx())

	if y+displayHeight > optionBreakY {
		doc.AddPage()
		y = 20
	}

	name := fmt.Sprintf("block-%d-%d", doc.PageNo(), int(y*10))
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(name, opts, &buf)
	doc.ImageOptions(name, pageMargin+8, y-4, displayWidth, displayHeight, false, opts, 0, "")
	return y + displayHeight + 5, nil
}

func (r *PDFRenderer) output(doc *fpdf.Fpdf, what string) ([]byte, error) {
	if doc.Err() {
		return nil, domain.NewRenderError(what+" assembly failed", doc.Error())
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, domain.NewRenderError(what+" output failed", err)
	}
	return buf.Bytes(), nil
}

// questionMarkup appends a direct image reference to the prompt so the
// raster renderer lays the diagram out under the question text.
func questionMarkup(q domain.Question) string {
	if q.ImageURL == "" {
		return q.Prompt
	}
	return q.Prompt + "\n![diagram](" + q.ImageURL + ")"
}
