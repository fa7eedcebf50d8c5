package export

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

const (
	defaultFontSize = 14
	coreFont        = "Helvetica"
	customFont      = "Custom"
)

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	opts   Options
	client *http.Client

	defaultMargins Margins
}

type Margins struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func (m *Margins) GetMargins(pdf fpdf.Pdf) {
	m.Left, m.Top, m.Right, m.Bottom = pdf.GetMargins()
}

// ToPDF выгружает документ в PDF формата A4
func ToPDF(doc *edtypes.Document, out io.Writer, opts Options) error {
	pdf := fpdf.New("P", "mm", "A4", "")

	w := pdfWriter{
		pdf:    pdf,
		family: coreFont,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		opts:   opts,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	if opts.FontPath != "" {
		for _, style := range []string{"", "B", "I", "BI"} {
			pdf.AddUTF8Font(customFont, style, opts.FontPath)
		}
		w.family = customFont
		w.tr = cleanUnsupportedSymbols
	}
	w.defaultMargins.GetMargins(pdf)

	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.AddPage()

	for _, n := range doc.Children {
		w.writeBlock(n)
		w.resetMargins()
	}

	return pdf.Output(out)
}

func (w *pdfWriter) writeBlock(n edtypes.Node) {
	switch el := n.(type) {
	case *edtypes.Paragraph:
		w.writeInlineBlock(el.Content, el.Align, 0)
	case *edtypes.Heading:
		w.pdf.Ln(2)
		w.writeInlineBlock(el.Content, el.Align, 28-el.Level*2)
		w.pdf.Ln(1)
	case *edtypes.Blockquote:
		w.pdf.Ln(2)
		y1 := w.pdf.GetY()
		w.pdf.SetLeftMargin(w.defaultMargins.Left + 3)
		w.pdf.SetX(w.defaultMargins.Left + 3)
		w.writeInlineBlock(el.Content, el.Align, 0)

		w.pdf.SetLineWidth(0.5)
		w.pdf.SetDrawColor(74, 71, 82)
		w.pdf.Line(w.defaultMargins.Left+1, y1, w.defaultMargins.Left+1, w.pdf.GetY())
		w.pdf.Ln(2)
	case *edtypes.CodeBlock:
		w.pdf.SetFont("Courier", "", 11)
		w.pdf.SetTextColor(0, 0, 0)
		w.pdf.SetFillColor(245, 245, 245)
		_, s := w.pdf.GetFontSize()
		w.pdf.MultiCell(0, s+1, w.translate(edtypes.String(el)), "", "L", true)
		w.pdf.Ln(2)
	case *edtypes.BulletedList:
		w.writeList(el.Content, false)
	case *edtypes.NumberedList:
		w.writeList(el.Content, true)
	case *edtypes.Image:
		w.writeImage(el)
	case *edtypes.Video:
		title := el.Title
		if title == "" {
			title = el.URL
		}
		w.setFont(edtypes.Marks{Underline: true}, 0)
		w.pdf.SetTextColor(0, 0, 238)
		w.write(title, el.URL)
		w.pdf.Ln(-1)
	case *edtypes.Divider:
		w.pdf.Ln(3)
		pageW, _ := w.pdf.GetPageSize()
		w.pdf.SetLineWidth(0.2)
		w.pdf.SetDrawColor(200, 200, 200)
		w.pdf.Line(w.defaultMargins.Left, w.pdf.GetY(), pageW-w.defaultMargins.Right, w.pdf.GetY())
		w.pdf.Ln(3)
	case *edtypes.Table:
		w.writeTable(el)
	}
}

// writeInlineBlock пишет текстовый блок. Выровненный по центру или вправо блок пишется одной строкой
// стилем первого фрагмента, fpdf не выравнивает смешанные фрагменты.
func (w *pdfWriter) writeInlineBlock(content []edtypes.Node, align edtypes.TextAlign, size int) {
	if align == edtypes.CenterAlign || align == edtypes.RightAlign {
		marks := edtypes.Marks{}
		if t := firstText(content); t != nil {
			marks = t.Marks
		}
		w.setFont(marks, size)
		_, s := w.pdf.GetFontSize()
		alignStr := "C"
		if align == edtypes.RightAlign {
			alignStr = "R"
		}
		w.pdf.WriteAligned(0, s+0.1, w.translate(plainInline(content)), alignStr)
		w.pdf.Ln(-1)
		return
	}

	w.writeInlines(content, size, "")
	w.pdf.Ln(-1)
}

func (w *pdfWriter) writeInlines(content []edtypes.Node, size int, link string) {
	for _, n := range content {
		switch v := n.(type) {
		case *edtypes.Text:
			w.setFont(v.Marks, size)
			if link != "" {
				w.pdf.SetTextColor(0, 0, 238)
			}
			w.write(v.Text, link)
		case *edtypes.Link:
			w.writeInlines(v.Content, size, v.URL)
		}
	}
}

func (w *pdfWriter) writeList(items []edtypes.Node, numbered bool) {
	for i, item := range items {
		li, ok := item.(*edtypes.ListItem)
		if !ok {
			continue
		}
		w.setFont(edtypes.Marks{}, 0)
		w.pdf.SetX(w.defaultMargins.Left + 3)
		if numbered {
			w.write(fmt.Sprintf("%d.", i+1), "")
		} else {
			w.write("•", "")
		}
		w.pdf.SetLeftMargin(w.defaultMargins.Left + 8)
		w.pdf.SetX(w.defaultMargins.Left + 8)
		w.writeInlines(li.Content, 0, "")
		w.pdf.Ln(-1)
		w.resetMargins()
	}
}

func (w *pdfWriter) writeTable(t *edtypes.Table) {
	var rows [][]string
	cols := 0
	for _, r := range t.Content {
		row, ok := r.(*edtypes.TableRow)
		if !ok {
			continue
		}
		var cells []string
		for _, c := range row.Content {
			cells = append(cells, w.translate(edtypes.String(c)))
		}
		cols = max(cols, len(cells))
		rows = append(rows, cells)
	}
	if cols == 0 {
		return
	}

	w.setFont(edtypes.Marks{}, 12)
	_, fs := w.pdf.GetFontSize()
	lineH := fs * 1.4
	pageW, pageH := w.pdf.GetPageSize()
	colW := (pageW - w.defaultMargins.Left - w.defaultMargins.Right) / float64(cols)

	alignStr := "L"
	switch t.Align {
	case edtypes.CenterAlign:
		alignStr = "C"
	case edtypes.RightAlign:
		alignStr = "R"
	}

	w.pdf.SetDrawColor(0, 0, 0)
	w.pdf.SetLineWidth(0.2)
	for _, cells := range rows {
		lines := 1
		for _, c := range cells {
			lines = max(lines, len(w.pdf.SplitText(c, colW-2)))
		}
		height := float64(lines)*lineH + 2

		y := w.pdf.GetY()
		if y+height > pageH-w.defaultMargins.Bottom-10 {
			w.pdf.AddPage()
			y = w.pdf.GetY()
		}
		for j := 0; j < cols; j++ {
			x := w.defaultMargins.Left + float64(j)*colW
			w.pdf.Rect(x, y, colW, height, "D")
			if j < len(cells) {
				w.pdf.SetXY(x+1, y+1)
				w.pdf.MultiCell(colW-2, lineH, cells[j], "", alignStr, false)
			}
		}
		w.pdf.SetXY(w.defaultMargins.Left, y+height)
	}
	w.pdf.Ln(lineH)
}

func (w *pdfWriter) writeImage(img *edtypes.Image) {
	if w.opts.FetchImages && w.registerImage(img.URL) {
		pageW, _ := w.pdf.GetPageSize()
		width := pageW - w.defaultMargins.Left - w.defaultMargins.Right
		w.pdf.ImageOptions(img.URL, -1, -1, width, 0, true, fpdf.ImageOptions{ReadDpi: true}, 0, img.URL)
	} else {
		label := img.Alt
		if label == "" {
			label = img.URL
		}
		w.setFont(edtypes.Marks{Underline: true}, 0)
		w.pdf.SetTextColor(0, 0, 238)
		w.write("["+label+"]", img.URL)
		w.pdf.Ln(-1)
	}

	if img.Caption != "" {
		w.setFont(edtypes.Marks{Italic: true}, 11)
		_, s := w.pdf.GetFontSize()
		w.pdf.WriteAligned(0, s+0.1, w.translate(img.Caption), "C")
		w.pdf.Ln(-1)
	}
}

func (w *pdfWriter) registerImage(url string) bool {
	if w.pdf.GetImageInfo(url) != nil {
		return true
	}

	resp, err := w.client.Get(url)
	if err != nil {
		slog.Warn("Fetch image for PDF", "url", url, "err", err)
		return false
	}
	defer resp.Body.Close()

	options := fpdf.ImageOptions{ImageType: w.pdf.ImageTypeFromMime(resp.Header.Get("Content-Type")), ReadDpi: true}
	// неподдерживаемый тип изображения
	if options.ImageType == "" {
		w.pdf.ClearError()
		return false
	}

	return w.pdf.RegisterImageOptionsReader(url, options, resp.Body) != nil && w.pdf.Ok()
}

func (w *pdfWriter) setFont(m edtypes.Marks, size int) {
	style := ""
	if m.Bold {
		style += "B"
	}
	if m.Italic {
		style += "I"
	}
	if m.Underline && w.family == coreFont {
		style += "U"
	}
	if size == 0 {
		size = m.FontSize
	}
	if size == 0 {
		size = defaultFontSize
	}
	family := w.family
	if m.Code {
		family = "Courier"
	}
	w.pdf.SetFont(family, style, w.PxToUnit(size)*3)

	if m.Color != nil {
		w.pdf.SetTextColor(int(m.Color.R), int(m.Color.G), int(m.Color.B))
	} else {
		w.pdf.SetTextColor(0, 0, 0)
	}
}

func (w *pdfWriter) write(text, link string) {
	_, s := w.pdf.GetFontSize()
	w.pdf.WriteLinkString(s+0.1, w.translate(text), link)
}

func (w *pdfWriter) translate(s string) string {
	return w.tr(s)
}

func (w *pdfWriter) PxToUnit(px int) float64 {
	return w.pdf.PointConvert(float64(px) * 0.75)
}

func (w *pdfWriter) resetMargins() {
	w.pdf.SetMargins(w.defaultMargins.Left, w.defaultMargins.Top, w.defaultMargins.Right)
}

func firstText(nodes []edtypes.Node) *edtypes.Text {
	for _, n := range nodes {
		switch v := n.(type) {
		case *edtypes.Text:
			return v
		case *edtypes.Link:
			if t := firstText(v.Content); t != nil {
				return t
			}
		}
	}
	return nil
}

func plainInline(nodes []edtypes.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(edtypes.String(n))
	}
	return sb.String()
}

// cleanUnsupportedSymbols убирает символы вне BMP, fpdf их не поддерживает
func cleanUnsupportedSymbols(text string) string {
	var sb strings.Builder
	for _, s := range text {
		if s < 65536 {
			sb.WriteRune(s)
		}
	}
	return sb.String()
}
