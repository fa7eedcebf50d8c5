// Пакет export выгружает документ richdoc в Slate JSON, Markdown, HTML и PDF.
//
// Основные возможности:
//   - Markdown через nao1215/markdown: заголовки, списки, цитаты, код, таблицы, ссылки и изображения.
//   - HTML-страница из встроенного шаблона, очищенная политикой импорта и сжатая minify.
//   - PDF через fpdf со стилями текста, цветом, выравниванием, списками и таблицами.
package export

import (
	"io"
	"strings"

	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/slatejson"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

var Formats = []Format{FormatJSON, FormatMarkdown, FormatHTML, FormatPDF}

// Options - параметры выгрузки
type Options struct {
	Title string

	// FontPath - TTF шрифт с нужными глифами для PDF. Без него используется Helvetica (только cp1252).
	FontPath string
	// FetchImages загружает изображения по адресу для вставки в PDF
	FetchImages bool
}

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))); f {
	case FormatJSON, FormatMarkdown, FormatHTML, FormatPDF:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	}
	return "", apierrors.ErrUnsupportedExport.WithFormattedMessage(raw)
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Export пишет документ в out в указанном формате
func Export(doc *edtypes.Document, format Format, out io.Writer, opts Options) error {
	switch format {
	case FormatJSON:
		data, err := slatejson.Serialize(doc)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case FormatMarkdown:
		return ToMarkdown(doc, out)
	case FormatHTML:
		return ToHTML(doc, opts.Title, out)
	case FormatPDF:
		return ToPDF(doc, out, opts)
	}
	return apierrors.ErrUnsupportedExport.WithFormattedMessage(string(format))
}
