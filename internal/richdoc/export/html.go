package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	policy "github.com/aisa-it/richdoc/internal/richdoc/redactor-policy"
	"github.com/tdewolff/minify/v2"
	minifyHTML "github.com/tdewolff/minify/v2/html"
)

//go:embed templates/document.html
var documentTemplateRaw string

var (
	documentTemplate = template.Must(template.New("document").Parse(documentTemplateRaw))
	minifier         = minify.New()
)

func init() {
	minifier.AddFunc("text/html", minifyHTML.Minify)
}

// ToHTML выгружает документ HTML страницей. Тело очищается политикой импорта, страница сжимается.
func ToHTML(doc *edtypes.Document, title string, out io.Writer) error {
	if title == "" {
		title = "richdoc"
	}

	var page bytes.Buffer
	if err := documentTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(policy.Sanitize(RenderHTML(doc))),
	}); err != nil {
		return err
	}

	return minifier.Minify("text/html", out, &page)
}

// RenderHTML возвращает HTML фрагмент документа без очистки и сжатия
func RenderHTML(doc *edtypes.Document) string {
	var sb strings.Builder
	for _, n := range doc.Children {
		writeHTMLBlock(&sb, n)
	}
	return sb.String()
}

func writeHTMLBlock(sb *strings.Builder, n edtypes.Node) {
	switch el := n.(type) {
	case *edtypes.Paragraph:
		writeTag(sb, "p", el.Align, el.Content)
	case *edtypes.Heading:
		writeTag(sb, fmt.Sprintf("h%d", el.Level), el.Align, el.Content)
	case *edtypes.Blockquote:
		writeTag(sb, "blockquote", el.Align, el.Content)
	case *edtypes.CodeBlock:
		sb.WriteString("<pre" + alignAttr(el.Align) + "><code>")
		sb.WriteString(html.EscapeString(edtypes.String(el)))
		sb.WriteString("</code></pre>")
	case *edtypes.BulletedList:
		writeList(sb, "ul", el.Align, el.Content)
	case *edtypes.NumberedList:
		writeList(sb, "ol", el.Align, el.Content)
	case *edtypes.Image:
		sb.WriteString("<figure>")
		fmt.Fprintf(sb, `<img src="%s" alt="%s"%s>`, html.EscapeString(el.URL), html.EscapeString(el.Alt), alignAttr(el.Align))
		if el.Caption != "" {
			sb.WriteString("<figcaption>" + html.EscapeString(el.Caption) + "</figcaption>")
		}
		sb.WriteString("</figure>")
	case *edtypes.Video:
		fmt.Fprintf(sb, `<iframe src="%s" title="%s"%s></iframe>`, html.EscapeString(el.URL), html.EscapeString(el.Title), alignAttr(el.Align))
	case *edtypes.Divider:
		sb.WriteString("<hr>")
	case *edtypes.Table:
		sb.WriteString("<table" + alignAttr(el.Align) + "><tbody>")
		for _, r := range el.Content {
			row, ok := r.(*edtypes.TableRow)
			if !ok {
				continue
			}
			sb.WriteString("<tr" + alignAttr(row.Align) + ">")
			for _, c := range row.Content {
				if cell, ok := c.(*edtypes.TableCell); ok {
					writeTag(sb, "td", cell.Align, cell.Content)
				}
			}
			sb.WriteString("</tr>")
		}
		sb.WriteString("</tbody></table>")
	}
}

func writeList(sb *strings.Builder, tag string, align edtypes.TextAlign, items []edtypes.Node) {
	sb.WriteString("<" + tag + alignAttr(align) + ">")
	for _, item := range items {
		if li, ok := item.(*edtypes.ListItem); ok {
			writeTag(sb, "li", li.Align, li.Content)
		}
	}
	sb.WriteString("</" + tag + ">")
}

func writeTag(sb *strings.Builder, tag string, align edtypes.TextAlign, content []edtypes.Node) {
	sb.WriteString("<" + tag + alignAttr(align) + ">")
	writeInlines(sb, content)
	sb.WriteString("</" + tag + ">")
}

func alignAttr(align edtypes.TextAlign) string {
	if align == edtypes.NoAlign {
		return ""
	}
	return ` style="text-align: ` + align.String() + `"`
}

func writeInlines(sb *strings.Builder, nodes []edtypes.Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *edtypes.Text:
			writeHTMLText(sb, v)
		case *edtypes.Link:
			sb.WriteString(`<a href="` + html.EscapeString(v.URL) + `">`)
			writeInlines(sb, v.Content)
			sb.WriteString("</a>")
		}
	}
}

func writeHTMLText(sb *strings.Builder, t *edtypes.Text) {
	if t.Text == "" {
		return
	}
	s := strings.ReplaceAll(html.EscapeString(t.Text), "\n", "<br>")

	if t.Code {
		s = "<code>" + s + "</code>"
	}
	if t.Underline {
		s = "<u>" + s + "</u>"
	}
	if t.Italic {
		s = "<em>" + s + "</em>"
	}
	if t.Bold {
		s = "<strong>" + s + "</strong>"
	}

	var styles []string
	if t.Color != nil {
		styles = append(styles, "color: "+t.Color.Hex())
	}
	if t.FontSize != 0 {
		styles = append(styles, fmt.Sprintf("font-size: %dpx", t.FontSize))
	}
	if len(styles) > 0 {
		s = `<span style="` + strings.Join(styles, "; ") + `">` + s + "</span>"
	}
	sb.WriteString(s)
}
