package export

import (
	"io"
	"strings"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	md "github.com/nao1215/markdown"
)

// ToMarkdown выгружает документ в Markdown. Цвет и размер шрифта теряются, подчеркивание пишется тегом <u>.
func ToMarkdown(doc *edtypes.Document, out io.Writer) error {
	m := md.NewMarkdown(out)
	for _, n := range doc.Children {
		writeMarkdownBlock(m, n)
	}
	return m.Build()
}

func writeMarkdownBlock(m *md.Markdown, n edtypes.Node) {
	switch el := n.(type) {
	case *edtypes.Paragraph:
		if text := inlineMarkdown(el.Content); strings.TrimSpace(text) != "" {
			m.PlainText(text)
		}
	case *edtypes.Heading:
		text := inlineMarkdown(el.Content)
		switch el.Level {
		case 1:
			m.H1(text)
		case 2:
			m.H2(text)
		case 3:
			m.H3(text)
		case 4:
			m.H4(text)
		case 5:
			m.H5(text)
		default:
			m.H6(text)
		}
	case *edtypes.Blockquote:
		m.Blockquote(inlineMarkdown(el.Content))
	case *edtypes.CodeBlock:
		m.CodeBlocks(md.SyntaxHighlight(""), edtypes.String(el))
	case *edtypes.BulletedList:
		m.BulletList(listItems(el.Content)...)
	case *edtypes.NumberedList:
		m.OrderedList(listItems(el.Content)...)
	case *edtypes.Image:
		label := el.Alt
		if label == "" {
			label = el.Caption
		}
		m.PlainText(md.Image(label, el.URL))
		if el.Caption != "" {
			m.PlainText(md.Italic(el.Caption))
		}
	case *edtypes.Video:
		title := el.Title
		if title == "" {
			title = el.URL
		}
		m.PlainText(md.Link(title, el.URL))
	case *edtypes.Divider:
		m.HorizontalRule()
	case *edtypes.Table:
		writeMarkdownTable(m, el)
	}
}

func writeMarkdownTable(m *md.Markdown, t *edtypes.Table) {
	var rows [][]string
	for _, r := range t.Content {
		row, ok := r.(*edtypes.TableRow)
		if !ok {
			continue
		}
		cells := make([]string, 0, len(row.Content))
		for _, c := range row.Content {
			cell, ok := c.(*edtypes.TableCell)
			if !ok {
				continue
			}
			cells = append(cells, strings.ReplaceAll(inlineMarkdown(cell.Content), "|", `\|`))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return
	}
	m.CustomTable(md.TableSet{Header: rows[0], Rows: rows[1:]}, md.TableOptions{AutoWrapText: false})
}

func listItems(items []edtypes.Node) []string {
	res := make([]string, 0, len(items))
	for _, item := range items {
		if el, ok := item.(edtypes.Element); ok {
			res = append(res, inlineMarkdown(el.Children()))
		}
	}
	return res
}

func inlineMarkdown(nodes []edtypes.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch v := n.(type) {
		case *edtypes.Text:
			sb.WriteString(markdownText(v))
		case *edtypes.Link:
			sb.WriteString(md.Link(inlineMarkdown(v.Content), v.URL))
		}
	}
	return sb.String()
}

func markdownText(t *edtypes.Text) string {
	s := t.Text
	if strings.TrimSpace(s) == "" {
		return s
	}
	// Пробелы по краям выносятся за маркеры, иначе Markdown их не распознает
	lead := s[:len(s)-len(strings.TrimLeft(s, " "))]
	trail := s[len(strings.TrimRight(s, " ")):]
	s = strings.Trim(s, " ")

	if t.Code {
		s = md.Code(s)
	}
	if t.Italic {
		s = md.Italic(s)
	}
	if t.Bold {
		s = md.Bold(s)
	}
	if t.Underline {
		s = "<u>" + s + "</u>"
	}
	return lead + strings.ReplaceAll(s, "\n", "<br>") + trail
}
