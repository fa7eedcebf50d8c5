package editor

import (
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
	policy "github.com/aisa-it/richdoc/internal/richdoc/redactor-policy"
)

var blockTags = []string{
	"p", "div", "section", "article", "main", "header", "footer",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"blockquote", "pre", "ul", "ol", "li", "img", "figure", "iframe", "hr", "table",
}

// ParseHTML импортирует HTML в документ. Разметка очищается политикой импорта, неподдерживаемые
// элементы заменяются своим текстом, вложенные списки становятся текстом пунктов.
// Результат нормализован.
func ParseHTML(r io.Reader) (*edtypes.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(strings.NewReader(policy.Sanitize(string(raw))))
	if err != nil {
		return nil, err
	}

	doc := &edtypes.Document{}
	if body := getBody(root); body != nil {
		doc.Children = parseBlocks(body)
	}

	if err := engine.New(doc).Normalize(); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseBlocks(root *html.Node) []edtypes.Node {
	var res []edtypes.Node
	var pending []edtypes.Node

	flush := func() {
		if hasText(pending) {
			res = append(res, edtypes.NewParagraph(pending...))
		}
		pending = nil
	}

	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || !slices.Contains(blockTags, child.Data) {
			pending = append(pending, parseInline(child, edtypes.Marks{}, false)...)
			continue
		}
		flush()
		res = append(res, parseBlock(child)...)
	}
	flush()
	return res
}

func parseBlock(el *html.Node) []edtypes.Node {
	align := parseAlign(el)

	switch el.Data {
	case "div", "section", "article", "main", "header", "footer":
		if containsBlocks(el) {
			return parseBlocks(el)
		}
		return []edtypes.Node{&edtypes.Paragraph{Content: blockContent(el, edtypes.Marks{}), Align: align}}
	case "p":
		return []edtypes.Node{&edtypes.Paragraph{Content: blockContent(el, edtypes.Marks{}), Align: align}}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(el.Data[1:])
		return []edtypes.Node{&edtypes.Heading{Level: level, Content: blockContent(el, edtypes.Marks{}), Align: align}}
	case "blockquote":
		return []edtypes.Node{&edtypes.Blockquote{Content: blockContent(el, edtypes.Marks{}), Align: align}}
	case "pre":
		return []edtypes.Node{&edtypes.CodeBlock{Content: []edtypes.Node{edtypes.NewText(getText(el))}, Align: align}}
	case "ul", "ol":
		var items []edtypes.Node
		for li := el.FirstChild; li != nil; li = li.NextSibling {
			if li.Type == html.ElementNode && li.Data == "li" {
				items = append(items, &edtypes.ListItem{Content: blockContent(li, edtypes.Marks{}), Align: parseAlign(li)})
			}
		}
		if len(items) == 0 {
			return nil
		}
		if el.Data == "ol" {
			return []edtypes.Node{&edtypes.NumberedList{Content: items, Align: align}}
		}
		return []edtypes.Node{&edtypes.BulletedList{Content: items, Align: align}}
	case "li":
		return []edtypes.Node{&edtypes.Paragraph{Content: blockContent(el, edtypes.Marks{}), Align: align}}
	case "img":
		if img := getImage(el, ""); img != nil {
			return []edtypes.Node{img}
		}
	case "figure":
		var caption string
		if fc := findElementByTagName(el, "figcaption"); fc != nil {
			caption = strings.TrimSpace(getText(fc))
		}
		if imgEl := findElementByTagName(el, "img"); imgEl != nil {
			if img := getImage(imgEl, caption); img != nil {
				return []edtypes.Node{img}
			}
		}
	case "iframe":
		src := strings.TrimSpace(getAttrValue("src", el.Attr))
		if src == "" {
			return nil
		}
		video := edtypes.NewVideo(src, strings.TrimSpace(getAttrValue("title", el.Attr)))
		video.Align = align
		return []edtypes.Node{video}
	case "hr":
		return []edtypes.Node{edtypes.NewDivider()}
	case "table":
		if t := parseTable(el); t != nil {
			return []edtypes.Node{t}
		}
	}
	return nil
}

func parseTable(root *html.Node) *edtypes.Table {
	table := &edtypes.Table{Align: parseAlign(root)}

	iterNodes(root, func(tr *html.Node) bool {
		if tr.Type != html.ElementNode || tr.Data != "tr" {
			return false
		}
		row := &edtypes.TableRow{Align: parseAlign(tr)}
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.Type != html.ElementNode || (td.Data != "td" && td.Data != "th") {
				continue
			}
			marks := edtypes.Marks{Bold: td.Data == "th"}
			row.Content = append(row.Content, &edtypes.TableCell{Content: blockContent(td, marks), Align: parseAlign(td)})
		}
		if len(row.Content) > 0 {
			table.Content = append(table.Content, row)
		}
		return true
	})

	if len(table.Content) == 0 {
		return nil
	}
	return table
}

// blockContent разбирает содержимое блока, убирая пробелы в начале и конце
func blockContent(el *html.Node, marks edtypes.Marks) []edtypes.Node {
	nodes := parseInlines(el, marks, false)
	if len(nodes) == 0 {
		return nil
	}
	if t, ok := nodes[0].(*edtypes.Text); ok {
		t.Text = strings.TrimLeft(t.Text, " ")
	}
	if t, ok := nodes[len(nodes)-1].(*edtypes.Text); ok {
		t.Text = strings.TrimRight(t.Text, " ")
	}
	return nodes
}

func parseInlines(root *html.Node, marks edtypes.Marks, inLink bool) []edtypes.Node {
	var res []edtypes.Node
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && slices.Contains(blockTags, child.Data) && hasText(res) {
			res = append(res, &edtypes.Text{Text: "\n", Marks: marks.Clone()})
		}
		res = append(res, parseInline(child, marks, inLink)...)
	}
	return res
}

func parseInline(n *html.Node, marks edtypes.Marks, inLink bool) []edtypes.Node {
	switch n.Type {
	case html.TextNode:
		text := collapseSpaces(n.Data)
		if text == "" {
			return nil
		}
		return []edtypes.Node{&edtypes.Text{Text: text, Marks: marks.Clone()}}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "br":
		return []edtypes.Node{&edtypes.Text{Text: "\n", Marks: marks.Clone()}}
	case "a":
		children := parseInlines(n, marks, true)
		href := strings.TrimSpace(getAttrValue("href", n.Attr))
		if inLink || href == "" || !hasText(children) {
			return children
		}
		return []edtypes.Node{&edtypes.Link{URL: NormalizeURL(href), Content: children}}
	}
	return parseInlines(n, parseTextStyles(n, marks), inLink)
}

// parseTextStyles добавляет к стилям родителя стили тега и атрибута style
func parseTextStyles(el *html.Node, marks edtypes.Marks) edtypes.Marks {
	marks = marks.Clone()
	switch el.Data {
	case "b", "strong":
		marks.Bold = true
	case "i", "em":
		marks.Italic = true
	case "u", "ins":
		marks.Underline = true
	case "code", "kbd", "samp":
		marks.Code = true
	}

	for _, style := range parseStyles(strings.Split(getAttrValue("style", el.Attr), ";")) {
		switch style.Key {
		case "color":
			c, err := edtypes.ParseColor(style.Val)
			if err != nil {
				slog.Warn("Parse text color", "input", style.Val, "err", err)
				continue
			}
			marks.Color = &c
		case "font-size":
			size := sizeToInt(style.Val)
			if size < edtypes.MinFontSize || size > edtypes.MaxFontSize {
				slog.Warn("Parse font size", "input", style.Val)
				continue
			}
			marks.FontSize = size
		case "font-weight":
			marks.Bold = style.Val == "bold" || sizeToInt(style.Val) >= 600
		case "font-style":
			marks.Italic = style.Val == "italic"
		case "text-decoration", "text-decoration-line":
			marks.Underline = strings.Contains(style.Val, "underline")
		}
	}
	return marks
}

func parseAlign(el *html.Node) edtypes.TextAlign {
	raw := getAttrValue("align", el.Attr)
	for _, style := range parseStyles(strings.Split(getAttrValue("style", el.Attr), ";")) {
		if style.Key == "text-align" {
			raw = style.Val
		}
	}
	align, _ := edtypes.ParseTextAlign(raw)
	return align
}

func getImage(el *html.Node, caption string) *edtypes.Image {
	src := strings.TrimSpace(getAttrValue("src", el.Attr))
	if src == "" {
		return nil
	}
	img := edtypes.NewImage(src, strings.TrimSpace(getAttrValue("alt", el.Attr)), caption)
	img.Align = parseAlign(el)
	return img
}

func containsBlocks(root *html.Node) bool {
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && slices.Contains(blockTags, child.Data) {
			return true
		}
	}
	return false
}

func hasText(nodes []edtypes.Node) bool {
	return slices.ContainsFunc(nodes, func(n edtypes.Node) bool {
		return strings.TrimSpace(edtypes.String(n)) != ""
	})
}

func getText(root *html.Node) string {
	var sb strings.Builder
	iterNodes(root, func(child *html.Node) bool {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
		if child.Type == html.ElementNode && child.Data == "br" {
			sb.WriteString("\n")
		}
		return false
	})
	return sb.String()
}

func collapseSpaces(s string) string {
	if strings.TrimSpace(s) == "" {
		if s == "" {
			return ""
		}
		return " "
	}
	res := strings.Join(strings.Fields(s), " ")
	if first := s[0]; first == ' ' || first == '\n' || first == '\t' {
		res = " " + res
	}
	if last := s[len(s)-1]; last == ' ' || last == '\n' || last == '\t' {
		res += " "
	}
	return res
}

func findElementByTagName(rootNode *html.Node, tagName string) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if el != nil {
			return true
		}
		if child.Type == html.ElementNode && child.Data == tagName {
			el = child
			return true
		}
		return false
	})
	return el
}

func getBody(rootNode *html.Node) *html.Node {
	return findElementByTagName(rootNode, "body")
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func getAttrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func parseStyles(rawStyles []string) []html.Attribute {
	res := make([]html.Attribute, 0, len(rawStyles))
	for _, styleRaw := range rawStyles {
		key, val, ok := strings.Cut(styleRaw, ":")
		if !ok {
			continue
		}
		res = append(res, html.Attribute{
			Key: strings.ToLower(strings.TrimSpace(key)),
			Val: strings.TrimSpace(val),
		})
	}
	return res
}

func sizeToInt(raw string) int {
	i, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "px"))
	return i
}
