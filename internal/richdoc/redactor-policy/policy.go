// Определяет политики очистки HTML, поступающего при импорте документов. Политики ограничивают набор
// элементов, атрибутов и стилей теми, которые можно перенести в документ, и защищают от XSS.
//
// Основные возможности:
//   - ImportPolicy на основе UGCPolicy: разрешены цвет, размер шрифта и выравнивание текста, изображения
//     с подписями и встраиваемое видео YouTube.
//   - StripTagsPolicy для получения простого текста.
//   - Замена устаревших тегов font и center на эквивалентные span и p со стилями до очистки.
package policy

import (
	"container/list"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/microcosm-cc/bluemonday"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var ImportPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

var (
	colorRegexp      = regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgba?\(\s*\d+\s*,\s*\d+\s*,\s*\d+\s*(,\s*[\d.]+\s*)?\)|inherit)$`)
	sizeRegexp       = regexp.MustCompile(`^(\d+(px|pt)?|inherit|initial)$`)
	alignRegexp      = regexp.MustCompile(`^(left|center|right)$`)
	weightRegexp     = regexp.MustCompile(`^(normal|bold|[1-9]00)$`)
	fontStyleRegexp  = regexp.MustCompile(`^(normal|italic|oblique)$`)
	decorationRegexp = regexp.MustCompile(`^(none|underline|line-through)$`)
	videoRegexp      = regexp.MustCompile(`^https://(www\.)?(youtube\.com|youtube-nocookie\.com|youtu\.be)/`)
)

func init() {
	ImportPolicy.AllowStyles("color").Matching(colorRegexp).Globally()
	ImportPolicy.AllowStyles("font-size").Matching(sizeRegexp).Globally()
	ImportPolicy.AllowStyles("text-align").Matching(alignRegexp).Globally()
	ImportPolicy.AllowStyles("font-weight").Matching(weightRegexp).Globally()
	ImportPolicy.AllowStyles("font-style").Matching(fontStyleRegexp).Globally()
	ImportPolicy.AllowStyles("text-decoration", "text-decoration-line").Matching(decorationRegexp).Globally()
	ImportPolicy.AllowAttrs("align").Matching(alignRegexp).Globally()

	ImportPolicy.AllowElements("figure", "figcaption")
	ImportPolicy.AllowAttrs("alt", "title").OnElements("img")

	ImportPolicy.AllowElements("iframe")
	ImportPolicy.AllowAttrs("src").Matching(videoRegexp).OnElements("iframe")
	ImportPolicy.AllowAttrs("title").OnElements("iframe")
}

// Sanitize заменяет устаревшие теги и очищает HTML политикой импорта
func Sanitize(htmlContent string) string {
	return ImportPolicy.Sanitize(ReplaceLegacyTags(htmlContent))
}

// StripTags оставляет только текст
func StripTags(htmlContent string) string {
	return StripTagsPolicy.Sanitize(htmlContent)
}

// ReplaceLegacyTags заменяет font на span со стилями color и font-size, center на p с выравниванием
func ReplaceLegacyTags(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	queue := list.New()
	queue.PushBack(doc)

	for queue.Len() > 0 {
		element := queue.Front()
		queue.Remove(element)
		node := element.Value.(*html.Node)

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode {
				switch child.Data {
				case "font":
					replaceFontNode(child)
				case "center":
					child.Data = "p"
					child.Attr = []html.Attribute{{Key: "style", Val: "text-align: center"}}
				}
			}
			if child.FirstChild != nil {
				queue.PushBack(child)
			}
		}
	}

	var result strings.Builder
	html.Render(&result, doc)

	return result.String()
}

// fontSizes - размеры в пикселях для атрибута size тега font (1-7)
var fontSizes = map[string]string{
	"1": "10px",
	"2": "13px",
	"3": "16px",
	"4": "18px",
	"5": "24px",
	"6": "30px",
	"7": "30px",
}

func replaceFontNode(node *html.Node) {
	var styles []string
	for _, attr := range node.Attr {
		switch attr.Key {
		case "color":
			styles = append(styles, "color: "+strings.TrimSpace(attr.Val))
		case "size":
			if size, ok := fontSizes[strings.TrimSpace(attr.Val)]; ok {
				styles = append(styles, "font-size: "+size)
			}
		}
	}

	node.Data = "span"
	node.Attr = nil
	if len(styles) > 0 {
		node.Attr = []html.Attribute{{Key: "style", Val: strings.Join(styles, "; ")}}
	}
}
