package edtypes

import (
	"fmt"
	"strings"
)

const (
	MinHeadingLevel = 1
	MaxHeadingLevel = 6

	MinFontSize = 9
	MaxFontSize = 30
)

// NewText создает текстовый узел
func NewText(text string, marks ...Mark) *Text {
	t := &Text{Text: text}
	for _, m := range marks {
		t.Marks = t.Marks.With(m, true)
	}
	return t
}

// EmptyText - заглушка для пустых элементов
func EmptyText() []Node {
	return []Node{&Text{}}
}

// NewParagraph создает абзац. Без детей получает пустой текст.
func NewParagraph(children ...Node) *Paragraph {
	return &Paragraph{Content: orEmpty(children)}
}

// NewHeading создает заголовок. Уровень вне 1..6 - ошибка программиста.
func NewHeading(level int, children ...Node) *Heading {
	if level < MinHeadingLevel || level > MaxHeadingLevel {
		panic(fmt.Sprintf("edtypes: heading level %d out of range", level))
	}
	return &Heading{Level: level, Content: orEmpty(children)}
}

// NewListItem создает пункт списка
func NewListItem(children ...Node) *ListItem {
	return &ListItem{Content: orEmpty(children)}
}

// NewLink создает ссылку. Вложенная ссылка нарушает схему.
func NewLink(url string, children ...Node) *Link {
	if url == "" {
		panic("edtypes: link without url")
	}
	for _, c := range children {
		if _, ok := c.(*Text); !ok {
			panic("edtypes: link may contain only text")
		}
	}
	return &Link{URL: url, Content: orEmpty(children)}
}

// NewImage создает void узел изображения
func NewImage(url, alt, caption string) *Image {
	if url == "" {
		panic("edtypes: image without url")
	}
	return &Image{URL: url, Alt: alt, Caption: caption, Content: EmptyText()}
}

// NewVideo создает void узел видео
func NewVideo(url, title string) *Video {
	if url == "" {
		panic("edtypes: video without url")
	}
	return &Video{URL: url, Title: title, Content: EmptyText()}
}

func NewDivider() *Divider {
	return &Divider{Align: CenterAlign, Content: EmptyText()}
}

// NewTable создает заполненную таблицу rows x cols, в каждой ячейке пустой текст
func NewTable(rows, cols int) *Table {
	if rows < 1 || cols < 1 {
		panic(fmt.Sprintf("edtypes: table %dx%d", rows, cols))
	}
	table := &Table{Content: make([]Node, 0, rows)}
	for range rows {
		row := &TableRow{Content: make([]Node, 0, cols)}
		for range cols {
			row.Content = append(row.Content, &TableCell{Content: EmptyText()})
		}
		table.Content = append(table.Content, row)
	}
	return table
}

func orEmpty(children []Node) []Node {
	if len(children) == 0 {
		return EmptyText()
	}
	return children
}

// Retype возвращает элемент типа kind с содержимым и выравниванием исходного.
// Свойства, которых нет у нового типа (уровень заголовка, url), теряются.
func Retype(e Element, kind Kind) Element {
	var align TextAlign
	if a, ok := e.(Alignable); ok {
		align = a.Alignment()
	}
	content := e.Children()
	switch kind {
	case KindParagraph:
		return &Paragraph{Content: content, Align: align}
	case KindHeading:
		level := MinHeadingLevel
		if h, ok := e.(*Heading); ok {
			level = h.Level
		}
		return &Heading{Content: content, Level: level, Align: align}
	case KindBlockquote:
		return &Blockquote{Content: content, Align: align}
	case KindCodeBlock:
		return &CodeBlock{Content: content, Align: align}
	case KindBulletedList:
		return &BulletedList{Content: content, Align: align}
	case KindNumberedList:
		return &NumberedList{Content: content, Align: align}
	case KindListItem:
		return &ListItem{Content: content, Align: align}
	case KindTable:
		return &Table{Content: content, Align: align}
	case KindTableRow:
		return &TableRow{Content: content, Align: align}
	case KindTableCell:
		return &TableCell{Content: content, Align: align}
	case KindDivider:
		return &Divider{Content: content, Align: align}
	}
	panic(fmt.Sprintf("edtypes: cannot retype %s to %s", e.Kind(), kind))
}

// NewContainer создает пустой контейнер заданного типа для оборачивания
func NewContainer(kind Kind) Element {
	return Retype(&Paragraph{}, kind)
}

// Shallow возвращает копию узла без детей. Для текста копируются стили, но не строка.
func Shallow(n Node) Node {
	switch v := n.(type) {
	case *Text:
		return &Text{Marks: v.Marks.Clone()}
	case Element:
		return v.WithChildren(nil)
	}
	return nil
}

// Clone глубоко копирует узел
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Text:
		return &Text{Text: v.Text, Marks: v.Marks.Clone()}
	case Element:
		return v.WithChildren(CloneNodes(v.Children()))
	}
	return nil
}

func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	res := make([]Node, len(nodes))
	for i, n := range nodes {
		res[i] = Clone(n)
	}
	return res
}

// Clone глубоко копирует документ
func (d *Document) Clone() *Document {
	return &Document{Children: CloneNodes(d.Children)}
}

// Equal сравнивает деревья узлов по значению
func Equal(a, b Node) bool {
	if !EqualProps(a, b) {
		return false
	}
	if ta, ok := a.(*Text); ok {
		return ta.Text == b.(*Text).Text
	}
	return EqualNodes(a.(Element).Children(), b.(Element).Children())
}

func EqualNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// EqualProps сравнивает собственные свойства узлов без учета детей и строки текста
func EqualProps(a, b Node) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch va := a.(type) {
	case *Text:
		return va.Marks.Equal(b.(*Text).Marks)
	case *Heading:
		vb := b.(*Heading)
		return va.Level == vb.Level && va.Align == vb.Align
	case *Image:
		vb := b.(*Image)
		return va.URL == vb.URL && va.Alt == vb.Alt && va.Caption == vb.Caption && va.Align == vb.Align
	case *Video:
		vb := b.(*Video)
		return va.URL == vb.URL && va.Title == vb.Title && va.Align == vb.Align
	case *Link:
		return va.URL == b.(*Link).URL
	case Alignable:
		return va.Alignment() == b.(Alignable).Alignment()
	}
	return false
}

// String возвращает текстовое содержимое узла
func String(n Node) string {
	var sb strings.Builder
	writeString(&sb, n)
	return sb.String()
}

func writeString(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Text:
		sb.WriteString(v.Text)
	case Element:
		for _, c := range v.Children() {
			writeString(sb, c)
		}
	}
}

// PlainText возвращает текст документа, блоки разделены переводом строки
func (d *Document) PlainText() string {
	lines := make([]string, 0, len(d.Children))
	for _, n := range d.Children {
		lines = append(lines, String(n))
	}
	return strings.Join(lines, "\n")
}
