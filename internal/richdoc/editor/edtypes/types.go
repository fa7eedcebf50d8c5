package edtypes

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
)

type TextAlign int

const (
	NoAlign TextAlign = iota
	LeftAlign
	CenterAlign
	RightAlign
)

func (a TextAlign) String() string {
	switch a {
	case LeftAlign:
		return "left"
	case CenterAlign:
		return "center"
	case RightAlign:
		return "right"
	}
	return ""
}

// ParseTextAlign разбирает значение выравнивания. Пустая строка означает отсутствие выравнивания.
func ParseTextAlign(raw string) (TextAlign, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return NoAlign, nil
	case "left":
		return LeftAlign, nil
	case "center":
		return CenterAlign, nil
	case "right":
		return RightAlign, nil
	}
	return NoAlign, fmt.Errorf("unsupported text align %q", raw)
}

// Kind - тег типа узла, совпадает со значением поля type в Slate JSON
type Kind string

const (
	KindText         Kind = "text"
	KindParagraph    Kind = "paragraph"
	KindHeading      Kind = "heading"
	KindBlockquote   Kind = "blockquote"
	KindCodeBlock    Kind = "code-block"
	KindBulletedList Kind = "bulleted-list"
	KindNumberedList Kind = "numbered-list"
	KindListItem     Kind = "list-item"
	KindImage        Kind = "image"
	KindVideo        Kind = "video"
	KindDivider      Kind = "divider"
	KindTable        Kind = "table"
	KindTableRow     Kind = "table-row"
	KindTableCell    Kind = "table-cell"
	KindLink         Kind = "link"
)

// SlateParser - функция для парсинга Slate JSON, устанавливается из slatejson пакета
var SlateParser func(io.Reader) (*Document, error)

// SlateSerializer - функция для сериализации Document в Slate JSON, устанавливается из slatejson пакета
var SlateSerializer func(*Document) ([]byte, error)

// Document - корень дерева. Собственного типа не имеет, только упорядоченный список блоков.
type Document struct {
	Children []Node
}

// UnmarshalJSON реализует кастомную десериализацию Slate JSON в Document.
// Автоматически вызывает зарегистрированный SlateParser.
func (d *Document) UnmarshalJSON(data []byte) error {
	if SlateParser == nil {
		return errors.New("SlateParser not registered, import slatejson package to enable Slate JSON parsing")
	}

	doc, err := SlateParser(bytes.NewReader(data))
	if err != nil {
		return err
	}

	d.Children = doc.Children
	return nil
}

// MarshalJSON реализует кастомную сериализацию Document в Slate JSON.
func (d *Document) MarshalJSON() ([]byte, error) {
	if SlateSerializer == nil {
		return nil, errors.New("SlateSerializer not registered, import slatejson package to enable Slate JSON serialization")
	}

	return SlateSerializer(d)
}

// Value реализует интерфейс driver.Valuer для сохранения Document в JSONB.
func (d Document) Value() (driver.Value, error) {
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Scan реализует интерфейс sql.Scanner для чтения Document из JSONB.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = Document{Children: make([]Node, 0)}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	return d.UnmarshalJSON(bytes)
}

// GormDataType указывает GORM использовать тип JSONB.
func (Document) GormDataType() string {
	return "jsonb"
}

// Node - любой узел документа: *Text или Element.
// Множество реализаций закрыто, новые типы вне пакета объявить нельзя.
type Node interface {
	isNode()
}

// Element - узел с детьми.
type Element interface {
	Node
	Kind() Kind
	Children() []Node
	// WithChildren возвращает копию элемента (без детей исходного) с переданными детьми
	WithChildren(children []Node) Element
}

// Alignable - элемент, поддерживающий атрибут выравнивания.
type Alignable interface {
	Element
	Alignment() TextAlign
	WithAlign(align TextAlign) Element
}

type Text struct {
	Text string
	Marks
}

func (*Text) isNode() {}

type Paragraph struct {
	Content []Node
	Align   TextAlign
}

type Heading struct {
	Content []Node
	Level   int
	Align   TextAlign
}

type Blockquote struct {
	Content []Node
	Align   TextAlign
}

// CodeBlock содержит только текстовые узлы
type CodeBlock struct {
	Content []Node
	Align   TextAlign
}

type BulletedList struct {
	Content []Node
	Align   TextAlign
}

type NumberedList struct {
	Content []Node
	Align   TextAlign
}

type ListItem struct {
	Content []Node
	Align   TextAlign
}

// Image - void элемент, единственный ребенок пустой текст
type Image struct {
	Content []Node
	URL     string
	Alt     string
	Caption string
	Align   TextAlign
}

type Video struct {
	Content []Node
	URL     string
	Title   string
	Align   TextAlign
}

type Divider struct {
	Content []Node
	Align   TextAlign
}

type Table struct {
	Content []Node
	Align   TextAlign
}

type TableRow struct {
	Content []Node
	Align   TextAlign
}

type TableCell struct {
	Content []Node
	Align   TextAlign
}

// Link - единственный inline элемент
type Link struct {
	Content []Node
	URL     string
}

func (*Paragraph) isNode()    {}
func (*Heading) isNode()      {}
func (*Blockquote) isNode()   {}
func (*CodeBlock) isNode()    {}
func (*BulletedList) isNode() {}
func (*NumberedList) isNode() {}
func (*ListItem) isNode()     {}
func (*Image) isNode()        {}
func (*Video) isNode()        {}
func (*Divider) isNode()      {}
func (*Table) isNode()        {}
func (*TableRow) isNode()     {}
func (*TableCell) isNode()    {}
func (*Link) isNode()         {}

func (*Paragraph) Kind() Kind    { return KindParagraph }
func (*Heading) Kind() Kind      { return KindHeading }
func (*Blockquote) Kind() Kind   { return KindBlockquote }
func (*CodeBlock) Kind() Kind    { return KindCodeBlock }
func (*BulletedList) Kind() Kind { return KindBulletedList }
func (*NumberedList) Kind() Kind { return KindNumberedList }
func (*ListItem) Kind() Kind     { return KindListItem }
func (*Image) Kind() Kind        { return KindImage }
func (*Video) Kind() Kind        { return KindVideo }
func (*Divider) Kind() Kind      { return KindDivider }
func (*Table) Kind() Kind        { return KindTable }
func (*TableRow) Kind() Kind     { return KindTableRow }
func (*TableCell) Kind() Kind    { return KindTableCell }
func (*Link) Kind() Kind         { return KindLink }

func (e *Paragraph) Children() []Node    { return e.Content }
func (e *Heading) Children() []Node      { return e.Content }
func (e *Blockquote) Children() []Node   { return e.Content }
func (e *CodeBlock) Children() []Node    { return e.Content }
func (e *BulletedList) Children() []Node { return e.Content }
func (e *NumberedList) Children() []Node { return e.Content }
func (e *ListItem) Children() []Node     { return e.Content }
func (e *Image) Children() []Node        { return e.Content }
func (e *Video) Children() []Node        { return e.Content }
func (e *Divider) Children() []Node      { return e.Content }
func (e *Table) Children() []Node        { return e.Content }
func (e *TableRow) Children() []Node     { return e.Content }
func (e *TableCell) Children() []Node    { return e.Content }
func (e *Link) Children() []Node         { return e.Content }

func (e *Paragraph) WithChildren(c []Node) Element    { n := *e; n.Content = c; return &n }
func (e *Heading) WithChildren(c []Node) Element      { n := *e; n.Content = c; return &n }
func (e *Blockquote) WithChildren(c []Node) Element   { n := *e; n.Content = c; return &n }
func (e *CodeBlock) WithChildren(c []Node) Element    { n := *e; n.Content = c; return &n }
func (e *BulletedList) WithChildren(c []Node) Element { n := *e; n.Content = c; return &n }
func (e *NumberedList) WithChildren(c []Node) Element { n := *e; n.Content = c; return &n }
func (e *ListItem) WithChildren(c []Node) Element     { n := *e; n.Content = c; return &n }
func (e *Image) WithChildren(c []Node) Element        { n := *e; n.Content = c; return &n }
func (e *Video) WithChildren(c []Node) Element        { n := *e; n.Content = c; return &n }
func (e *Divider) WithChildren(c []Node) Element      { n := *e; n.Content = c; return &n }
func (e *Table) WithChildren(c []Node) Element        { n := *e; n.Content = c; return &n }
func (e *TableRow) WithChildren(c []Node) Element     { n := *e; n.Content = c; return &n }
func (e *TableCell) WithChildren(c []Node) Element    { n := *e; n.Content = c; return &n }
func (e *Link) WithChildren(c []Node) Element         { n := *e; n.Content = c; return &n }

func (e *Paragraph) Alignment() TextAlign    { return e.Align }
func (e *Heading) Alignment() TextAlign      { return e.Align }
func (e *Blockquote) Alignment() TextAlign   { return e.Align }
func (e *CodeBlock) Alignment() TextAlign    { return e.Align }
func (e *BulletedList) Alignment() TextAlign { return e.Align }
func (e *NumberedList) Alignment() TextAlign { return e.Align }
func (e *ListItem) Alignment() TextAlign     { return e.Align }
func (e *Image) Alignment() TextAlign        { return e.Align }
func (e *Video) Alignment() TextAlign        { return e.Align }
func (e *Divider) Alignment() TextAlign      { return e.Align }
func (e *Table) Alignment() TextAlign        { return e.Align }
func (e *TableRow) Alignment() TextAlign     { return e.Align }
func (e *TableCell) Alignment() TextAlign    { return e.Align }

func (e *Paragraph) WithAlign(a TextAlign) Element    { n := *e; n.Align = a; return &n }
func (e *Heading) WithAlign(a TextAlign) Element      { n := *e; n.Align = a; return &n }
func (e *Blockquote) WithAlign(a TextAlign) Element   { n := *e; n.Align = a; return &n }
func (e *CodeBlock) WithAlign(a TextAlign) Element    { n := *e; n.Align = a; return &n }
func (e *BulletedList) WithAlign(a TextAlign) Element { n := *e; n.Align = a; return &n }
func (e *NumberedList) WithAlign(a TextAlign) Element { n := *e; n.Align = a; return &n }
func (e *ListItem) WithAlign(a TextAlign) Element     { n := *e; n.Align = a; return &n }
func (e *Image) WithAlign(a TextAlign) Element        { n := *e; n.Align = a; return &n }
func (e *Video) WithAlign(a TextAlign) Element        { n := *e; n.Align = a; return &n }
func (e *Divider) WithAlign(a TextAlign) Element      { n := *e; n.Align = a; return &n }
func (e *Table) WithAlign(a TextAlign) Element        { n := *e; n.Align = a; return &n }
func (e *TableRow) WithAlign(a TextAlign) Element     { n := *e; n.Align = a; return &n }
func (e *TableCell) WithAlign(a TextAlign) Element    { n := *e; n.Align = a; return &n }

// KindOf возвращает тег типа узла
func KindOf(n Node) Kind {
	if e, ok := n.(Element); ok {
		return e.Kind()
	}
	return KindText
}

// IsVoid - элементы без редактируемого содержимого
func IsVoid(n Node) bool {
	switch n.(type) {
	case *Image, *Video, *Divider:
		return true
	}
	return false
}

// IsInline - inline элементы (только ссылка)
func IsInline(n Node) bool {
	_, ok := n.(*Link)
	return ok
}

// IsBlock - элемент, не являющийся inline
func IsBlock(n Node) bool {
	_, ok := n.(Element)
	return ok && !IsInline(n)
}

// IsTextBlock - блоки, содержимое которых набирается текстом и которые может переключать toggleBlock
func IsTextBlock(n Node) bool {
	switch n.(type) {
	case *Paragraph, *Heading, *Blockquote, *CodeBlock, *ListItem:
		return true
	}
	return false
}

// IsList - контейнеры списков
func IsList(n Node) bool {
	switch n.(type) {
	case *BulletedList, *NumberedList:
		return true
	}
	return false
}

// IsAlignable сообщает, поддерживает ли узел выравнивание
func IsAlignable(n Node) bool {
	_, ok := n.(Alignable)
	return ok
}

// HasInlines сообщает, содержит ли элемент inline контент (тексты и ссылки), а не блоки
func HasInlines(e Element) bool {
	switch e.(type) {
	case *BulletedList, *NumberedList, *Table, *TableRow:
		return false
	}
	return true
}
