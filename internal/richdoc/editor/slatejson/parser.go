package slatejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

// ParseJSON парсит Slate JSON в edtypes.Document.
// Принимает массив блоков или объект с полем children. Узлы неизвестных типов пропускаются.
func ParseJSON(r io.Reader) (*edtypes.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var nodes []SlateNode
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
	case data[0] == '{':
		var doc SlateDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		nodes = doc.Children
	default:
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, err
		}
	}

	doc := &edtypes.Document{Children: make([]edtypes.Node, 0, len(nodes))}
	for i, n := range nodes {
		node, err := parseNode(n)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		if node != nil {
			doc.Children = append(doc.Children, node)
		}
	}
	return doc, nil
}

// ParseNode парсит одиночный узел
func ParseNode(data []byte) (edtypes.Node, error) {
	var n SlateNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return parseNode(n)
}

func parseNode(n SlateNode) (edtypes.Node, error) {
	if n.Type == "" || n.Type == string(edtypes.KindText) {
		if n.Text == nil {
			slog.Warn("Slate node without type and text")
			return nil, nil
		}
		return parseText(n)
	}

	children, err := parseChildren(n.Children)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Type, err)
	}
	align, err := edtypes.ParseTextAlign(n.Align)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Type, err)
	}

	switch edtypes.Kind(n.Type) {
	case edtypes.KindParagraph:
		return &edtypes.Paragraph{Content: children, Align: align}, nil
	case edtypes.KindHeading:
		return &edtypes.Heading{Content: children, Level: n.Level, Align: align}, nil
	case edtypes.KindBlockquote:
		return &edtypes.Blockquote{Content: children, Align: align}, nil
	case edtypes.KindCodeBlock:
		return &edtypes.CodeBlock{Content: children, Align: align}, nil
	case edtypes.KindBulletedList:
		return &edtypes.BulletedList{Content: children, Align: align}, nil
	case edtypes.KindNumberedList:
		return &edtypes.NumberedList{Content: children, Align: align}, nil
	case edtypes.KindListItem:
		return &edtypes.ListItem{Content: children, Align: align}, nil
	case edtypes.KindImage:
		return &edtypes.Image{Content: children, URL: n.URL, Alt: n.Alt, Caption: n.Caption, Align: align}, nil
	case edtypes.KindVideo:
		return &edtypes.Video{Content: children, URL: n.URL, Title: n.Title, Align: align}, nil
	case edtypes.KindDivider:
		return &edtypes.Divider{Content: children, Align: align}, nil
	case edtypes.KindTable:
		return &edtypes.Table{Content: children, Align: align}, nil
	case edtypes.KindTableRow:
		return &edtypes.TableRow{Content: children, Align: align}, nil
	case edtypes.KindTableCell:
		return &edtypes.TableCell{Content: children, Align: align}, nil
	case edtypes.KindLink:
		return &edtypes.Link{Content: children, URL: n.URL}, nil
	}
	slog.Warn("Unknown Slate node type", "type", n.Type)
	return nil, nil
}

func parseChildren(nodes []SlateNode) ([]edtypes.Node, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	res := make([]edtypes.Node, 0, len(nodes))
	for i, c := range nodes {
		node, err := parseNode(c)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		if node != nil {
			res = append(res, node)
		}
	}
	return res, nil
}

func parseText(n SlateNode) (*edtypes.Text, error) {
	t := &edtypes.Text{
		Text: *n.Text,
		Marks: edtypes.Marks{
			Bold:      n.Bold,
			Italic:    n.Italic,
			Underline: n.Underline,
			Code:      n.Code,
			FontSize:  n.FontSize,
		},
	}
	if n.Color != "" {
		c, err := edtypes.ParseColor(n.Color)
		if err != nil {
			return nil, err
		}
		t.Color = &c
	}
	return t, nil
}
