package slatejson

import (
	"encoding/json"
	"log/slog"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

// Serialize сериализует документ в Slate JSON массив блоков
func Serialize(doc *edtypes.Document) ([]byte, error) {
	nodes := make([]SlateNode, 0)
	if doc != nil {
		nodes = serializeNodes(doc.Children)
	}
	return json.Marshal(nodes)
}

// SerializeNode сериализует одиночный узел
func SerializeNode(n edtypes.Node) ([]byte, error) {
	sn := serializeNode(n)
	if sn == nil {
		return []byte("null"), nil
	}
	return json.Marshal(sn)
}

func serializeNodes(nodes []edtypes.Node) []SlateNode {
	res := make([]SlateNode, 0, len(nodes))
	for _, n := range nodes {
		if sn := serializeNode(n); sn != nil {
			res = append(res, *sn)
		}
	}
	return res
}

func serializeNode(n edtypes.Node) *SlateNode {
	switch v := n.(type) {
	case *edtypes.Text:
		return serializeText(v)
	case edtypes.Element:
		sn := &SlateNode{
			Type:     string(v.Kind()),
			Children: serializeNodes(v.Children()),
		}
		if a, ok := v.(edtypes.Alignable); ok {
			sn.Align = a.Alignment().String()
		}
		switch e := v.(type) {
		case *edtypes.Heading:
			sn.Level = e.Level
		case *edtypes.Image:
			sn.URL = e.URL
			sn.Alt = e.Alt
			sn.Caption = e.Caption
		case *edtypes.Video:
			sn.URL = e.URL
			sn.Title = e.Title
		case *edtypes.Link:
			sn.URL = e.URL
		}
		return sn
	}
	slog.Warn("Unknown node type for serialization", "type", n)
	return nil
}

func serializeText(t *edtypes.Text) *SlateNode {
	text := t.Text
	sn := &SlateNode{
		Text:      &text,
		Bold:      t.Bold,
		Italic:    t.Italic,
		Underline: t.Underline,
		Code:      t.Code,
		FontSize:  t.FontSize,
	}
	if t.Color != nil {
		sn.Color = t.Color.Hex()
	}
	return sn
}
