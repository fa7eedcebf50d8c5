package slatejson

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `[
	{"type": "heading", "level": 2, "align": "center", "children": [{"text": "Title"}]},
	{"type": "paragraph", "children": [
		{"text": "plain "},
		{"text": "styled", "bold": true, "italic": true, "color": "#ff0000", "fontSize": 14},
		{"type": "link", "url": "https://example.com", "children": [{"text": "link"}]},
		{"text": ""}
	]},
	{"type": "image", "url": "https://img", "alt": "a", "caption": "c", "align": "right", "children": [{"text": ""}]},
	{"type": "video", "url": "https://video", "title": "t", "children": [{"text": ""}]},
	{"type": "numbered-list", "children": [{"type": "list-item", "children": [{"text": "item"}]}]},
	{"type": "table", "align": "left", "children": [
		{"type": "table-row", "children": [{"type": "table-cell", "children": [{"text": "cell"}]}]}
	]}
]`

func TestParseJSON(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, doc.Children, 6)

	h, ok := doc.Children[0].(*edtypes.Heading)
	require.True(t, ok)
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, edtypes.CenterAlign, h.Align)

	p := doc.Children[1].(*edtypes.Paragraph)
	require.Len(t, p.Content, 4)
	styled := p.Content[1].(*edtypes.Text)
	assert.True(t, styled.Bold)
	assert.True(t, styled.Italic)
	assert.False(t, styled.Underline)
	assert.Equal(t, 14, styled.FontSize)
	require.NotNil(t, styled.Color)
	assert.Equal(t, "#ff0000", styled.Color.Hex())

	link := p.Content[2].(*edtypes.Link)
	assert.Equal(t, "https://example.com", link.URL)

	img := doc.Children[2].(*edtypes.Image)
	assert.Equal(t, "https://img", img.URL)
	assert.Equal(t, "c", img.Caption)
	assert.Equal(t, edtypes.RightAlign, img.Align)

	assert.Empty(t, edtypes.Validate(doc))
}

func TestParseJSON_Variants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		blocks  int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"null", "null", 0, false},
		{"wrapped", `{"children": [{"type": "paragraph", "children": [{"text": "x"}]}]}`, 1, false},
		{"unknown type skipped", `[{"type": "spoiler", "children": []}, {"type": "divider", "children": [{"text": ""}]}]`, 1, false},
		{"bad color", `[{"type": "paragraph", "children": [{"text": "x", "color": "#zz"}]}]`, 0, true},
		{"bad align", `[{"type": "paragraph", "align": "justify", "children": [{"text": "x"}]}]`, 0, true},
		{"broken json", `[{"type": `, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseJSON(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, doc.Children, tt.blocks)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(sample))
	require.NoError(t, err)

	data, err := Serialize(doc)
	require.NoError(t, err)

	again, err := ParseJSON(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.True(t, edtypes.EqualNodes(doc.Children, again.Children))
}

func TestSerialize_OmitsDefaults(t *testing.T) {
	doc := &edtypes.Document{Children: []edtypes.Node{
		edtypes.NewParagraph(edtypes.NewText("")),
	}}
	data, err := Serialize(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"paragraph","children":[{"text":""}]}]`, string(data))

	data, err = json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"paragraph","children":[{"text":""}]}]`, string(data))
}

func TestSerializeNode(t *testing.T) {
	data, err := SerializeNode(edtypes.NewLink("https://x", edtypes.NewText("x", edtypes.MarkCode)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"link","url":"https://x","children":[{"text":"x","code":true}]}`, string(data))

	n, err := ParseNode(data)
	require.NoError(t, err)
	assert.Equal(t, edtypes.KindLink, edtypes.KindOf(n))
}
