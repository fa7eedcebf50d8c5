package edtypes_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	_ "github.com/aisa-it/richdoc/internal/richdoc/editor/slatejson" // Регистрация парсера
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		raw     string
		want    edtypes.Color
		wantHex string
		wantErr bool
	}{
		{raw: "#ff0000", want: edtypes.Color{R: 255, A: 255}, wantHex: "#ff0000"},
		{raw: "#ABCDEF", want: edtypes.Color{R: 0xab, G: 0xcd, B: 0xef, A: 255}, wantHex: "#abcdef"},
		{raw: "#fff", want: edtypes.Color{R: 255, G: 255, B: 255, A: 255}, wantHex: "#ffffff"},
		{raw: "#00ff0080", want: edtypes.Color{G: 255, A: 0x80}, wantHex: "#00ff0080"},
		{raw: "rgb(1, 2, 3)", want: edtypes.Color{R: 1, G: 2, B: 3, A: 255}, wantHex: "#010203"},
		{raw: "rgba(1,2,3,4)", want: edtypes.Color{R: 1, G: 2, B: 3, A: 4}, wantHex: "#01020304"},
		{raw: "red", wantErr: true},
		{raw: "#12", wantErr: true},
		{raw: "#zzzzzz", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := edtypes.ParseColor(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantHex, got.Hex())
		})
	}
}

func TestColor_JSON(t *testing.T) {
	c := edtypes.Color{R: 0x12, G: 0x34, B: 0x56, A: 255}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `"#123456"`, string(b))

	var back edtypes.Color
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c, back)
}

func TestMarks(t *testing.T) {
	var m edtypes.Marks
	for _, mark := range edtypes.AllMarks {
		assert.False(t, m.Has(mark))
		m = m.With(mark, true)
		assert.True(t, m.Has(mark))
	}
	m = m.With(edtypes.MarkItalic, false)
	assert.True(t, m.Bold)
	assert.False(t, m.Italic)
	assert.True(t, m.Underline)

	a := edtypes.Marks{Color: edtypes.MustParseColor("#ff0000")}
	b := a.Clone()
	b.Color.G = 1
	assert.False(t, a.Equal(b))
	assert.Equal(t, uint8(0), a.Color.G)
}

func TestRetype(t *testing.T) {
	h := &edtypes.Heading{Level: 3, Align: edtypes.RightAlign, Content: []edtypes.Node{edtypes.NewText("x")}}

	p := edtypes.Retype(h, edtypes.KindParagraph)
	require.IsType(t, &edtypes.Paragraph{}, p)
	assert.Equal(t, edtypes.RightAlign, p.(*edtypes.Paragraph).Align)
	assert.Equal(t, "x", edtypes.String(p))

	back := edtypes.Retype(p, edtypes.KindHeading)
	assert.Equal(t, 1, back.(*edtypes.Heading).Level)

	assert.Panics(t, func() { edtypes.Retype(p, edtypes.KindLink) })
}

func TestConstructorsFailFast(t *testing.T) {
	assert.Panics(t, func() { edtypes.NewHeading(0) })
	assert.Panics(t, func() { edtypes.NewHeading(7) })
	assert.Panics(t, func() { edtypes.NewLink("") })
	assert.Panics(t, func() { edtypes.NewLink("https://a", edtypes.NewLink("https://b")) })
	assert.Panics(t, func() { edtypes.NewImage("", "", "") })
	assert.Panics(t, func() { edtypes.NewTable(0, 1) })
	assert.NotPanics(t, func() { edtypes.NewHeading(6) })
}

func TestCloneIsDeep(t *testing.T) {
	orig := edtypes.NewParagraph(edtypes.NewText("a", edtypes.MarkBold), edtypes.NewLink("https://x", edtypes.NewText("b")))
	cp := edtypes.Clone(orig).(*edtypes.Paragraph)
	require.True(t, edtypes.Equal(orig, cp))

	cp.Content[0].(*edtypes.Text).Text = "changed"
	assert.Equal(t, "a", orig.Content[0].(*edtypes.Text).Text)
	assert.False(t, edtypes.Equal(orig, cp))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		doc   *edtypes.Document
		want  []error
		paths [][]int
	}{
		{
			name: "valid",
			doc: &edtypes.Document{Children: []edtypes.Node{
				edtypes.NewParagraph(edtypes.NewText("a"), edtypes.NewLink("https://x", edtypes.NewText("b")), edtypes.NewText("")),
				&edtypes.BulletedList{Content: []edtypes.Node{edtypes.NewListItem()}},
				edtypes.NewTable(2, 2),
				edtypes.NewDivider(),
			}},
		},
		{
			name: "list item at root",
			doc:  &edtypes.Document{Children: []edtypes.Node{edtypes.NewListItem()}},
			want: []error{edtypes.ErrMisplacedListItem},
		},
		{
			name: "empty paragraph",
			doc:  &edtypes.Document{Children: []edtypes.Node{&edtypes.Paragraph{}}},
			want: []error{edtypes.ErrEmptyChildren},
		},
		{
			name: "cell in table",
			doc: &edtypes.Document{Children: []edtypes.Node{
				&edtypes.Table{Content: []edtypes.Node{&edtypes.TableCell{Content: edtypes.EmptyText()}}},
			}},
			want:  []error{edtypes.ErrMisplacedCell},
			paths: [][]int{{0, 0}},
		},
		{
			name: "nested link",
			doc: &edtypes.Document{Children: []edtypes.Node{
				edtypes.NewParagraph(&edtypes.Link{URL: "https://a", Content: []edtypes.Node{
					&edtypes.Link{URL: "https://b", Content: edtypes.EmptyText()},
				}}),
			}},
			want:  []error{edtypes.ErrNestedLink},
			paths: [][]int{{0, 0, 0}},
		},
		{
			name: "bad heading level",
			doc:  &edtypes.Document{Children: []edtypes.Node{&edtypes.Heading{Level: 9, Content: edtypes.EmptyText()}}},
			want: []error{edtypes.ErrBadHeadingLevel},
		},
		{
			name: "text at root",
			doc:  &edtypes.Document{Children: []edtypes.Node{edtypes.NewText("x")}},
			want: []error{edtypes.ErrInlineInBlock},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := edtypes.Validate(tt.doc)
			require.Len(t, errs, len(tt.want), "%v", errs)
			for i, want := range tt.want {
				assert.True(t, errors.Is(errs[i], want), "got %v, want %v", errs[i], want)
				if tt.paths != nil {
					var ve *edtypes.ValidationError
					require.ErrorAs(t, errs[i], &ve)
					assert.Equal(t, tt.paths[i], ve.Path)
				}
			}
		})
	}
}

func TestDocument_JSONHooks(t *testing.T) {
	doc := &edtypes.Document{Children: []edtypes.Node{
		&edtypes.Heading{Level: 2, Align: edtypes.CenterAlign, Content: []edtypes.Node{edtypes.NewText("Title", edtypes.MarkBold)}},
	}}

	b, err := json.Marshal(doc)
	require.NoError(t, err)

	var back edtypes.Document
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back.Children, 1)
	assert.True(t, edtypes.Equal(doc.Children[0], back.Children[0]))

	v, err := doc.Value()
	require.NoError(t, err)

	var scanned edtypes.Document
	require.NoError(t, scanned.Scan(v))
	assert.True(t, edtypes.EqualNodes(doc.Children, scanned.Children))

	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned.Children)
}
