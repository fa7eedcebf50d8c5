package engine

import (
	"errors"
	"testing"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txt(s string, marks ...edtypes.Mark) *edtypes.Text {
	return edtypes.NewText(s, marks...)
}

func para(children ...edtypes.Node) *edtypes.Paragraph {
	return edtypes.NewParagraph(children...)
}

func newEditor(nodes ...edtypes.Node) *Editor {
	return New(&edtypes.Document{Children: nodes})
}

func caret(path Path, offset int) Range {
	return Collapsed(Point{Path: path, Offset: offset})
}

func span(ap Path, ao int, fp Path, fo int) Range {
	return Range{Anchor: Point{Path: ap, Offset: ao}, Focus: Point{Path: fp, Offset: fo}}
}

func TestPath(t *testing.T) {
	assert.Equal(t, 0, Path{0, 1}.Compare(Path{0}))
	assert.Equal(t, -1, Path{0, 1}.Compare(Path{1}))
	assert.Equal(t, 1, Path{2}.Compare(Path{1, 5}))
	assert.True(t, Path{0}.IsAncestor(Path{0, 2}))
	assert.False(t, Path{0}.IsAncestor(Path{0}))
	assert.True(t, Path{0}.IsCommon(Path{0}))
	assert.True(t, Path{1, 2}.IsSibling(Path{1, 5}))
	assert.False(t, Path{1, 2}.IsSibling(Path{1, 2}))
	assert.True(t, Path{0, 1}.EndsBefore(Path{0, 2, 5}))
	assert.Equal(t, Path{1, 3}, Path{1, 2}.Next())
	assert.Equal(t, Path{1}, Common(Path{1, 2, 3}, Path{1, 4}))
	assert.Len(t, Path{0, 1}.Levels(), 3)
}

func TestTransformPath(t *testing.T) {
	tests := []struct {
		name    string
		path    Path
		op      Operation
		want    Path
		removed bool
	}{
		{"insert before", Path{1}, Operation{Type: OpInsertNode, Path: Path{1}}, Path{2}, false},
		{"insert after", Path{0}, Operation{Type: OpInsertNode, Path: Path{1}}, Path{0}, false},
		{"insert shifts descendants", Path{1, 3}, Operation{Type: OpInsertNode, Path: Path{0}}, Path{2, 3}, false},
		{"remove self", Path{1}, Operation{Type: OpRemoveNode, Path: Path{1}}, nil, true},
		{"remove ancestor", Path{1, 0}, Operation{Type: OpRemoveNode, Path: Path{1}}, nil, true},
		{"remove before", Path{2, 0}, Operation{Type: OpRemoveNode, Path: Path{1}}, Path{1, 0}, false},
		{"split moves tail", Path{1, 3}, Operation{Type: OpSplitNode, Path: Path{1}, Position: 2}, Path{2, 1}, false},
		{"split keeps head", Path{1, 1}, Operation{Type: OpSplitNode, Path: Path{1}, Position: 2}, Path{1, 1}, false},
		{"merge into previous", Path{2, 1}, Operation{Type: OpMergeNode, Path: Path{2}, Position: 3}, Path{1, 4}, false},
		{"move self", Path{0}, Operation{Type: OpMoveNode, Path: Path{0}, NewPath: Path{2}}, Path{2}, false},
		{"move into later sibling", Path{0}, Operation{Type: OpMoveNode, Path: Path{0}, NewPath: Path{2, 0}}, Path{1, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TransformPath(tt.path, tt.op, AffinityForward)
			if tt.removed {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOperationInverse(t *testing.T) {
	e := newEditor(para(txt("ab")), para(txt("cd")))
	before := e.Document().Clone()

	ops := []Operation{
		{Type: OpInsertText, Path: Path{0, 0}, Offset: 1, Text: "xy"},
		{Type: OpSplitNode, Path: Path{1, 0}, Position: 1, Properties: &edtypes.Text{}},
		{Type: OpMoveNode, Path: Path{0}, NewPath: Path{1}},
		{Type: OpRemoveNode, Path: Path{0}, Node: para(txt("c"), txt("d"))},
	}
	require.NoError(t, e.Transact("ops", func() error {
		for _, op := range ops {
			e.apply(op)
		}
		for _, op := range Inverse(ops) {
			e.apply(op)
		}
		return nil
	}))
	assert.True(t, edtypes.EqualNodes(before.Children, e.Children()))
}

func TestInsertText_UndoRedo(t *testing.T) {
	e := newEditor(para(txt("hello")))
	require.NoError(t, e.Select(caret(Path{0, 0}, 5)))
	require.NoError(t, e.InsertText(" world"))

	assert.Equal(t, "hello world", e.Document().PlainText())
	assert.Equal(t, caret(Path{0, 0}, 11), *e.Selection())
	assert.Equal(t, []string{"insert_text"}, e.History().Undos())

	require.NoError(t, e.Undo())
	assert.Equal(t, "hello", e.Document().PlainText())
	assert.Equal(t, caret(Path{0, 0}, 5), *e.Selection())

	require.NoError(t, e.Redo())
	assert.Equal(t, "hello world", e.Document().PlainText())
	assert.Equal(t, caret(Path{0, 0}, 11), *e.Selection())

	assert.ErrorIs(t, e.Redo(), ErrNothingToRedo)
}

func TestMarks_ToggleRestores(t *testing.T) {
	e := newEditor(para(txt("hello world")))
	original := e.Document().Clone()
	require.NoError(t, e.Select(span(Path{0, 0}, 0, Path{0, 0}, 5)))

	require.NoError(t, e.AddMark(edtypes.MarkBold))
	p := e.Children()[0].(*edtypes.Paragraph)
	require.Len(t, p.Content, 2)
	assert.Equal(t, "hello", p.Content[0].(*edtypes.Text).Text)
	assert.True(t, p.Content[0].(*edtypes.Text).Marks.Bold)
	assert.False(t, p.Content[1].(*edtypes.Text).Marks.Bold)

	marks, ok := e.Marks()
	require.True(t, ok)
	assert.True(t, marks.Bold)

	require.NoError(t, e.RemoveMark(edtypes.MarkBold))
	assert.True(t, edtypes.EqualNodes(original.Children, e.Children()))
}

func TestMarks_PendingAtCaret(t *testing.T) {
	e := newEditor(para(txt("ab")))
	require.NoError(t, e.Select(caret(Path{0, 0}, 2)))
	require.NoError(t, e.AddMark(edtypes.MarkBold))

	require.NotNil(t, e.PendingMarks())
	assert.True(t, e.PendingMarks().Bold)
	assert.Equal(t, "ab", e.Document().PlainText())

	require.NoError(t, e.InsertText("c"))
	p := e.Children()[0].(*edtypes.Paragraph)
	require.Len(t, p.Content, 2)
	assert.Equal(t, "c", p.Content[1].(*edtypes.Text).Text)
	assert.True(t, p.Content[1].(*edtypes.Text).Marks.Bold)
	assert.Nil(t, e.PendingMarks())
	assert.Equal(t, caret(Path{0, 1}, 1), *e.Selection())
}

func TestMarks_StartOfTextUsesPrevious(t *testing.T) {
	e := newEditor(para(txt("a", edtypes.MarkBold), txt("b")))
	require.NoError(t, e.Select(caret(Path{0, 1}, 0)))
	marks, ok := e.Marks()
	require.True(t, ok)
	assert.True(t, marks.Bold)

	e.selection = nil
	_, ok = e.Marks()
	assert.False(t, ok)
}

func TestInsertNodes_SplitsBlock(t *testing.T) {
	e := newEditor(para(txt("ab")))
	require.NoError(t, e.Select(caret(Path{0, 0}, 1)))
	require.NoError(t, e.InsertNodes([]edtypes.Node{para(txt("X"))}, TransformOptions{}))

	require.Len(t, e.Children(), 3)
	assert.Equal(t, "a\nX\nb", e.Document().PlainText())
	assert.Equal(t, caret(Path{1, 0}, 1), *e.Selection())
}

func TestWrapUnwrap(t *testing.T) {
	e := newEditor(para(txt("one")), para(txt("two")))
	original := e.Document().Clone()
	require.NoError(t, e.Select(span(Path{0, 0}, 0, Path{1, 0}, 3)))

	require.NoError(t, e.WrapNodes(&edtypes.BulletedList{}, TransformOptions{}))
	require.Len(t, e.Children(), 1)
	list, ok := e.Children()[0].(*edtypes.BulletedList)
	require.True(t, ok)
	assert.Len(t, list.Content, 2)
	assert.Equal(t, span(Path{0, 0, 0}, 0, Path{0, 1, 0}, 3), *e.Selection())

	require.NoError(t, e.UnwrapNodes(TransformOptions{Match: MatchKind(edtypes.KindBulletedList), Split: true}))
	assert.True(t, edtypes.EqualNodes(original.Children, e.Children()))

	require.NoError(t, e.Undo())
	assert.Len(t, e.Children(), 1)
	require.NoError(t, e.Undo())
	assert.True(t, edtypes.EqualNodes(original.Children, e.Children()))
	assert.ErrorIs(t, e.Undo(), ErrNothingToUndo)
}

func TestDelete(t *testing.T) {
	t.Run("across blocks", func(t *testing.T) {
		e := newEditor(para(txt("hello")), para(txt("world")))
		require.NoError(t, e.Select(span(Path{0, 0}, 3, Path{1, 0}, 2)))
		require.NoError(t, e.Delete(DeleteOptions{}))
		assert.Equal(t, "helrld", e.Document().PlainText())
		assert.Len(t, e.Children(), 1)
		assert.Equal(t, caret(Path{0, 0}, 3), *e.Selection())
	})

	t.Run("backspace at block start merges", func(t *testing.T) {
		e := newEditor(para(txt("ab")), para(txt("cd")))
		require.NoError(t, e.Select(caret(Path{1, 0}, 0)))
		require.NoError(t, e.Delete(DeleteOptions{Reverse: true}))
		assert.Equal(t, "abcd", e.Document().PlainText())
		assert.Equal(t, caret(Path{0, 0}, 2), *e.Selection())
	})

	t.Run("backspace one character", func(t *testing.T) {
		e := newEditor(para(txt("abc")))
		require.NoError(t, e.Select(caret(Path{0, 0}, 2)))
		require.NoError(t, e.Delete(DeleteOptions{Reverse: true}))
		assert.Equal(t, "ac", e.Document().PlainText())
		assert.Equal(t, caret(Path{0, 0}, 1), *e.Selection())
	})
}

func TestTransactionRollback(t *testing.T) {
	e := newEditor(para(txt("ab")))
	before := e.Document().Clone()
	boom := errors.New("boom")

	err := e.Transact("fail", func() error {
		e.apply(Operation{Type: OpInsertNode, Path: Path{1}, Node: para(txt("x"))})
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, edtypes.EqualNodes(before.Children, e.Children()))

	err = e.Apply(Operation{Type: OpRemoveNode, Path: Path{5}})
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.True(t, edtypes.EqualNodes(before.Children, e.Children()))

	err = e.Transact("outer", func() error {
		e.apply(Operation{Type: OpInsertText, Path: Path{0, 0}, Offset: 0, Text: "z"})
		_ = e.Transact("inner", func() error { return boom })
		return nil
	})
	assert.ErrorIs(t, err, ErrTransactionPoisoned)
	assert.True(t, edtypes.EqualNodes(before.Children, e.Children()))
	assert.False(t, e.InTransaction())
	assert.False(t, e.History().CanUndo())
}

func TestNormalize(t *testing.T) {
	e := newEditor(
		&edtypes.Paragraph{},
		para(txt("a"), txt("b"), txt("")),
		para(edtypes.NewLink("https://x", txt("link"))),
		&edtypes.BulletedList{},
	)
	require.NoError(t, e.Normalize())

	require.Len(t, e.Children(), 3)
	assert.True(t, edtypes.Equal(para(txt("")), e.Children()[0]))
	assert.True(t, edtypes.Equal(para(txt("ab")), e.Children()[1]))

	withLink := e.Children()[2].(*edtypes.Paragraph)
	require.Len(t, withLink.Content, 3)
	assert.Equal(t, edtypes.KindLink, edtypes.KindOf(withLink.Content[1]))

	empty := New(nil)
	require.NoError(t, empty.Normalize())
	assert.Len(t, empty.Children(), 1)
}

func TestNodes_Modes(t *testing.T) {
	e := newEditor(
		&edtypes.BulletedList{Content: []edtypes.Node{
			edtypes.NewListItem(txt("a")),
			edtypes.NewListItem(txt("b")),
		}},
		para(txt("c")),
	)
	all := span(Path{0, 0, 0}, 0, Path{1, 0}, 1)

	lowest := Collect(e.Nodes(NodesOptions{At: all, Match: IsBlock, Mode: ModeLowest}))
	assert.Equal(t, []Path{{0, 0}, {0, 1}, {1}}, paths(lowest))

	highest := Collect(e.Nodes(NodesOptions{At: all, Match: IsBlock, Mode: ModeHighest}))
	assert.Equal(t, []Path{{0}, {1}}, paths(highest))

	texts := Collect(e.Nodes(NodesOptions{At: all, Match: IsText}))
	assert.Len(t, texts, 3)

	blk, ok := e.Above(Point{Path: Path{0, 1, 0}}, IsBlock, ModeLowest, false)
	require.True(t, ok)
	assert.Equal(t, Path{0, 1}, blk.Path)
}

func TestUnhangRange(t *testing.T) {
	e := newEditor(para(txt("one")), para(txt("two")))
	r := e.UnhangRange(span(Path{0, 0}, 0, Path{1, 0}, 0))
	assert.Equal(t, span(Path{0, 0}, 0, Path{0, 0}, 3), r)

	kept := span(Path{0, 0}, 1, Path{1, 0}, 0)
	assert.Equal(t, kept, e.UnhangRange(kept))
}

func TestRefsFollowOperations(t *testing.T) {
	e := newEditor(para(txt("a")), para(txt("b")))
	ref := e.PathRef(Path{1}, AffinityForward)
	require.NoError(t, e.InsertNodes([]edtypes.Node{para(txt("x"))}, TransformOptions{At: Path{0}}))
	assert.Equal(t, Path{2}, ref.Current())
	require.NoError(t, e.RemoveNodes(TransformOptions{At: Path{2}}))
	assert.Nil(t, ref.Unref())
}
