package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

// Editor - сессия редактирования одного документа: дерево, выделение, отложенные стили и история.
// Не безопасен для конкурентного использования.
type Editor struct {
	doc       *edtypes.Document
	selection *Range
	marks     *edtypes.Marks

	pathRefs  map[*PathRef]struct{}
	pointRefs map[*PointRef]struct{}
	rangeRefs map[*RangeRef]struct{}

	tx        *transaction
	history   *History
	replaying bool

	// OnChange вызывается после каждой успешно завершенной транзакции с ее операциями
	OnChange func(ops []Operation)
}

// New создает редактор поверх документа. Документ не копируется.
func New(doc *edtypes.Document) *Editor {
	if doc == nil {
		doc = &edtypes.Document{}
	}
	return &Editor{
		doc:       doc,
		pathRefs:  make(map[*PathRef]struct{}),
		pointRefs: make(map[*PointRef]struct{}),
		rangeRefs: make(map[*RangeRef]struct{}),
		history:   NewHistory(DefaultHistoryDepth),
	}
}

// Document возвращает текущее дерево. Изменять его напрямую нельзя, только через операции.
func (e *Editor) Document() *edtypes.Document {
	return e.doc
}

// Children возвращает блоки верхнего уровня
func (e *Editor) Children() []edtypes.Node {
	return e.doc.Children
}

// Selection возвращает копию текущего выделения или nil
func (e *Editor) Selection() *Range {
	if e.selection == nil {
		return nil
	}
	r := e.selection.Clone()
	return &r
}

// PendingMarks - стили, которые получит следующий набранный текст при свернутом выделении
func (e *Editor) PendingMarks() *edtypes.Marks {
	if e.marks == nil {
		return nil
	}
	m := e.marks.Clone()
	return &m
}

// SetPendingMarks устанавливает или сбрасывает (nil) отложенные стили
func (e *Editor) SetPendingMarks(m *edtypes.Marks) {
	if m == nil {
		e.marks = nil
		return
	}
	c := m.Clone()
	e.marks = &c
}

func (e *Editor) History() *History {
	return e.history
}

// Node возвращает узел по пути
func (e *Editor) Node(path Path) (edtypes.Node, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: root is not a node", ErrInvalidPath)
	}
	kids := e.doc.Children
	var n edtypes.Node
	for i, idx := range path {
		if idx < 0 || idx >= len(kids) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
		}
		n = kids[idx]
		if i == len(path)-1 {
			break
		}
		el, ok := n.(edtypes.Element)
		if !ok {
			return nil, fmt.Errorf("%w: %s descends into text", ErrInvalidPath, path)
		}
		kids = el.Children()
	}
	return n, nil
}

// HasNode сообщает, существует ли узел по пути
func (e *Editor) HasNode(path Path) bool {
	_, err := e.Node(path)
	return err == nil
}

func (e *Editor) mustNode(path Path) edtypes.Node {
	n, err := e.Node(path)
	if err != nil {
		fail(err)
	}
	return n
}

func (e *Editor) mustText(path Path) *edtypes.Text {
	t, ok := e.mustNode(path).(*edtypes.Text)
	if !ok {
		fail(fmt.Errorf("%w: %s", ErrNotText, path))
	}
	return t
}

// childrenAt возвращает детей корня (пустой путь) или элемента
func (e *Editor) childrenAt(path Path) []edtypes.Node {
	if len(path) == 0 {
		return e.doc.Children
	}
	el, ok := e.mustNode(path).(edtypes.Element)
	if !ok {
		fail(fmt.Errorf("%w: %s", ErrNotElement, path))
	}
	return el.Children()
}

// replaceChildren подменяет детей корня или элемента. Элемент заменяется копией с новыми детьми.
func (e *Editor) replaceChildren(path Path, kids []edtypes.Node) {
	if len(path) == 0 {
		e.doc.Children = kids
		return
	}
	el := e.mustNode(path).(edtypes.Element)
	e.replaceNode(path, el.WithChildren(kids))
}

func (e *Editor) replaceNode(path Path, n edtypes.Node) {
	parent := e.childrenAt(path.Parent())
	parent[path.Last()] = n
}

// Apply применяет операцию. Вне транзакции операция оборачивается в собственную транзакцию.
func (e *Editor) Apply(op Operation) error {
	return e.Transact(string(op.Type), func() error {
		e.apply(op)
		return nil
	})
}

func (e *Editor) apply(op Operation) {
	slog.Debug("Apply operation", "op", op.String())

	// Ссылки пересчитываются до изменения дерева, как и выделение
	for ref := range e.pathRefs {
		ref.transform(op)
	}
	for ref := range e.pointRefs {
		ref.transform(op)
	}
	for ref := range e.rangeRefs {
		ref.transform(op)
	}

	e.applyToTree(op)

	if e.tx != nil {
		e.tx.ops = append(e.tx.ops, op)
	}
}

func (e *Editor) applyToTree(op Operation) {
	switch op.Type {
	case OpInsertNode:
		if len(op.Path) == 0 {
			fail(ErrRootPath)
		}
		parentPath := op.Path.Parent()
		kids := e.childrenAt(parentPath)
		idx := op.Path.Last()
		if idx > len(kids) || idx < 0 {
			fail(fmt.Errorf("%w: cannot insert at %s", ErrInvalidPath, op.Path))
		}
		e.replaceChildren(parentPath, slices.Insert(slices.Clone(kids), idx, edtypes.Clone(op.Node)))

	case OpInsertText:
		t := e.mustText(op.Path)
		runes := []rune(t.Text)
		if op.Offset < 0 || op.Offset > len(runes) {
			fail(fmt.Errorf("%w: %d in %s", ErrInvalidOffset, op.Offset, op.Path))
		}
		t.Text = string(runes[:op.Offset]) + op.Text + string(runes[op.Offset:])

	case OpMergeNode:
		if len(op.Path) == 0 || !op.Path.HasPrevious() {
			fail(fmt.Errorf("%w: cannot merge %s", ErrInvalidPath, op.Path))
		}
		node := e.mustNode(op.Path)
		prevPath := op.Path.Previous()
		prev := e.mustNode(prevPath)
		switch p := prev.(type) {
		case *edtypes.Text:
			t, ok := node.(*edtypes.Text)
			if !ok {
				fail(fmt.Errorf("%w: %s", ErrMergeMismatch, op.Path))
			}
			p.Text += t.Text
		case edtypes.Element:
			el, ok := node.(edtypes.Element)
			if !ok {
				fail(fmt.Errorf("%w: %s", ErrMergeMismatch, op.Path))
			}
			merged := append(slices.Clone(p.Children()), el.Children()...)
			e.replaceNode(prevPath, p.WithChildren(merged))
		}
		parentPath := op.Path.Parent()
		e.replaceChildren(parentPath, slices.Delete(slices.Clone(e.childrenAt(parentPath)), op.Path.Last(), op.Path.Last()+1))

	case OpMoveNode:
		if op.Path.IsAncestor(op.NewPath) {
			fail(fmt.Errorf("%w: %s -> %s", ErrMoveIntoSelf, op.Path, op.NewPath))
		}
		if len(op.Path) == 0 || len(op.NewPath) == 0 {
			fail(ErrRootPath)
		}
		node := e.mustNode(op.Path)
		parentPath := op.Path.Parent()
		e.replaceChildren(parentPath, slices.Delete(slices.Clone(e.childrenAt(parentPath)), op.Path.Last(), op.Path.Last()+1))

		truePath, _ := TransformPath(op.Path, op, AffinityForward)
		newParent := truePath.Parent()
		kids := e.childrenAt(newParent)
		idx := truePath.Last()
		if idx > len(kids) {
			fail(fmt.Errorf("%w: cannot move to %s", ErrInvalidPath, op.NewPath))
		}
		e.replaceChildren(newParent, slices.Insert(slices.Clone(kids), idx, node))

	case OpRemoveNode:
		if len(op.Path) == 0 {
			fail(ErrRootPath)
		}
		e.mustNode(op.Path)
		parentPath := op.Path.Parent()
		e.replaceChildren(parentPath, slices.Delete(slices.Clone(e.childrenAt(parentPath)), op.Path.Last(), op.Path.Last()+1))

	case OpRemoveText:
		t := e.mustText(op.Path)
		runes := []rune(t.Text)
		n := utf8.RuneCountInString(op.Text)
		if op.Offset < 0 || op.Offset+n > len(runes) {
			fail(fmt.Errorf("%w: %d+%d in %s", ErrInvalidOffset, op.Offset, n, op.Path))
		}
		t.Text = string(runes[:op.Offset]) + string(runes[op.Offset+n:])

	case OpSetNode:
		if len(op.Path) == 0 {
			fail(ErrRootPath)
		}
		switch cur := e.mustNode(op.Path).(type) {
		case *edtypes.Text:
			props, ok := op.New.(*edtypes.Text)
			if !ok {
				fail(fmt.Errorf("%w: %s", ErrNotText, op.Path))
			}
			cur.Marks = props.Marks.Clone()
		case edtypes.Element:
			props, ok := op.New.(edtypes.Element)
			if !ok {
				fail(fmt.Errorf("%w: %s", ErrNotElement, op.Path))
			}
			e.replaceNode(op.Path, props.WithChildren(cur.Children()))
		}

	case OpSplitNode:
		if len(op.Path) == 0 {
			fail(ErrRootPath)
		}
		var after edtypes.Node
		switch cur := e.mustNode(op.Path).(type) {
		case *edtypes.Text:
			runes := []rune(cur.Text)
			if op.Position < 0 || op.Position > len(runes) {
				fail(fmt.Errorf("%w: split %d in %s", ErrInvalidOffset, op.Position, op.Path))
			}
			cur.Text = string(runes[:op.Position])
			nt := &edtypes.Text{Text: string(runes[op.Position:])}
			if props, ok := op.Properties.(*edtypes.Text); ok {
				nt.Marks = props.Marks.Clone()
			} else {
				nt.Marks = cur.Marks.Clone()
			}
			after = nt
		case edtypes.Element:
			kids := cur.Children()
			if op.Position < 0 || op.Position > len(kids) {
				fail(fmt.Errorf("%w: split %d in %s", ErrInvalidOffset, op.Position, op.Path))
			}
			before := slices.Clone(kids[:op.Position])
			rest := slices.Clone(kids[op.Position:])
			e.replaceNode(op.Path, cur.WithChildren(before))
			props, ok := op.Properties.(edtypes.Element)
			if !ok {
				props = cur
			}
			after = props.WithChildren(rest)
		}
		parentPath := op.Path.Parent()
		e.replaceChildren(parentPath, slices.Insert(slices.Clone(e.childrenAt(parentPath)), op.Path.Last()+1, after))

	case OpSetSelection:
		if op.NewSelection == nil {
			e.selection = nil
		} else {
			r := op.NewSelection.Clone()
			e.selection = &r
		}
		e.marks = nil
		return

	default:
		fail(fmt.Errorf("engine: unknown operation %q", op.Type))
	}

	e.transformSelection(op)
}

func (e *Editor) transformSelection(op Operation) {
	if e.selection == nil {
		return
	}
	sel := *e.selection
	points := []*Point{&sel.Anchor, &sel.Focus}
	for _, pt := range points {
		res, ok := TransformPoint(*pt, op, AffinityForward)
		if ok {
			*pt = res
			continue
		}
		if op.Type != OpRemoveNode {
			e.selection = nil
			return
		}
		np, found := e.fallbackPoint(op.Path)
		if !found {
			e.selection = nil
			return
		}
		*pt = np
	}
	e.selection = &sel
}

// fallbackPoint выбирает ближайший текст после удаления узла, в котором была точка выделения
func (e *Editor) fallbackPoint(removed Path) (Point, bool) {
	var prev, next *Point
	for n, p := range e.texts() {
		if p.Compare(removed) == -1 {
			t := n.(*edtypes.Text)
			prev = &Point{Path: p, Offset: utf8.RuneCountInString(t.Text)}
			continue
		}
		next = &Point{Path: p, Offset: 0}
		break
	}
	preferNext := false
	if prev != nil && next != nil {
		if next.Path.Equal(removed) {
			preferNext = !next.Path.HasPrevious()
		} else {
			preferNext = len(Common(prev.Path, removed)) < len(Common(next.Path, removed))
		}
	}
	switch {
	case prev != nil && !preferNext:
		return *prev, true
	case next != nil:
		return *next, true
	}
	return Point{}, false
}
