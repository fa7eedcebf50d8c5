package engine

import (
	"slices"
	"unicode/utf8"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

// DeleteOptions - параметры Delete. At nil - текущее выделение.
type DeleteOptions struct {
	At       Location
	Reverse  bool
	Distance int
	Hanging  bool
	Voids    bool
}

// Delete удаляет содержимое места At. Для свернутого выделения удаляет Distance символов
// вперед или назад (Reverse), void элемент под кареткой удаляется целиком.
func (e *Editor) Delete(opts DeleteOptions) error {
	return e.Transact("delete", func() error {
		e.delete(opts)
		return nil
	})
}

func (e *Editor) delete(o DeleteOptions) {
	at, ok := e.resolveAt(o.At)
	if !ok {
		return
	}
	distance := max(o.Distance, 1)
	hanging := o.Hanging

	if r, ok := at.(Range); ok && r.IsCollapsed() {
		at = r.Anchor
	}
	if pt, ok := at.(Point); ok {
		if v, found := e.Above(pt, IsVoid, ModeHighest, false); found && !o.Voids {
			at = v.Path
		} else {
			var target Point
			var ok bool
			if o.Reverse {
				target, ok = e.Before(pt, distance)
				if !ok {
					target = e.Start(Path{})
				}
			} else {
				target, ok = e.After(pt, distance)
				if !ok {
					target = e.End(Path{})
				}
			}
			at = Range{Anchor: pt, Focus: target}
			hanging = true
		}
	}

	if p, ok := at.(Path); ok {
		e.removeNodes(TransformOptions{At: p, Voids: o.Voids})
		return
	}
	r := at.(Range)
	if r.IsCollapsed() {
		return
	}
	if !hanging {
		if _, end := r.Edges(); !end.Equal(e.End(Path{})) {
			r = e.UnhangRange(r)
		}
	}

	start, end := r.Edges()
	startBlock, hasStartBlock := e.Above(start, IsBlock, ModeLowest, o.Voids)
	endBlock, hasEndBlock := e.Above(end, IsBlock, ModeLowest, o.Voids)
	isAcrossBlocks := hasStartBlock && hasEndBlock && !startBlock.Path.Equal(endBlock.Path)
	isSingleText := start.Path.Equal(end.Path)

	var startVoid, endVoid bool
	if !o.Voids {
		_, startVoid = e.Above(start, IsVoid, ModeHighest, false)
		_, endVoid = e.Above(end, IsVoid, ModeHighest, false)
	}
	// Точки внутри inline void выносятся наружу в пределах блока
	if startVoid {
		if before, ok := e.Before(start, 1); ok && hasStartBlock && startBlock.Path.IsAncestor(before.Path) {
			start = before
		}
	}
	if endVoid {
		if after, ok := e.After(end, 1); ok && hasEndBlock && endBlock.Path.IsAncestor(after.Path) {
			end = after
		}
	}

	// Самые верхние узлы целиком внутри диапазона, плюс void элементы
	var matches []Path
	var lastPath Path
	for n, p := range e.Nodes(NodesOptions{At: r, Voids: o.Voids}) {
		if lastPath != nil && p.Compare(lastPath) == 0 {
			continue
		}
		if (!o.Voids && edtypes.IsVoid(n)) || (!p.IsCommon(start.Path) && !p.IsCommon(end.Path)) {
			matches = append(matches, p)
			lastPath = p
		}
	}

	refs := make([]*PathRef, len(matches))
	for i, p := range matches {
		refs[i] = e.PathRef(p, AffinityForward)
	}
	startRef := e.PointRef(start, AffinityForward)
	endRef := e.PointRef(end, AffinityForward)

	if !isSingleText && !startVoid {
		if pt := startRef.Current(); pt != nil {
			t := e.mustText(pt.Path)
			runes := []rune(t.Text)
			if start.Offset < len(runes) {
				e.apply(Operation{Type: OpRemoveText, Path: pt.Path.Clone(), Offset: start.Offset, Text: string(runes[start.Offset:])})
			}
		}
	}

	for _, ref := range slices.Backward(refs) {
		if p := ref.Unref(); p != nil {
			e.removeNodes(TransformOptions{At: p, Voids: o.Voids})
		}
	}

	if !endVoid {
		if pt := endRef.Current(); pt != nil {
			t := e.mustText(pt.Path)
			runes := []rune(t.Text)
			offset := 0
			if isSingleText {
				offset = start.Offset
			}
			to := min(pt.Offset, len(runes))
			if to > offset {
				e.apply(Operation{Type: OpRemoveText, Path: pt.Path.Clone(), Offset: offset, Text: string(runes[offset:to])})
			}
		}
	}

	if !isSingleText && isAcrossBlocks && endRef.Current() != nil && startRef.Current() != nil {
		e.mergeNodes(TransformOptions{At: *endRef.Current(), Hanging: true, Voids: o.Voids})
	}

	var point *Point
	if o.Reverse {
		point = startRef.Unref()
		if p := endRef.Unref(); point == nil {
			point = p
		}
	} else {
		point = endRef.Unref()
		if p := startRef.Unref(); point == nil {
			point = p
		}
	}
	if o.At == nil && point != nil {
		e.selectRange(Collapsed(*point))
	}
}

// deleteRange удаляет содержимое диапазона
func (e *Editor) deleteRange(r Range) {
	e.delete(DeleteOptions{At: r})
}

// deleteRangeToPoint удаляет диапазон и возвращает точку, в которую он схлопнулся
func (e *Editor) deleteRangeToPoint(r Range) (Point, bool) {
	if r.IsCollapsed() {
		return r.Anchor, true
	}
	_, end := r.Edges()
	ref := e.PointRef(end, AffinityForward)
	e.deleteRange(r)
	p := ref.Unref()
	if p == nil {
		return Point{}, false
	}
	return *p, true
}

// Before возвращает точку на distance символов раньше. Граница блоков считается одним символом,
// void элемент - одной позицией.
func (e *Editor) Before(at Point, distance int) (Point, bool) {
	return e.step(at, distance, true)
}

// After возвращает точку на distance символов позже
func (e *Editor) After(at Point, distance int) (Point, bool) {
	return e.step(at, distance, false)
}

type leafPos struct {
	path  Path
	size  int
	block Path
	void  bool
}

// leaves возвращает тексты документа с их блоками. Тексты внутри void схлопываются в одну позицию.
func (e *Editor) leaves() []leafPos {
	var res []leafPos
	for n, p := range e.texts() {
		if v, ok := e.Above(p, IsVoid, ModeHighest, false); ok {
			if len(res) > 0 && res[len(res)-1].void && v.Path.IsAncestor(res[len(res)-1].path) {
				continue
			}
			res = append(res, leafPos{path: p, block: v.Path, void: true})
			continue
		}
		var block Path
		if b, ok := e.Above(p, IsBlock, ModeLowest, false); ok {
			block = b.Path
		}
		res = append(res, leafPos{path: p, size: utf8.RuneCountInString(n.(*edtypes.Text).Text), block: block})
	}
	return res
}

func (e *Editor) step(at Point, distance int, reverse bool) (Point, bool) {
	leaves := e.leaves()
	idx := slices.IndexFunc(leaves, func(l leafPos) bool { return l.path.Equal(at.Path) })
	if idx < 0 {
		if v, ok := e.Above(at, IsVoid, ModeHighest, false); ok {
			idx = slices.IndexFunc(leaves, func(l leafPos) bool { return v.Path.IsAncestor(l.path) })
		}
		if idx < 0 {
			return Point{}, false
		}
		at = Point{Path: leaves[idx].path}
	}
	cur := at
	for distance > 0 {
		l := leaves[idx]
		if !l.void {
			if reverse && cur.Offset > 0 {
				cur.Offset--
				distance--
				continue
			}
			if !reverse && cur.Offset < l.size {
				cur.Offset++
				distance--
				continue
			}
		}
		next := idx + 1
		if reverse {
			next = idx - 1
		}
		if next < 0 || next >= len(leaves) {
			return Point{}, false
		}
		nl := leaves[next]
		idx = next
		offset := 0
		if reverse && !nl.void {
			offset = nl.size
		}
		cur = Point{Path: nl.path.Clone(), Offset: offset}
		// Переход между текстами одного блока не расходует символ
		if !l.void && !nl.void && l.block.Equal(nl.block) {
			continue
		}
		distance--
	}
	return cur, true
}

// InsertText вставляет текст в выделение. Отложенные стили превращают вставку в новый текстовый узел.
func (e *Editor) InsertText(text string) error {
	if e.selection == nil {
		return nil
	}
	return e.Transact("insert_text", func() error {
		if e.marks != nil {
			node := &edtypes.Text{Text: text, Marks: e.marks.Clone()}
			e.insertNodes([]edtypes.Node{node}, TransformOptions{})
		} else {
			e.insertText(text, nil, false)
		}
		e.marks = nil
		return nil
	})
}

// InsertTextAt вставляет текст в место at без учета отложенных стилей
func (e *Editor) InsertTextAt(text string, at Location) error {
	return e.Transact("insert_text", func() error {
		e.insertText(text, at, false)
		return nil
	})
}

func (e *Editor) insertText(text string, at Location, voids bool) {
	at, ok := e.resolveAt(at)
	if !ok {
		return
	}
	if p, ok := at.(Path); ok {
		at = e.RangeOf(p, nil)
	}
	if r, ok := at.(Range); ok {
		if r.IsCollapsed() {
			at = r.Anchor
		} else {
			end := r.End()
			if _, inVoid := e.Void(end); !voids && inVoid {
				return
			}
			startRef := e.PointRef(r.Start(), AffinityForward)
			endRef := e.PointRef(end, AffinityForward)
			e.delete(DeleteOptions{At: r, Voids: voids})
			pt := startRef.Unref()
			if ep := endRef.Unref(); pt == nil {
				pt = ep
			}
			if pt == nil {
				return
			}
			at = *pt
			e.selectRange(Collapsed(*pt))
		}
	}
	pt := at.(Point)
	if _, inVoid := e.Void(pt); !voids && inVoid {
		return
	}
	if text != "" {
		e.apply(Operation{Type: OpInsertText, Path: pt.Path.Clone(), Offset: pt.Offset, Text: text})
	}
}

// Marks возвращает стили, которые получит вводимый текст: отложенные стили при свернутом
// выделении, иначе стили первого текста выделения. В начале текста берутся стили предыдущего
// текста того же блока. Без выделения ok=false.
func (e *Editor) Marks() (edtypes.Marks, bool) {
	if e.selection == nil {
		return edtypes.Marks{}, false
	}
	if e.marks != nil {
		return e.marks.Clone(), true
	}
	sel := *e.selection
	anchor, focus := sel.Anchor, sel.Focus

	if sel.IsExpanded() {
		if sel.IsBackward() {
			anchor, focus = focus, anchor
		}
		if e.IsEnd(anchor, anchor.Path) {
			if after, ok := e.After(anchor, 1); ok {
				anchor = after
			}
		}
		if en, ok := e.FirstMatch(NodesOptions{At: Range{Anchor: anchor, Focus: focus}, Match: IsText}); ok {
			return en.Node.(*edtypes.Text).Marks.Clone(), true
		}
		return edtypes.Marks{}, true
	}

	n, err := e.Node(anchor.Path)
	if err != nil {
		return edtypes.Marks{}, false
	}
	t, ok := n.(*edtypes.Text)
	if !ok {
		return edtypes.Marks{}, false
	}
	if anchor.Offset == 0 {
		prev, hasPrev := e.Previous(anchor.Path, IsText)
		_, inVoid := e.Void(anchor)
		block, hasBlock := e.Above(anchor, IsBlock, ModeLowest, false)
		if hasPrev && !inVoid && hasBlock && block.Path.IsAncestor(prev.Path) {
			t = prev.Node.(*edtypes.Text)
		}
	}
	return t.Marks.Clone(), true
}

// Marks возвращает текущие стили редактора
func Marks(e *Editor) (edtypes.Marks, bool) {
	return e.Marks()
}

// AddMark включает стиль
func (e *Editor) AddMark(mark edtypes.Mark) error {
	return e.UpdateMarks(func(m edtypes.Marks) edtypes.Marks { return m.With(mark, true) })
}

// RemoveMark выключает стиль
func (e *Editor) RemoveMark(mark edtypes.Mark) error {
	return e.UpdateMarks(func(m edtypes.Marks) edtypes.Marks { return m.With(mark, false) })
}

// UpdateMarks применяет fn к стилям. Для развернутого выделения тексты разделяются по границам
// выделения и обновляются, для каретки fn меняет отложенные стили.
func (e *Editor) UpdateMarks(fn func(edtypes.Marks) edtypes.Marks) error {
	if e.selection == nil {
		return nil
	}
	if e.selection.IsExpanded() {
		return e.Transact("set_marks", func() error {
			e.setNodes(func(n edtypes.Node) edtypes.Node {
				t := n.(*edtypes.Text)
				return &edtypes.Text{Marks: fn(t.Marks.Clone())}
			}, TransformOptions{Match: e.markableText, Split: true, Voids: true})
			return nil
		})
	}
	cur, _ := e.Marks()
	next := fn(cur)
	e.marks = &next
	return nil
}

// markableText - тексты вне void элементов
func (e *Editor) markableText(n edtypes.Node, p Path) bool {
	if _, ok := n.(*edtypes.Text); !ok {
		return false
	}
	parent, _, ok := e.Parent(p)
	return !ok || !edtypes.IsVoid(parent)
}
