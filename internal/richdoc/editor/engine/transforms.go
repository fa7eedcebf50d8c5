package engine

import (
	"fmt"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

// TransformOptions - общие параметры преобразований.
// At nil - текущее выделение. Mode ModeAll трактуется как ModeLowest.
type TransformOptions struct {
	At      Location
	Match   MatchFunc
	Mode    Mode
	Voids   bool
	Hanging bool
	Split   bool

	// InsertNodes: выделить вставленное даже при явном At
	Select bool
	// MoveNodes: путь назначения
	To Path
	// SplitNodes
	Height int
	Always bool
}

func (o TransformOptions) mode() Mode {
	if o.Mode == ModeAll {
		return ModeLowest
	}
	return o.Mode
}

// NodeUpdate возвращает новые свойства узла. Дети и строка текста из результата не используются.
type NodeUpdate func(n edtypes.Node) edtypes.Node

func (e *Editor) defaultMatch(at Location) MatchFunc {
	if p, ok := at.(Path); ok {
		return MatchPath(p)
	}
	return IsBlock
}

func paths(entries []Entry) []Path {
	res := make([]Path, len(entries))
	for i, en := range entries {
		res[i] = en.Path
	}
	return res
}

// InsertNodes вставляет узлы в место At. Без At вставляет в выделение и выделяет конец вставленного.
func (e *Editor) InsertNodes(nodes []edtypes.Node, opts TransformOptions) error {
	return e.Transact("insert_nodes", func() error {
		e.insertNodes(nodes, opts)
		return nil
	})
}

func (e *Editor) insertNodes(nodes []edtypes.Node, o TransformOptions) {
	if len(nodes) == 0 {
		return
	}
	node := nodes[0]
	at := o.At
	sel := o.Select
	if at == nil {
		switch {
		case e.selection != nil:
			at = *e.selection
		case len(e.doc.Children) > 0:
			at = e.End(Path{})
		default:
			at = Path{0}
		}
		sel = true
	}

	if r, ok := at.(Range); ok {
		if !o.Hanging {
			r = e.UnhangRange(r)
		}
		if r.IsCollapsed() {
			at = r.Anchor
		} else {
			_, end := r.Edges()
			ref := e.PointRef(end, AffinityForward)
			e.deleteRange(r)
			pt := ref.Unref()
			if pt == nil {
				return
			}
			at = *pt
		}
	}

	mode := o.mode()
	if pt, ok := at.(Point); ok {
		match := o.Match
		if match == nil {
			switch {
			case KindIsText(node):
				match = IsText
			case edtypes.IsInline(node):
				match = IsInlineOrText
			default:
				match = IsBlock
			}
		}
		entry, found := e.FirstMatch(NodesOptions{At: pt.Path, Match: match, Mode: mode, Voids: o.Voids})
		if !found {
			return
		}
		ref := e.PathRef(entry.Path, AffinityForward)
		isAtEnd := e.IsEnd(pt, entry.Path)
		e.splitNodes(TransformOptions{At: pt, Match: match, Mode: mode, Voids: o.Voids})
		p := ref.Unref()
		if p == nil {
			return
		}
		if isAtEnd {
			at = p.Next()
		} else {
			at = p
		}
	}

	path := at.(Path)
	parentPath := path.Parent()
	if !o.Voids && len(e.Levels(parentPath, IsVoid, false, true)) > 0 {
		return
	}
	idx := path.Last()
	for _, n := range nodes {
		e.apply(Operation{Type: OpInsertNode, Path: parentPath.Child(idx), Node: edtypes.Clone(n)})
		idx++
	}
	if sel {
		e.selectRange(Collapsed(e.End(parentPath.Child(idx - 1))))
	}
}

// KindIsText сообщает, является ли узел текстом
func KindIsText(n edtypes.Node) bool {
	_, ok := n.(*edtypes.Text)
	return ok
}

// RemoveNodes удаляет подходящие узлы
func (e *Editor) RemoveNodes(opts TransformOptions) error {
	return e.Transact("remove_nodes", func() error {
		e.removeNodes(opts)
		return nil
	})
}

func (e *Editor) removeNodes(o TransformOptions) {
	at, ok := e.resolveAt(o.At)
	if !ok {
		return
	}
	match := o.Match
	if match == nil {
		match = e.defaultMatch(at)
	}
	if r, ok := at.(Range); ok && !o.Hanging {
		at = e.UnhangRange(r)
	}
	var refs []*PathRef
	for _, p := range paths(Collect(e.Nodes(NodesOptions{At: at, Match: match, Mode: o.mode(), Voids: o.Voids}))) {
		refs = append(refs, e.PathRef(p, AffinityForward))
	}
	for _, ref := range refs {
		p := ref.Unref()
		if p == nil {
			continue
		}
		e.apply(Operation{Type: OpRemoveNode, Path: p, Node: edtypes.Clone(e.mustNode(p))})
	}
}

// MoveNodes перемещает подходящие узлы в To
func (e *Editor) MoveNodes(opts TransformOptions) error {
	return e.Transact("move_nodes", func() error {
		e.moveNodes(opts)
		return nil
	})
}

func (e *Editor) moveNodes(o TransformOptions) {
	at, ok := e.resolveAt(o.At)
	if !ok {
		return
	}
	match := o.Match
	if match == nil {
		match = e.defaultMatch(at)
	}
	toRef := e.PathRef(o.To, AffinityForward)
	defer toRef.Unref()

	var refs []*PathRef
	for _, p := range paths(Collect(e.Nodes(NodesOptions{At: at, Match: match, Mode: o.mode(), Voids: o.Voids}))) {
		refs = append(refs, e.PathRef(p, AffinityForward))
	}
	for _, ref := range refs {
		path := ref.Unref()
		newPath := toRef.Current()
		if path == nil || newPath == nil {
			continue
		}
		if len(path) != 0 {
			e.apply(Operation{Type: OpMoveNode, Path: path, NewPath: newPath.Clone()})
		}
		// Перемещение к более позднему соседу вставляет перед точкой назначения, сдвигаем цель
		if cur := toRef.Current(); cur != nil && newPath.IsSibling(path) && newPath.IsAfter(path) {
			toRef.current = cur.Next()
		}
	}
}

// SetNodes обновляет свойства подходящих узлов
func (e *Editor) SetNodes(update NodeUpdate, opts TransformOptions) error {
	return e.Transact("set_nodes", func() error {
		e.setNodes(update, opts)
		return nil
	})
}

func (e *Editor) setNodes(update NodeUpdate, o TransformOptions) {
	at, ok := e.resolveAt(o.At)
	if !ok {
		return
	}
	match := o.Match
	if match == nil {
		match = e.defaultMatch(at)
	}
	mode := o.mode()
	if r, ok := at.(Range); ok && !o.Hanging {
		at = e.UnhangRange(r)
	}

	if r, ok := at.(Range); ok && o.Split {
		if r.IsCollapsed() {
			if t, _ := e.Leaf(r.Anchor); t.Text != "" {
				return
			}
		}
		ref := e.RangeRef(r, AffinityInward)
		start, end := r.Edges()
		endAtEnd := e.IsEnd(end, end.Path)
		e.splitNodes(TransformOptions{At: end, Match: match, Mode: mode, Voids: o.Voids, Always: !endAtEnd})
		startAtStart := e.IsStart(start, start.Path)
		e.splitNodes(TransformOptions{At: start, Match: match, Mode: mode, Voids: o.Voids, Always: !startAtStart})
		nr := ref.Unref()
		if nr == nil {
			return
		}
		at = *nr
		if o.At == nil {
			e.selectRange(*nr)
		}
	}

	for _, en := range Collect(e.Nodes(NodesOptions{At: at, Match: match, Mode: mode, Voids: o.Voids})) {
		if len(en.Path) == 0 {
			continue
		}
		cur := e.mustNode(en.Path)
		next := update(cur)
		if next == nil || edtypes.EqualProps(cur, next) {
			continue
		}
		e.apply(Operation{Type: OpSetNode, Path: en.Path, Old: edtypes.Shallow(cur), New: edtypes.Shallow(next)})
	}
}

// SplitNodes разделяет узлы в точке At
func (e *Editor) SplitNodes(opts TransformOptions) error {
	return e.Transact("split_nodes", func() error {
		e.splitNodes(opts)
		return nil
	})
}

func (e *Editor) splitNodes(o TransformOptions) {
	match := o.Match
	if match == nil {
		match = IsBlock
	}
	mode := o.mode()
	height := o.Height
	always := o.Always
	at, ok := e.resolveAt(o.At)
	if !ok {
		return
	}
	if r, ok := at.(Range); ok {
		pt, ok := e.deleteRangeToPoint(r)
		if !ok {
			return
		}
		at = pt
	}
	if path, ok := at.(Path); ok {
		if len(path) < 2 {
			return
		}
		pt := e.Start(path)
		match = MatchPath(path.Parent())
		height = len(pt.Path) - len(path) + 1
		at = pt
		always = true
	}
	pt := at.(Point)

	beforeRef := e.PointRef(pt, AffinityBackward)
	defer beforeRef.Unref()

	highest, found := e.FirstMatch(NodesOptions{At: pt, Match: match, Mode: mode, Voids: o.Voids})
	if !found {
		return
	}
	if !o.Voids {
		if v, ok := e.Void(pt); ok {
			height = len(pt.Path) - len(v.Path) + 1
			always = true
		}
	}

	afterRef := e.PointRef(pt, AffinityForward)
	defer afterRef.Unref()

	depth := len(pt.Path) - height
	if depth < 0 {
		return
	}
	lowestPath := pt.Path[:depth:depth]
	position := pt.Offset
	if height != 0 {
		position = pt.Path[depth]
	}

	for _, lv := range e.Levels(lowestPath, nil, true, o.Voids) {
		if len(lv.Path) < len(highest.Path) || (!o.Voids && edtypes.IsVoid(lv.Node)) {
			break
		}
		split := false
		point := beforeRef.Current()
		isEnd := point != nil && e.IsEnd(*point, lv.Path)
		if always || point == nil || !e.IsEdge(*point, lv.Path) {
			split = true
			e.apply(Operation{Type: OpSplitNode, Path: lv.Path, Position: position, Properties: edtypes.Shallow(lv.Node)})
		}
		position = lv.Path.Last()
		if split || isEnd {
			position++
		}
	}

	if o.At == nil {
		if p := afterRef.Current(); p != nil {
			e.selectRange(Collapsed(*p))
		} else {
			e.selectRange(Collapsed(e.End(Path{})))
		}
	}
}

// LiftNodes поднимает подходящие узлы на уровень выше, разделяя родителя при необходимости
func (e *Editor) LiftNodes(opts TransformOptions) error {
	return e.Transact("lift_nodes", func() error {
		e.liftNodes(opts)
		return nil
	})
}

func (e *Editor) liftNodes(o TransformOptions) {
	at, ok := e.resolveAt(o.At)
	if !ok {
		return
	}
	match := o.Match
	if match == nil {
		match = e.defaultMatch(at)
	}
	var refs []*PathRef
	for _, p := range paths(Collect(e.Nodes(NodesOptions{At: at, Match: match, Mode: o.mode(), Voids: o.Voids}))) {
		refs = append(refs, e.PathRef(p, AffinityForward))
	}
	for _, ref := range refs {
		path := ref.Unref()
		if path == nil {
			continue
		}
		if len(path) < 2 {
			fail(fmt.Errorf("%w: cannot lift node at %s with depth < 2", ErrInvalidPath, path))
		}
		parentPath := path.Parent()
		length := len(e.childrenAt(parentPath))
		index := path.Last()

		switch {
		case length == 1:
			e.moveNodes(TransformOptions{At: path, To: parentPath.Next(), Voids: o.Voids})
			e.removeNodes(TransformOptions{At: parentPath, Voids: o.Voids})
		case index == 0:
			e.moveNodes(TransformOptions{At: path, To: parentPath.Clone(), Voids: o.Voids})
		case index == length-1:
			e.moveNodes(TransformOptions{At: path, To: parentPath.Next(), Voids: o.Voids})
		default:
			e.splitNodes(TransformOptions{At: path.Next(), Voids: o.Voids})
			e.moveNodes(TransformOptions{At: path, To: parentPath.Next(), Voids: o.Voids})
		}
	}
}

// UnwrapNodes убирает подходящих предков, поднимая их детей. С Split затрагивает только часть
// контейнера, попавшую в выделение.
func (e *Editor) UnwrapNodes(opts TransformOptions) error {
	return e.Transact("unwrap_nodes", func() error {
		e.unwrapNodes(opts)
		return nil
	})
}

func (e *Editor) unwrapNodes(o TransformOptions) {
	at, ok := e.resolveAt(o.At)
	if !ok {
		return
	}
	match := o.Match
	if match == nil {
		match = e.defaultMatch(at)
	}
	if p, ok := at.(Path); ok {
		at = e.RangeOf(p, nil)
	}
	var rangeRef *RangeRef
	if r, ok := at.(Range); ok {
		rangeRef = e.RangeRef(r, AffinityInward)
		defer rangeRef.Unref()
	}

	matches := paths(Collect(e.Nodes(NodesOptions{At: at, Match: match, Mode: o.mode(), Voids: o.Voids})))
	refs := make([]*PathRef, 0, len(matches))
	for i := len(matches) - 1; i >= 0; i-- {
		refs = append(refs, e.PathRef(matches[i], AffinityForward))
	}
	for _, ref := range refs {
		path := ref.Unref()
		if path == nil {
			continue
		}
		rng := e.RangeOf(path, nil)
		if o.Split && rangeRef != nil && rangeRef.Current() != nil {
			inter, ok := Intersection(*rangeRef.Current(), rng)
			if !ok {
				continue
			}
			rng = inter
		}
		e.liftNodes(TransformOptions{At: rng, Match: MatchChildOf(path), Voids: o.Voids})
	}
}

// WrapNodes оборачивает подходящие узлы в копию element без детей
func (e *Editor) WrapNodes(element edtypes.Element, opts TransformOptions) error {
	return e.Transact("wrap_nodes", func() error {
		e.wrapNodes(element, opts)
		return nil
	})
}

func (e *Editor) wrapNodes(element edtypes.Element, o TransformOptions) {
	at, ok := e.resolveAt(o.At)
	if !ok {
		return
	}
	inline := edtypes.IsInline(element)
	match := o.Match
	if match == nil {
		switch {
		case isPath(at):
			match = MatchPath(at.(Path))
		case inline:
			match = IsInlineOrText
		default:
			match = IsBlock
		}
	}

	if r, ok := at.(Range); ok && o.Split {
		start, end := r.Edges()
		ref := e.RangeRef(r, AffinityInward)
		e.splitNodes(TransformOptions{At: end, Match: match, Voids: o.Voids})
		if cur := ref.Current(); cur != nil {
			start, _ = cur.Edges()
		}
		e.splitNodes(TransformOptions{At: start, Match: match, Voids: o.Voids})
		nr := ref.Unref()
		if nr == nil {
			return
		}
		at = *nr
		if o.At == nil {
			e.selectRange(*nr)
		}
	}

	roots := []Path{{}}
	if inline {
		roots = paths(Collect(e.Nodes(NodesOptions{At: at, Match: IsBlock, Mode: ModeLowest, Voids: o.Voids})))
	}

	rootRefs := make([]*PathRef, len(roots))
	for i, p := range roots {
		rootRefs[i] = e.PathRef(p, AffinityForward)
	}
	for _, ref := range rootRefs {
		rootPath := ref.Unref()
		if rootPath == nil {
			continue
		}
		a := at
		if r, ok := at.(Range); ok {
			inter, ok := Intersection(r, e.RangeOf(rootPath, nil))
			if !ok {
				continue
			}
			a = inter
		}
		matches := Collect(e.Nodes(NodesOptions{At: a, Match: match, Mode: o.mode(), Voids: o.Voids}))
		if len(matches) == 0 {
			continue
		}
		firstPath := matches[0].Path
		lastPath := matches[len(matches)-1].Path
		if len(firstPath) == 0 && len(lastPath) == 0 {
			continue
		}
		var commonPath Path
		if firstPath.Equal(lastPath) {
			commonPath = firstPath.Parent().Clone()
		} else {
			commonPath = Common(firstPath, lastPath)
		}
		rng := e.RangeOf(firstPath, lastPath)
		depth := len(commonPath) + 1
		wrapperPath := lastPath[:depth].Next()

		e.insertNodes([]edtypes.Node{element.WithChildren(nil)}, TransformOptions{At: wrapperPath, Voids: o.Voids})
		e.moveNodes(TransformOptions{At: rng, Match: MatchChildOf(commonPath), To: wrapperPath.Child(0), Voids: o.Voids})
	}
}

func isPath(at Location) bool {
	_, ok := at.(Path)
	return ok
}

// MergeNodes объединяет узел в точке At с предыдущим подходящим узлом
func (e *Editor) MergeNodes(opts TransformOptions) error {
	return e.Transact("merge_nodes", func() error {
		e.mergeNodes(opts)
		return nil
	})
}

func (e *Editor) mergeNodes(o TransformOptions) {
	at, ok := e.resolveAt(o.At)
	if !ok {
		return
	}
	match := o.Match
	if match == nil {
		if p, ok := at.(Path); ok && len(p) > 0 {
			match = MatchChildOf(p.Parent())
		} else {
			match = IsBlock
		}
	}
	if r, ok := at.(Range); ok {
		if !o.Hanging {
			r = e.UnhangRange(r)
		}
		pt, ok := e.deleteRangeToPoint(r)
		if !ok {
			return
		}
		at = pt
	}

	current, ok := e.FirstMatch(NodesOptions{At: at, Match: match, Mode: o.mode(), Voids: o.Voids})
	if !ok {
		return
	}
	prev, ok := e.Previous(at, match)
	if !ok {
		return
	}
	path, prevPath := current.Path, prev.Path
	if len(path) == 0 || len(prevPath) == 0 {
		return
	}
	newPath := prevPath.Next()
	commonPath := Common(path, prevPath)
	isPreviousSibling := path.IsSibling(prevPath)

	// Предки узла ниже общего пути, которые опустеют после переноса
	var emptyRef *PathRef
	levels := e.Levels(path, nil, false, true)
	if len(levels) > len(commonPath) {
		levels = levels[len(commonPath) : len(levels)-1]
	} else {
		levels = nil
	}
	for _, lv := range levels {
		if hasSingleChildNest(lv.Node) {
			emptyRef = e.PathRef(lv.Path, AffinityForward)
			break
		}
	}

	var position int
	var props edtypes.Node
	switch n := current.Node.(type) {
	case *edtypes.Text:
		pt, ok := prev.Node.(*edtypes.Text)
		if !ok {
			fail(fmt.Errorf("%w: %s and %s", ErrMergeMismatch, path, prevPath))
		}
		position = len([]rune(pt.Text))
		props = edtypes.Shallow(n)
	case edtypes.Element:
		pe, ok := prev.Node.(edtypes.Element)
		if !ok {
			fail(fmt.Errorf("%w: %s and %s", ErrMergeMismatch, path, prevPath))
		}
		position = len(pe.Children())
		props = edtypes.Shallow(n)
	}

	if !isPreviousSibling {
		e.moveNodes(TransformOptions{At: path, To: newPath, Voids: o.Voids})
	}
	if emptyRef != nil {
		if p := emptyRef.Unref(); p != nil {
			e.removeNodes(TransformOptions{At: p, Voids: o.Voids})
		}
	}

	prevEmpty := false
	switch pn := prev.Node.(type) {
	case *edtypes.Text:
		prevEmpty = pn.Text == "" && prevPath.Last() != 0
	case edtypes.Element:
		prevEmpty = IsEmpty(pn)
	}
	if prevEmpty {
		e.removeNodes(TransformOptions{At: prevPath, Voids: o.Voids})
		return
	}
	e.apply(Operation{Type: OpMergeNode, Path: newPath, Position: position, Properties: props})
}

func hasSingleChildNest(n edtypes.Node) bool {
	el, ok := n.(edtypes.Element)
	if !ok {
		return true
	}
	if edtypes.IsVoid(el) {
		return true
	}
	if len(el.Children()) == 1 {
		return hasSingleChildNest(el.Children()[0])
	}
	return false
}
