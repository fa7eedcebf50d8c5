package engine

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

type Mode int

const (
	ModeAll Mode = iota
	ModeHighest
	ModeLowest
)

// MatchFunc отбирает узлы в запросах и преобразованиях
type MatchFunc func(n edtypes.Node, p Path) bool

// NodesOptions - параметры Nodes. At nil - текущее выделение.
type NodesOptions struct {
	At      Location
	Match   MatchFunc
	Mode    Mode
	Reverse bool
	Voids   bool
}

// Entry - узел и его путь
type Entry struct {
	Node edtypes.Node
	Path Path
}

// Готовые предикаты
var (
	IsText MatchFunc = func(n edtypes.Node, _ Path) bool {
		_, ok := n.(*edtypes.Text)
		return ok
	}
	IsBlock MatchFunc = func(n edtypes.Node, _ Path) bool {
		return edtypes.IsBlock(n)
	}
	IsInlineOrText MatchFunc = func(n edtypes.Node, _ Path) bool {
		_, ok := n.(*edtypes.Text)
		return ok || edtypes.IsInline(n)
	}
	IsVoid MatchFunc = func(n edtypes.Node, _ Path) bool {
		return edtypes.IsVoid(n)
	}
)

// MatchKind отбирает элементы заданного типа
func MatchKind(kind edtypes.Kind) MatchFunc {
	return func(n edtypes.Node, _ Path) bool {
		el, ok := n.(edtypes.Element)
		return ok && el.Kind() == kind
	}
}

// MatchPath отбирает ровно узел по пути
func MatchPath(path Path) MatchFunc {
	path = path.Clone()
	return func(_ edtypes.Node, p Path) bool {
		return p.Equal(path)
	}
}

// MatchChildOf отбирает прямых детей узла по пути
func MatchChildOf(path Path) MatchFunc {
	path = path.Clone()
	return func(_ edtypes.Node, p Path) bool {
		return path.IsParent(p)
	}
}

func (e *Editor) resolveAt(at Location) (Location, bool) {
	if at != nil {
		return at, true
	}
	if e.selection == nil {
		return nil, false
	}
	return *e.selection, true
}

// Nodes лениво перебирает узлы, пересекающиеся с местом At, в порядке документа.
// Корень не возвращается. Дети void элементов обходятся только с Voids.
func (e *Editor) Nodes(opts NodesOptions) iter.Seq2[edtypes.Node, Path] {
	return func(yield func(edtypes.Node, Path) bool) {
		at, ok := e.resolveAt(opts.At)
		if !ok {
			return
		}
		match := opts.Match
		if match == nil {
			match = func(edtypes.Node, Path) bool { return true }
		}
		first := e.pathAt(at, EdgeStart)
		last := e.pathAt(at, EdgeEnd)

		var hit *Entry
		emit := func(n edtypes.Node, p Path) bool {
			isLower := hit != nil && p.Compare(hit.Path) == 0
			if opts.Mode == ModeHighest && isLower {
				return true
			}
			if !match(n, p) {
				return true
			}
			if opts.Mode == ModeLowest && isLower {
				hit = &Entry{n, p}
				return true
			}
			var out *Entry
			if opts.Mode == ModeLowest {
				out = hit
			} else {
				out = &Entry{n, p}
			}
			hit = &Entry{n, p}
			if out != nil {
				return yield(out.Node, out.Path)
			}
			return true
		}

		if !e.walk(e.doc.Children, Path{}, first, last, opts.Reverse, opts.Voids, emit) {
			return
		}
		if opts.Mode == ModeLowest && hit != nil {
			yield(hit.Node, hit.Path)
		}
	}
}

// walk обходит поддерево в прямом (или зеркальном) порядке, отсекая ветви вне [first, last]
func (e *Editor) walk(kids []edtypes.Node, prefix, first, last Path, reverse, voids bool, visit func(edtypes.Node, Path) bool) bool {
	for j := range kids {
		i := j
		if reverse {
			i = len(kids) - 1 - j
		}
		p := prefix.Child(i)
		if p.Compare(first) < 0 || p.Compare(last) > 0 {
			continue
		}
		n := kids[i]
		if !visit(n, p) {
			return false
		}
		el, ok := n.(edtypes.Element)
		if !ok || (!voids && edtypes.IsVoid(n)) {
			continue
		}
		if !e.walk(el.Children(), p, first, last, reverse, voids, visit) {
			return false
		}
	}
	return true
}

// texts перебирает все текстовые узлы документа
func (e *Editor) texts() iter.Seq2[edtypes.Node, Path] {
	return func(yield func(edtypes.Node, Path) bool) {
		e.walk(e.doc.Children, Path{}, Path{}, Path{}, false, true, func(n edtypes.Node, p Path) bool {
			if _, ok := n.(*edtypes.Text); ok {
				return yield(n, p)
			}
			return true
		})
	}
}

// Collect собирает результаты Nodes в срез
func Collect(seq iter.Seq2[edtypes.Node, Path]) []Entry {
	var res []Entry
	for n, p := range seq {
		res = append(res, Entry{n, p})
	}
	return res
}

// FirstMatch возвращает первый узел из Nodes
func (e *Editor) FirstMatch(opts NodesOptions) (Entry, bool) {
	for n, p := range e.Nodes(opts) {
		return Entry{n, p}, true
	}
	return Entry{}, false
}

// first спускается к первому листу поддерева
func (e *Editor) first(path Path) (edtypes.Node, Path) {
	p := path.Clone()
	var n edtypes.Node
	if len(p) == 0 {
		if len(e.doc.Children) == 0 {
			fail(fmt.Errorf("%w: empty document", ErrInvalidPath))
		}
		p = Path{0}
	}
	n = e.mustNode(p)
	for {
		el, ok := n.(edtypes.Element)
		if !ok || len(el.Children()) == 0 {
			return n, p
		}
		n = el.Children()[0]
		p = append(p, 0)
	}
}

// last спускается к последнему листу поддерева
func (e *Editor) last(path Path) (edtypes.Node, Path) {
	p := path.Clone()
	if len(p) == 0 {
		if len(e.doc.Children) == 0 {
			fail(fmt.Errorf("%w: empty document", ErrInvalidPath))
		}
		p = Path{len(e.doc.Children) - 1}
	}
	n := e.mustNode(p)
	for {
		el, ok := n.(edtypes.Element)
		if !ok || len(el.Children()) == 0 {
			return n, p
		}
		i := len(el.Children()) - 1
		n = el.Children()[i]
		p = append(p, i)
	}
}

// pathAt возвращает путь места с указанного края (EdgeStart/EdgeEnd) или общий путь (EdgeAnchor)
func (e *Editor) pathAt(at Location, edge Edge) Path {
	switch v := at.(type) {
	case Path:
		switch edge {
		case EdgeStart:
			if len(v) == 0 && len(e.doc.Children) == 0 {
				return Path{}
			}
			_, p := e.first(v)
			return p
		case EdgeEnd:
			if len(v) == 0 && len(e.doc.Children) == 0 {
				return Path{}
			}
			_, p := e.last(v)
			return p
		}
		return v.Clone()
	case Point:
		return v.Path.Clone()
	case Range:
		switch edge {
		case EdgeStart:
			return v.Start().Path.Clone()
		case EdgeEnd:
			return v.End().Path.Clone()
		}
		return Common(v.Anchor.Path, v.Focus.Path)
	}
	panic(fmt.Sprintf("engine: unknown location %T", at))
}

// PointAt возвращает точку места с указанного края
func (e *Editor) PointAt(at Location, edge Edge) Point {
	switch v := at.(type) {
	case Point:
		return v.Clone()
	case Range:
		if edge == EdgeEnd {
			return v.End().Clone()
		}
		return v.Start().Clone()
	case Path:
		if edge == EdgeEnd {
			n, p := e.last(v)
			t, ok := n.(*edtypes.Text)
			if !ok {
				fail(fmt.Errorf("%w: %s has no text leaf", ErrNotText, v))
			}
			return Point{Path: p, Offset: utf8.RuneCountInString(t.Text)}
		}
		n, p := e.first(v)
		if _, ok := n.(*edtypes.Text); !ok {
			fail(fmt.Errorf("%w: %s has no text leaf", ErrNotText, v))
		}
		return Point{Path: p, Offset: 0}
	}
	panic(fmt.Sprintf("engine: unknown location %T", at))
}

func (e *Editor) Start(at Location) Point { return e.PointAt(at, EdgeStart) }
func (e *Editor) End(at Location) Point   { return e.PointAt(at, EdgeEnd) }

// RangeOf возвращает диапазон от начала at до конца to (или at)
func (e *Editor) RangeOf(at Location, to Location) Range {
	if r, ok := at.(Range); ok && to == nil {
		return r.Clone()
	}
	if to == nil {
		to = at
	}
	return Range{Anchor: e.Start(at), Focus: e.End(to)}
}

func (e *Editor) IsStart(point Point, at Location) bool {
	return point.Equal(e.Start(at))
}

func (e *Editor) IsEnd(point Point, at Location) bool {
	return point.Equal(e.End(at))
}

func (e *Editor) IsEdge(point Point, at Location) bool {
	return e.IsStart(point, at) || e.IsEnd(point, at)
}

// Leaf возвращает текстовый лист в месте at
func (e *Editor) Leaf(at Location) (*edtypes.Text, Path) {
	p := e.pathAt(at, EdgeAnchor)
	return e.mustText(p), p
}

// Levels возвращает предков пути (без корня) от верхнего к нижнему, включая сам узел.
// Без voids обход останавливается на первом void элементе.
func (e *Editor) Levels(at Path, match MatchFunc, reverse, voids bool) []Entry {
	var res []Entry
	for _, p := range at.Levels()[1:] {
		n := e.mustNode(p)
		if match != nil && !match(n, p) {
			continue
		}
		res = append(res, Entry{n, p.Clone()})
		if !voids && edtypes.IsVoid(n) {
			break
		}
	}
	if reverse {
		for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
			res[i], res[j] = res[j], res[i]
		}
	}
	return res
}

// Above возвращает ближайшего (ModeLowest) или самого верхнего (ModeHighest) предка места at
func (e *Editor) Above(at Location, match MatchFunc, mode Mode, voids bool) (Entry, bool) {
	at, ok := e.resolveAt(at)
	if !ok {
		return Entry{}, false
	}
	path := e.pathAt(at, EdgeAnchor)
	for _, lv := range e.Levels(path, match, mode != ModeHighest, voids) {
		if _, isText := lv.Node.(*edtypes.Text); isText {
			continue
		}
		if r, ok := at.(Range); ok {
			if lv.Path.IsAncestor(r.Anchor.Path) && lv.Path.IsAncestor(r.Focus.Path) {
				return lv, true
			}
			continue
		}
		if !path.Equal(lv.Path) {
			return lv, true
		}
	}
	return Entry{}, false
}

// Void возвращает void элемент, содержащий место at
func (e *Editor) Void(at Location) (Entry, bool) {
	return e.Above(at, IsVoid, ModeHighest, false)
}

// Parent возвращает родителя узла. Для блоков верхнего уровня ok=false.
func (e *Editor) Parent(path Path) (edtypes.Element, Path, bool) {
	if len(path) < 2 {
		return nil, nil, false
	}
	pp := path.Parent()
	el, ok := e.mustNode(pp).(edtypes.Element)
	return el, pp.Clone(), ok
}

// Previous возвращает ближайший узел перед at, удовлетворяющий match (самый глубокий)
func (e *Editor) Previous(at Location, match MatchFunc) (Entry, bool) {
	before := e.pathAt(at, EdgeStart)
	var res Entry
	found := false
	e.walk(e.doc.Children, Path{}, Path{}, before, false, false, func(n edtypes.Node, p Path) bool {
		if p.Compare(before) >= 0 {
			return true
		}
		if match == nil || match(n, p) {
			res = Entry{n, p}
			found = true
		}
		return true
	})
	return res, found
}

// UnhangRange сдвигает конец диапазона, стоящий в начале следующего блока, к концу предыдущего текста
func (e *Editor) UnhangRange(r Range) Range {
	start, end := r.Edges()
	if start.Offset != 0 || end.Offset != 0 || r.IsCollapsed() || end.Path.HasPrevious() {
		return r
	}

	blockPath := Path{}
	if blk, ok := e.Above(end, IsBlock, ModeLowest, false); ok {
		blockPath = blk.Path
	}
	before := Range{Anchor: start, Focus: end}
	skip := true
	for n, p := range e.Nodes(NodesOptions{At: before, Match: IsText, Reverse: true}) {
		if skip {
			skip = false
			continue
		}
		t := n.(*edtypes.Text)
		if t.Text != "" || p.IsBefore(blockPath) {
			end = Point{Path: p, Offset: utf8.RuneCountInString(t.Text)}
			break
		}
	}
	return Range{Anchor: start, Focus: end}
}

// String возвращает текст в месте at
func (e *Editor) String(at Location) string {
	at, ok := e.resolveAt(at)
	if !ok {
		return ""
	}
	r := e.RangeOf(at, nil)
	start, end := r.Edges()
	var sb strings.Builder
	for n, p := range e.Nodes(NodesOptions{At: r, Match: IsText}) {
		runes := []rune(n.(*edtypes.Text).Text)
		from, to := 0, len(runes)
		if p.Equal(end.Path) {
			to = min(end.Offset, len(runes))
		}
		if p.Equal(start.Path) {
			from = min(start.Offset, to)
		}
		sb.WriteString(string(runes[from:to]))
	}
	return sb.String()
}

// IsEmpty - элемент без детей или с единственным пустым текстом
func IsEmpty(el edtypes.Element) bool {
	kids := el.Children()
	if len(kids) == 0 {
		return true
	}
	if len(kids) == 1 && !edtypes.IsVoid(el) {
		t, ok := kids[0].(*edtypes.Text)
		return ok && t.Text == ""
	}
	return false
}
