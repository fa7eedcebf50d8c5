package engine

import "fmt"

// Location - место применения запроса или преобразования: Path, Point или Range.
// nil означает текущее выделение.
type Location interface {
	location()
}

func (Path) location()  {}
func (Point) location() {}
func (Range) location() {}

// Point - позиция внутри текстового узла. Offset считается в символах (рунах).
type Point struct {
	Path   Path
	Offset int
}

func (p Point) String() string {
	return fmt.Sprintf("%s:%d", p.Path, p.Offset)
}

func (p Point) Clone() Point {
	return Point{Path: p.Path.Clone(), Offset: p.Offset}
}

func (p Point) Compare(o Point) int {
	if c := p.Path.Compare(o.Path); c != 0 {
		return c
	}
	switch {
	case p.Offset < o.Offset:
		return -1
	case p.Offset > o.Offset:
		return 1
	}
	return 0
}

func (p Point) Equal(o Point) bool {
	return p.Offset == o.Offset && p.Path.Equal(o.Path)
}

func (p Point) IsBefore(o Point) bool { return p.Compare(o) == -1 }
func (p Point) IsAfter(o Point) bool  { return p.Compare(o) == 1 }

// Range - выделение от Anchor (где начали) до Focus (где закончили)
type Range struct {
	Anchor Point
	Focus  Point
}

func (r Range) String() string {
	return fmt.Sprintf("{%s %s}", r.Anchor, r.Focus)
}

func (r Range) Clone() Range {
	return Range{Anchor: r.Anchor.Clone(), Focus: r.Focus.Clone()}
}

// Collapsed - диапазон нулевой длины (каретка)
func Collapsed(p Point) Range {
	return Range{Anchor: p.Clone(), Focus: p.Clone()}
}

func (r Range) IsCollapsed() bool {
	return r.Anchor.Equal(r.Focus)
}

func (r Range) IsExpanded() bool {
	return !r.IsCollapsed()
}

func (r Range) IsBackward() bool {
	return r.Anchor.IsAfter(r.Focus)
}

func (r Range) IsForward() bool {
	return !r.IsBackward()
}

// Edges возвращает начало и конец диапазона в порядке документа
func (r Range) Edges() (Point, Point) {
	if r.IsBackward() {
		return r.Focus, r.Anchor
	}
	return r.Anchor, r.Focus
}

func (r Range) Start() Point {
	s, _ := r.Edges()
	return s
}

func (r Range) End() Point {
	_, e := r.Edges()
	return e
}

func (r Range) Equal(o Range) bool {
	return r.Anchor.Equal(o.Anchor) && r.Focus.Equal(o.Focus)
}

// Includes сообщает, попадает ли точка в диапазон
func (r Range) Includes(p Point) bool {
	start, end := r.Edges()
	return p.Compare(start) >= 0 && p.Compare(end) <= 0
}

// Intersection возвращает пересечение диапазонов. false, если пересечения нет.
func Intersection(a, b Range) (Range, bool) {
	s1, e1 := a.Edges()
	s2, e2 := b.Edges()
	start := s1
	if s1.IsBefore(s2) {
		start = s2
	}
	end := e2
	if e1.IsBefore(e2) {
		end = e1
	}
	if end.IsBefore(start) {
		return Range{}, false
	}
	return Range{Anchor: start, Focus: end}, true
}

// Edge - край выделения для Collapse и Point
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
	EdgeAnchor
	EdgeFocus
)

// Affinity - в какую сторону смещается точка при вставке ровно в ее позицию
type Affinity int

const (
	AffinityForward Affinity = iota
	AffinityBackward
	AffinityNone
	AffinityInward
	AffinityOutward
)
