package engine

// PathRef отслеживает путь узла через последующие операции
type PathRef struct {
	e        *Editor
	current  Path
	affinity Affinity
}

// PathRef создает ссылку на путь. Ссылку нужно освободить через Unref.
func (e *Editor) PathRef(path Path, affinity Affinity) *PathRef {
	ref := &PathRef{e: e, current: path.Clone(), affinity: affinity}
	e.pathRefs[ref] = struct{}{}
	return ref
}

// Current возвращает текущий путь или nil, если узел удален
func (r *PathRef) Current() Path {
	return r.current
}

// Unref освобождает ссылку и возвращает последний путь
func (r *PathRef) Unref() Path {
	delete(r.e.pathRefs, r)
	return r.current
}

func (r *PathRef) transform(op Operation) {
	if r.current == nil {
		return
	}
	p, ok := TransformPath(r.current, op, r.affinity)
	if !ok {
		r.current = nil
		return
	}
	r.current = p
}

// PointRef отслеживает точку
type PointRef struct {
	e        *Editor
	current  *Point
	affinity Affinity
}

func (e *Editor) PointRef(point Point, affinity Affinity) *PointRef {
	p := point.Clone()
	ref := &PointRef{e: e, current: &p, affinity: affinity}
	e.pointRefs[ref] = struct{}{}
	return ref
}

func (r *PointRef) Current() *Point {
	return r.current
}

func (r *PointRef) Unref() *Point {
	delete(r.e.pointRefs, r)
	return r.current
}

func (r *PointRef) transform(op Operation) {
	if r.current == nil {
		return
	}
	p, ok := TransformPoint(*r.current, op, r.affinity)
	if !ok {
		r.current = nil
		return
	}
	r.current = &p
}

// RangeRef отслеживает диапазон
type RangeRef struct {
	e        *Editor
	current  *Range
	affinity Affinity
}

func (e *Editor) RangeRef(rng Range, affinity Affinity) *RangeRef {
	c := rng.Clone()
	ref := &RangeRef{e: e, current: &c, affinity: affinity}
	e.rangeRefs[ref] = struct{}{}
	return ref
}

func (r *RangeRef) Current() *Range {
	return r.current
}

func (r *RangeRef) Unref() *Range {
	delete(r.e.rangeRefs, r)
	return r.current
}

func (r *RangeRef) transform(op Operation) {
	if r.current == nil {
		return
	}
	rng, ok := TransformRange(*r.current, op, r.affinity)
	if !ok {
		r.current = nil
		return
	}
	r.current = &rng
}
