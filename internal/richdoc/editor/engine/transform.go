package engine

import "unicode/utf8"

// TransformPath пересчитывает путь после применения операции.
// false - узел по пути был удален операцией.
func TransformPath(path Path, op Operation, affinity Affinity) (Path, bool) {
	if path == nil {
		return nil, false
	}
	p := path.Clone()
	if len(p) == 0 {
		return p, true
	}
	switch op.Type {
	case OpInsertNode:
		o := op.Path
		if o.Equal(p) || o.EndsBefore(p) || o.IsAncestor(p) {
			p[len(o)-1]++
		}

	case OpRemoveNode:
		o := op.Path
		if o.Equal(p) || o.IsAncestor(p) {
			return nil, false
		} else if o.EndsBefore(p) {
			p[len(o)-1]--
		}

	case OpMergeNode:
		o := op.Path
		if o.Equal(p) || o.EndsBefore(p) {
			p[len(o)-1]--
		} else if o.IsAncestor(p) {
			p[len(o)-1]--
			p[len(o)] += op.Position
		}

	case OpSplitNode:
		o := op.Path
		if o.Equal(p) {
			switch affinity {
			case AffinityForward:
				p[len(p)-1]++
			case AffinityBackward:
			default:
				return nil, false
			}
		} else if o.EndsBefore(p) {
			p[len(o)-1]++
		} else if o.IsAncestor(p) && path[len(o)] >= op.Position {
			p[len(o)-1]++
			p[len(o)] -= op.Position
		}

	case OpMoveNode:
		o, onp := op.Path, op.NewPath
		if o.Equal(onp) {
			return p, true
		}
		if o.IsAncestor(p) || o.Equal(p) {
			cp := onp.Clone()
			if o.EndsBefore(onp) && len(o) < len(onp) {
				cp[len(o)-1]--
			}
			return append(cp, p[len(o):]...), true
		} else if o.IsSibling(onp) && (onp.IsAncestor(p) || onp.Equal(p)) {
			if o.EndsBefore(p) {
				p[len(o)-1]--
			} else {
				p[len(o)-1]++
			}
		} else if onp.EndsBefore(p) || onp.Equal(p) || onp.IsAncestor(p) {
			if o.EndsBefore(p) {
				p[len(o)-1]--
			}
			p[len(onp)-1]++
		} else if o.EndsBefore(p) {
			if onp.Equal(p) {
				p[len(onp)-1]++
			}
			p[len(o)-1]--
		}
	}
	return p, true
}

// TransformPoint пересчитывает точку после применения операции.
// false - точка перестала существовать.
func TransformPoint(point Point, op Operation, affinity Affinity) (Point, bool) {
	p := point.Clone()
	switch op.Type {
	case OpInsertNode, OpMoveNode:
		np, ok := TransformPath(p.Path, op, affinity)
		if !ok {
			return Point{}, false
		}
		p.Path = np

	case OpInsertText:
		if op.Path.Equal(p.Path) && (op.Offset < p.Offset || (op.Offset == p.Offset && (affinity == AffinityForward || affinity == AffinityNone))) {
			p.Offset += utf8.RuneCountInString(op.Text)
		}

	case OpMergeNode:
		if op.Path.Equal(p.Path) {
			p.Offset += op.Position
		}
		np, ok := TransformPath(p.Path, op, affinity)
		if !ok {
			return Point{}, false
		}
		p.Path = np

	case OpRemoveText:
		if op.Path.Equal(p.Path) && op.Offset <= p.Offset {
			p.Offset -= min(p.Offset-op.Offset, utf8.RuneCountInString(op.Text))
		}

	case OpRemoveNode:
		if op.Path.Equal(p.Path) || op.Path.IsAncestor(p.Path) {
			return Point{}, false
		}
		np, ok := TransformPath(p.Path, op, affinity)
		if !ok {
			return Point{}, false
		}
		p.Path = np

	case OpSplitNode:
		if op.Path.Equal(p.Path) {
			if op.Position == p.Offset && affinity == AffinityNone {
				return Point{}, false
			} else if op.Position < p.Offset || (op.Position == p.Offset && affinity == AffinityForward) {
				p.Offset -= op.Position
				np, _ := TransformPath(p.Path, op, AffinityForward)
				p.Path = np
			}
		} else {
			np, ok := TransformPath(p.Path, op, affinity)
			if !ok {
				return Point{}, false
			}
			p.Path = np
		}
	}
	return p, true
}

// TransformRange пересчитывает диапазон. AffinityInward сжимает диапазон при вставке на краях,
// AffinityOutward расширяет.
func TransformRange(r Range, op Operation, affinity Affinity) (Range, bool) {
	anchorAff, focusAff := affinity, affinity
	switch affinity {
	case AffinityInward:
		collapsed := r.IsCollapsed()
		if r.IsForward() {
			anchorAff = AffinityForward
			focusAff = AffinityBackward
		} else {
			anchorAff = AffinityBackward
			focusAff = AffinityForward
		}
		if collapsed {
			focusAff = anchorAff
		}
	case AffinityOutward:
		collapsed := r.IsCollapsed()
		if r.IsForward() {
			anchorAff = AffinityBackward
			focusAff = AffinityForward
		} else {
			anchorAff = AffinityForward
			focusAff = AffinityBackward
		}
		if collapsed {
			focusAff = anchorAff
		}
	}
	anchor, ok := TransformPoint(r.Anchor, op, anchorAff)
	if !ok {
		return Range{}, false
	}
	focus, ok := TransformPoint(r.Focus, op, focusAff)
	if !ok {
		return Range{}, false
	}
	return Range{Anchor: anchor, Focus: focus}, true
}
