package engine

import (
	"fmt"
	"unicode/utf8"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

// Select устанавливает выделение. Точки должны указывать на существующие тексты.
func (e *Editor) Select(r Range) error {
	if err := e.validatePoint(r.Anchor); err != nil {
		return err
	}
	if err := e.validatePoint(r.Focus); err != nil {
		return err
	}
	return e.Transact("select", func() error {
		e.selectRange(r)
		return nil
	})
}

// SelectAt выделяет место: путь целиком, точку или диапазон
func (e *Editor) SelectAt(at Location) error {
	var r Range
	err := e.catch(func() {
		r = e.RangeOf(at, nil)
	})
	if err != nil {
		return err
	}
	return e.Select(r)
}

// Deselect снимает выделение
func (e *Editor) Deselect() error {
	return e.Transact("deselect", func() error {
		e.setSelection(nil)
		return nil
	})
}

// Collapse сворачивает выделение к краю
func (e *Editor) Collapse(edge Edge) error {
	if e.selection == nil {
		return nil
	}
	return e.Transact("collapse", func() error {
		e.collapse(edge)
		return nil
	})
}

func (e *Editor) collapse(edge Edge) {
	if e.selection == nil {
		return
	}
	sel := *e.selection
	var p Point
	switch edge {
	case EdgeAnchor:
		p = sel.Anchor
	case EdgeFocus:
		p = sel.Focus
	case EdgeEnd:
		p = sel.End()
	default:
		p = sel.Start()
	}
	e.selectRange(Collapsed(p))
}

func (e *Editor) selectRange(r Range) {
	e.setSelection(&r)
}

func (e *Editor) setSelection(r *Range) {
	if r == nil && e.selection == nil {
		return
	}
	if r != nil && e.selection != nil && r.Equal(*e.selection) {
		return
	}
	var next *Range
	if r != nil {
		c := r.Clone()
		next = &c
	}
	e.apply(Operation{Type: OpSetSelection, Selection: e.Selection(), NewSelection: next})
}

func (e *Editor) validatePoint(p Point) error {
	n, err := e.Node(p.Path)
	if err != nil {
		return err
	}
	t, ok := n.(*edtypes.Text)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotText, p.Path)
	}
	if p.Offset < 0 || p.Offset > utf8.RuneCountInString(t.Text) {
		return fmt.Errorf("%w: %s", ErrInvalidOffset, p)
	}
	return nil
}

// Query выполняет чтение дерева. Ошибки адресации внутри fn возвращаются как error.
func (e *Editor) Query(fn func()) error {
	return e.catch(fn)
}

// catch выполняет запрос, превращая внутренние ошибки движка в error
func (e *Editor) catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ee, ok := r.(engineError)
			if !ok {
				panic(r)
			}
			err = ee.err
		}
	}()
	fn()
	return nil
}
