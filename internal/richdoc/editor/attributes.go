package editor

import (
	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
)

// SetAlignment выравнивает ближайшие к тексту выравниваемые элементы выделения.
// NoAlign снимает выравнивание.
func SetAlignment(e *engine.Editor, align edtypes.TextAlign) error {
	if e.Selection() == nil {
		return nil
	}
	return e.Transact("set_alignment", func() error {
		return e.SetNodes(func(n edtypes.Node) edtypes.Node {
			return n.(edtypes.Alignable).WithAlign(align)
		}, engine.TransformOptions{Match: matchAlignable, Mode: engine.ModeLowest})
	})
}

// SetFontSize задает размер шрифта выделенного текста, 0 возвращает размер по умолчанию
func SetFontSize(e *engine.Editor, size int) error {
	if size != 0 && (size < edtypes.MinFontSize || size > edtypes.MaxFontSize) {
		return apierrors.ErrInvalidFontSize
	}
	return updateMarks(e, "set_font_size", func(m edtypes.Marks) edtypes.Marks {
		m.FontSize = size
		return m
	})
}

// SetTextColor задает цвет выделенного текста, nil возвращает цвет по умолчанию
func SetTextColor(e *engine.Editor, color *edtypes.Color) error {
	return updateMarks(e, "set_text_color", func(m edtypes.Marks) edtypes.Marks {
		if color == nil {
			m.Color = nil
			return m
		}
		c := *color
		m.Color = &c
		return m
	})
}

func updateMarks(e *engine.Editor, name string, fn func(edtypes.Marks) edtypes.Marks) error {
	if e.Selection() == nil {
		return nil
	}
	return e.Transact(name, func() error {
		return e.UpdateMarks(fn)
	})
}
