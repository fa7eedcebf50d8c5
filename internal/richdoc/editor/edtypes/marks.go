package edtypes

import "fmt"

// Mark - булевый стиль текста
type Mark string

const (
	MarkBold      Mark = "bold"
	MarkItalic    Mark = "italic"
	MarkUnderline Mark = "underline"
	MarkCode      Mark = "code"
)

// AllMarks в порядке кнопок панели инструментов
var AllMarks = []Mark{MarkBold, MarkItalic, MarkUnderline, MarkCode}

func ParseMark(raw string) (Mark, error) {
	for _, m := range AllMarks {
		if string(m) == raw {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mark %q", raw)
}

// Marks - набор стилей текстового узла. Color и FontSize переопределяют значения по умолчанию,
// nil и 0 означают наследование.
type Marks struct {
	Bold      bool
	Italic    bool
	Underline bool
	Code      bool

	Color    *Color
	FontSize int
}

func (m Marks) Has(mark Mark) bool {
	switch mark {
	case MarkBold:
		return m.Bold
	case MarkItalic:
		return m.Italic
	case MarkUnderline:
		return m.Underline
	case MarkCode:
		return m.Code
	}
	return false
}

// With возвращает копию набора с установленным или снятым стилем
func (m Marks) With(mark Mark, on bool) Marks {
	switch mark {
	case MarkBold:
		m.Bold = on
	case MarkItalic:
		m.Italic = on
	case MarkUnderline:
		m.Underline = on
	case MarkCode:
		m.Code = on
	}
	return m
}

func (m Marks) Equal(o Marks) bool {
	return m.Bold == o.Bold &&
		m.Italic == o.Italic &&
		m.Underline == o.Underline &&
		m.Code == o.Code &&
		m.FontSize == o.FontSize &&
		EqualColor(m.Color, o.Color)
}

func (m Marks) IsZero() bool {
	return m.Equal(Marks{})
}

// Clone копирует цвет, чтобы наборы не делили указатель
func (m Marks) Clone() Marks {
	if m.Color != nil {
		c := *m.Color
		m.Color = &c
	}
	return m
}
