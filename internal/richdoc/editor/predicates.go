package editor

import (
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
)

// Запросы состояния выделения для панели инструментов. Ничего не меняют и не возвращают ошибок:
// без выделения или при неоднозначном выделении возвращается нейтральное значение.

var (
	matchTextBlock engine.MatchFunc = func(n edtypes.Node, _ engine.Path) bool {
		return edtypes.IsTextBlock(n)
	}
	matchList engine.MatchFunc = func(n edtypes.Node, _ engine.Path) bool {
		return edtypes.IsList(n)
	}
	matchAlignable engine.MatchFunc = func(n edtypes.Node, _ engine.Path) bool {
		return edtypes.IsAlignable(n)
	}
	matchLink = engine.MatchKind(edtypes.KindLink)
)

// IsMarkActive сообщает, включен ли стиль у текста, который получит ввод
func IsMarkActive(e *engine.Editor, mark edtypes.Mark) bool {
	marks, ok := engine.Marks(e)
	return ok && marks.Has(mark)
}

// IsBlockActive сообщает, пересекается ли выделение с элементом типа kind
func IsBlockActive(e *engine.Editor, kind edtypes.Kind) bool {
	return hasMatch(e, engine.MatchKind(kind), engine.ModeAll)
}

// IsAlignmentActive проверяет выравнивание ближайших к тексту выравниваемых элементов выделения,
// тех же, которые меняет SetAlignment
func IsAlignmentActive(e *engine.Editor, align edtypes.TextAlign) bool {
	found := false
	query(e, func(sel engine.Range) {
		for n := range e.Nodes(engine.NodesOptions{At: e.UnhangRange(sel), Match: matchAlignable, Mode: engine.ModeLowest}) {
			if n.(edtypes.Alignable).Alignment() == align {
				found = true
				return
			}
		}
	})
	return found
}

func IsLinkActive(e *engine.Editor) bool {
	_, ok := activeLink(e)
	return ok
}

// GetActiveLinkURL возвращает адрес ссылки в выделении или пустую строку
func GetActiveLinkURL(e *engine.Editor) string {
	if link, ok := activeLink(e); ok {
		return link.URL
	}
	return ""
}

// GetCurrentColor возвращает цвет вводимого текста, nil - цвет по умолчанию
func GetCurrentColor(e *engine.Editor) *edtypes.Color {
	marks, ok := engine.Marks(e)
	if !ok {
		return nil
	}
	return marks.Color
}

// GetCurrentFontSize возвращает размер шрифта вводимого текста, 0 - размер по умолчанию
func GetCurrentFontSize(e *engine.Editor) int {
	marks, ok := engine.Marks(e)
	if !ok {
		return 0
	}
	return marks.FontSize
}

// GetCurrentHeadingLevel возвращает уровень заголовка, если все текстовые блоки выделения
// являются заголовками одного уровня, иначе 0
func GetCurrentHeadingLevel(e *engine.Editor) int {
	level := 0
	query(e, func(sel engine.Range) {
		for n := range e.Nodes(engine.NodesOptions{At: e.UnhangRange(sel), Match: matchTextBlock, Mode: engine.ModeLowest}) {
			h, ok := n.(*edtypes.Heading)
			if !ok || (level != 0 && h.Level != level) {
				level = 0
				return
			}
			level = h.Level
		}
	})
	return level
}

// GetSelectedText возвращает текст развернутого выделения
func GetSelectedText(e *engine.Editor) string {
	var text string
	query(e, func(sel engine.Range) {
		if sel.IsExpanded() {
			text = e.String(sel)
		}
	})
	return text
}

func activeLink(e *engine.Editor) (*edtypes.Link, bool) {
	var link *edtypes.Link
	query(e, func(sel engine.Range) {
		if en, ok := e.FirstMatch(engine.NodesOptions{At: sel, Match: matchLink}); ok {
			link = en.Node.(*edtypes.Link)
		}
	})
	return link, link != nil
}

func hasMatch(e *engine.Editor, match engine.MatchFunc, mode engine.Mode) bool {
	found := false
	query(e, func(sel engine.Range) {
		_, found = e.FirstMatch(engine.NodesOptions{At: e.UnhangRange(sel), Match: match, Mode: mode})
	})
	return found
}

// query выполняет чтение при наличии выделения. Ошибка адресации дает нейтральный результат.
func query(e *engine.Editor, fn func(sel engine.Range)) {
	sel := e.Selection()
	if sel == nil {
		return
	}
	_ = e.Query(func() { fn(*sel) })
}
