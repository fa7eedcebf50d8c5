package editor

import (
	"strings"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
)

var hotkeys = map[string]edtypes.Mark{
	"b": edtypes.MarkBold,
	"i": edtypes.MarkItalic,
	"u": edtypes.MarkUnderline,
	"`": edtypes.MarkCode,
}

// HotkeyMark возвращает стиль, переключаемый сочетанием Ctrl (Cmd) + key
func HotkeyMark(key string) (edtypes.Mark, bool) {
	m, ok := hotkeys[strings.ToLower(key)]
	return m, ok
}

// HandleHotkey переключает стиль по сочетанию клавиш. Без модификатора или для
// неизвестной клавиши возвращает false.
func HandleHotkey(e *engine.Editor, key string, modifier bool) (bool, error) {
	if !modifier {
		return false, nil
	}
	mark, ok := HotkeyMark(key)
	if !ok {
		return false, nil
	}
	return true, ToggleMark(e, mark)
}
