package macro

import (
	"fmt"
	"log/slog"

	"github.com/aisa-it/richdoc/internal/richdoc/editor"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
	lua "github.com/yuin/gopher-lua"
)

type runner struct {
	e   *engine.Editor
	res *Result
}

func (r *runner) register(state *lua.LState) {
	state.SetFuncs(state.G.Global, map[string]lua.LGFunction{
		"toggle_mark":     r.intent(editor.CmdToggleMark, "Format"),
		"toggle_block":    r.intent(editor.CmdToggleBlock, "Format"),
		"set_heading":     r.intent(editor.CmdSetHeadingLevel, "Value"),
		"set_font_size":   r.intent(editor.CmdSetFontSize, "Value"),
		"set_alignment":   r.intent(editor.CmdSetAlignment, "Value"),
		"set_color":       r.intent(editor.CmdSetTextColor, "Value"),
		"insert_text":     r.intent(editor.CmdInsertText, "Text"),
		"insert_link":     r.intent(editor.CmdInsertLink, "URL", "Text"),
		"toggle_link":     r.intent(editor.CmdToggleLink, "URL", "Text"),
		"remove_link":     r.intent(editor.CmdRemoveLink),
		"insert_image":    r.intent(editor.CmdInsertImage, "URL", "Alt", "Caption"),
		"insert_video":    r.intent(editor.CmdInsertVideo, "URL", "Title"),
		"insert_divider":  r.intent(editor.CmdInsertDivider),
		"insert_table":    r.intent(editor.CmdInsertTable, "Rows", "Cols"),
		"delete":          r.deleteText,
		"select":          r.selectRange,
		"select_all":      r.selectAll,
		"collapse":        r.collapse,
		"text":            r.text,
		"selected_text":   r.selectedText,
		"is_mark_active":  r.isMarkActive,
		"is_block_active": r.isBlockActive,
		"heading_level":   r.headingLevel,
		"log":             r.log,
	})
}

// intent строит функцию Lua, аргументы которой по порядку заполняют поля Intent
func (r *runner) intent(command string, fields ...string) lua.LGFunction {
	return func(L *lua.LState) int {
		in := editor.Intent{Command: command}
		for i, field := range fields {
			val := L.OptString(i+1, "")
			switch field {
			case "Format":
				in.Format = val
			case "Value":
				in.Value = val
			case "URL":
				in.URL = val
			case "Text":
				in.Text = val
			case "Alt":
				in.Alt = val
			case "Caption":
				in.Caption = val
			case "Title":
				in.Title = val
			case "Rows":
				in.Rows = val
			case "Cols":
				in.Cols = val
			}
		}
		r.dispatch(L, in)
		return 0
	}
}

func (r *runner) dispatch(L *lua.LState, in editor.Intent) {
	if err := editor.Dispatch(r.e, in); err != nil {
		L.RaiseError("%s: %s", in.Command, err.Error())
	}
	r.res.Commands++
}

func (r *runner) deleteText(L *lua.LState) int {
	r.dispatch(L, editor.Intent{Command: editor.CmdDelete, Reverse: L.OptBool(1, false)})
	return 0
}

// selectRange: select({0, 0}, 1) ставит каретку, select({0, 0}, 1, {0, 0}, 5) выделяет диапазон
func (r *runner) selectRange(L *lua.LState) int {
	anchor := engine.Point{Path: checkPath(L, 1), Offset: L.CheckInt(2)}
	focus := anchor
	if L.GetTop() >= 3 {
		focus = engine.Point{Path: checkPath(L, 3), Offset: L.CheckInt(4)}
	}
	if err := r.e.Select(engine.Range{Anchor: anchor, Focus: focus}); err != nil {
		L.RaiseError("select: %s", err.Error())
	}
	return 0
}

func (r *runner) selectAll(L *lua.LState) int {
	var rng engine.Range
	if err := r.e.Query(func() {
		rng = engine.Range{Anchor: r.e.Start(engine.Path{}), Focus: r.e.End(engine.Path{})}
	}); err != nil {
		L.RaiseError("select_all: %s", err.Error())
	}
	if err := r.e.Select(rng); err != nil {
		L.RaiseError("select_all: %s", err.Error())
	}
	return 0
}

func (r *runner) collapse(L *lua.LState) int {
	edge := engine.EdgeEnd
	if L.OptString(1, "end") == "start" {
		edge = engine.EdgeStart
	}
	if err := r.e.Collapse(edge); err != nil {
		L.RaiseError("collapse: %s", err.Error())
	}
	return 0
}

func (r *runner) text(L *lua.LState) int {
	L.Push(lua.LString(r.e.Document().PlainText()))
	return 1
}

func (r *runner) selectedText(L *lua.LState) int {
	L.Push(lua.LString(editor.GetSelectedText(r.e)))
	return 1
}

func (r *runner) isMarkActive(L *lua.LState) int {
	mark, err := edtypes.ParseMark(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	L.Push(lua.LBool(editor.IsMarkActive(r.e, mark)))
	return 1
}

func (r *runner) isBlockActive(L *lua.LState) int {
	L.Push(lua.LBool(editor.IsBlockActive(r.e, edtypes.Kind(L.CheckString(1)))))
	return 1
}

func (r *runner) headingLevel(L *lua.LState) int {
	L.Push(lua.LNumber(editor.GetCurrentHeadingLevel(r.e)))
	return 1
}

func (r *runner) log(L *lua.LState) int {
	msg := L.CheckString(1)
	slog.Debug("Macro log", "msg", msg)
	r.res.Messages = append(r.res.Messages, msg)
	return 0
}

func checkPath(L *lua.LState, n int) engine.Path {
	t := L.CheckTable(n)
	path := make(engine.Path, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		num, ok := t.RawGetInt(i).(lua.LNumber)
		if !ok {
			L.ArgError(n, fmt.Sprintf("path element %d is not a number", i))
		}
		path = append(path, int(num))
	}
	return path
}
