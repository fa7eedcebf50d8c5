// Пакет macro выполняет Lua-скрипты, которые управляют редактором через команды панели инструментов.
//
// Основные возможности:
//   - Песочница gopher-lua без доступа к файлам, сети и ОС.
//   - Команды редактора как глобальные функции Lua (toggle_mark, insert_table, select, ...).
//   - Выполнение одной транзакцией: ошибка откатывает все изменения, успех отменяется одним undo.
//   - Ограничение времени выполнения через контекст.
package macro

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
	lua "github.com/yuin/gopher-lua"
)

const (
	MaxScriptLength = 64 * 1024
	DefaultTimeout  = 5 * time.Second
)

// Result - итог выполнения макроса
type Result struct {
	Commands int      `json:"commands"`
	Messages []string `json:"messages,omitempty"`
}

// Run выполняет скрипт над редактором. Без дедлайна в ctx применяется DefaultTimeout.
func Run(ctx context.Context, e *engine.Editor, script string) (*Result, error) {
	if len(script) > MaxScriptLength {
		return nil, apierrors.ErrMacroTooLong
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	state := lua.NewState()
	defer state.Close()
	state.SetContext(ctx)

	deniedLib(state)

	r := &runner{e: e, res: &Result{}}
	r.register(state)

	err := e.Transact("macro", func() error {
		return state.DoString(script)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			slog.Debug("Macro timed out", "err", ctxErr)
			return r.res, apierrors.ErrMacroFailed.WithFormattedMessage("timeout")
		}
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) {
			return r.res, apierrors.ErrMacroFailed.WithFormattedMessage(strings.TrimSpace(apiErr.Object.String()))
		}
		return r.res, apierrors.ErrMacroFailed.WithFormattedMessage(err.Error())
	}
	return r.res, nil
}

func deniedLib(state *lua.LState) {
	for _, name := range []string{
		"require", "loadfile", "dofile", "load", "loadstring",
		"net", "debug", "coroutine", "socket", "lfs",
		"os", "io", "package", "ffi", "channel",
	} {
		state.SetGlobal(name, lua.LNil)
	}
}
