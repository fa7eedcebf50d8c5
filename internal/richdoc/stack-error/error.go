// Пакет stack_error сохраняет путь ошибки от места возникновения до обработчика HTTP
// и контекст документа для записи в лог одной строкой.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/labstack/echo/v4"
)

// TrackerError накапливает места, через которые прошла ошибка, и атрибуты для лога
type TrackerError struct {
	Context map[string]any
	frames  []string
	cause   error
}

// TrackErrorStack оборачивает ошибку и записывает место вызова. Повторный вызов дописывает
// место в уже существующий след.
func TrackErrorStack(err error) *TrackerError {
	var te *TrackerError
	if !errors.As(err, &te) {
		te = &TrackerError{Context: make(map[string]any), cause: err}
	}
	te.frames = append(te.frames, callerFrame(2, err))
	return te
}

// AddContext добавляет атрибут, не перезаписывая записанный ближе к источнику
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

// AddErr записывает место вызова с текстом другой ошибки
func (te *TrackerError) AddErr(err error) *TrackerError {
	te.frames = append(te.frames, callerFrame(2, err))
	return te
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

// Trace возвращает след в порядке прохождения ошибки
func (te *TrackerError) Trace() []string {
	return append([]string(nil), te.frames...)
}

// LogAttrs - атрибуты лога: причина, след и контекст
func (te *TrackerError) LogAttrs() []any {
	attrs := make([]any, 0, len(te.Context)+2)
	attrs = append(attrs, slog.String("err", te.Error()), slog.Any("trace", te.frames))
	for k, v := range te.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// GetError пишет ошибку в лог вместе со следом и параметрами запроса
func GetError(c echo.Context, err error) {
	var te *TrackerError
	var attrs []any
	if errors.As(err, &te) {
		attrs = te.LogAttrs()
	} else {
		attrs = []any{slog.String("raw_error", err.Error())}
	}

	if c != nil {
		attrs = append(attrs,
			slog.String("method", c.Request().Method),
			slog.String("url", c.Request().URL.String()))
	}

	slog.Error("stack error", attrs...)
}

func callerFrame(skip int, err error) string {
	_, path, no, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	_, file := filepath.Split(path)
	return fmt.Sprintf("%s:%d %s", file, no, err.Error())
}
