// Ответы с ошибками API и их запись в лог.
package richdoc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	errStack "github.com/aisa-it/richdoc/internal/richdoc/stack-error"
	"github.com/labstack/echo/v4"
)

// EError отвечает описанной ошибкой из цепочки err. Неописанные ошибки пишутся в лог,
// клиент получает ErrGeneric.
func EError(c echo.Context, err error) error {
	var defined apierrors.DefinedError
	if errors.As(err, &defined) {
		return EErrorDefined(c, defined)
	}

	var te *errStack.TrackerError
	if errors.As(err, &te) {
		if dc, ok := c.(DocumentContext); ok {
			te.AddContext("document_id", dc.Session.ID)
		}
		errStack.GetError(c, te)
	} else {
		logAPIError(c, err, http.StatusInternalServerError)
	}
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// EErrorMsgStatus отвечает ErrGeneric с заданным статусом и текстом err
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	if status == http.StatusRequestEntityTooLarge {
		return EErrorDefined(c, apierrors.ErrEntityTooLarge)
	}

	logAPIError(c, err, status)

	res := apierrors.ErrGeneric
	res.StatusCode = status
	if err != nil {
		res.Err = err.Error()
	}
	return EErrorDefined(c, res)
}

// EErrorDefined отвечает JSON ошибки, неизвестный статус заменяется на 400
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

func logAPIError(c echo.Context, err error, status int) {
	attrs := []any{
		slog.Int("status", status),
		"method", c.Request().Method,
		"url", c.Request().URL,
		getCallerFile(3),
	}
	if dc, ok := c.(DocumentContext); ok {
		attrs = append(attrs, "document_id", dc.Session.ID)
	}
	if err == nil {
		slog.Error("Unknown API error", attrs...)
		return
	}
	slog.Error("API error", append(attrs, "err", err)...)
}

func getCallerFile(skip int) slog.Attr {
	_, path, no, ok := runtime.Caller(skip)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
