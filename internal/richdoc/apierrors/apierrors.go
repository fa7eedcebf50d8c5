// Пакет содержит определения ошибок richdoc: отказы в пользовательском вводе команд панели инструментов,
// ошибки документов, сессий редактирования, экспорта и макросов. Каждая ошибка имеет код, статус HTTP
// и описание на английском и русском языках.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы отформатированные копии совпадали с исходной
func (e DefinedError) Is(target error) bool {
	var t DefinedError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrGeneric = DefinedError{Code: 1000, StatusCode: http.StatusInternalServerError, Err: "internal error", RuErr: "Внутренняя ошибка"}

	// 1*** - command input errors
	ErrURLRequired         = DefinedError{Code: 1001, StatusCode: http.StatusBadRequest, Err: "url is required", RuErr: "Адрес ссылки не может быть пустым"}
	ErrTableSizeNotNumber  = DefinedError{Code: 1002, StatusCode: http.StatusBadRequest, Err: "table size must be a number", RuErr: "Количество строк и столбцов должно быть числом"}
	ErrInvalidColor        = DefinedError{Code: 1003, StatusCode: http.StatusBadRequest, Err: "invalid color %s", RuErr: "Неверный цвет %s"}
	ErrInvalidHeadingLevel = DefinedError{Code: 1004, StatusCode: http.StatusBadRequest, Err: "heading level must be between 1 and 6", RuErr: "Уровень заголовка должен быть от 1 до 6"}
	ErrInvalidFontSize     = DefinedError{Code: 1005, StatusCode: http.StatusBadRequest, Err: "font size must be between 9 and 30", RuErr: "Размер шрифта должен быть от 9 до 30"}
	ErrUnknownFormat       = DefinedError{Code: 1006, StatusCode: http.StatusBadRequest, Err: "unknown format %s", RuErr: "Неизвестный формат %s"}
	ErrUnknownCommand      = DefinedError{Code: 1007, StatusCode: http.StatusBadRequest, Err: "unknown command %s", RuErr: "Неизвестная команда %s"}
	ErrInvalidAlignment    = DefinedError{Code: 1008, StatusCode: http.StatusBadRequest, Err: "invalid alignment %s", RuErr: "Неверное выравнивание %s"}
	ErrTextRequired        = DefinedError{Code: 1009, StatusCode: http.StatusBadRequest, Err: "text is required", RuErr: "Текст не может быть пустым"}
	ErrBadRequest          = DefinedError{Code: 1010, StatusCode: http.StatusBadRequest, Err: "malformed request body", RuErr: "Некорректное тело запроса"}
	ErrRequestValidate     = DefinedError{Code: 1011, StatusCode: http.StatusBadRequest, Err: "request validation failed", RuErr: "Ошибка валидации запроса"}
	ErrEntityTooLarge      = DefinedError{Code: 1012, StatusCode: http.StatusRequestEntityTooLarge, Err: "request entity too large", RuErr: "Слишком большой запрос"}

	// 2*** - document errors
	ErrDocumentNotFound  = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "document not found", RuErr: "Документ не найден"}
	ErrInvalidDocument   = DefinedError{Code: 2002, StatusCode: http.StatusBadRequest, Err: "invalid document: %s", RuErr: "Некорректный документ: %s"}
	ErrInvalidSelection  = DefinedError{Code: 2003, StatusCode: http.StatusBadRequest, Err: "invalid selection", RuErr: "Некорректное выделение"}
	ErrNothingToUndo     = DefinedError{Code: 2004, StatusCode: http.StatusConflict, Err: "nothing to undo", RuErr: "Нечего отменять"}
	ErrNothingToRedo     = DefinedError{Code: 2005, StatusCode: http.StatusConflict, Err: "nothing to redo", RuErr: "Нечего повторять"}
	ErrInvalidID         = DefinedError{Code: 2006, StatusCode: http.StatusBadRequest, Err: "invalid ID", RuErr: "Указан неверный ID"}
	ErrDocumentTitleLong = DefinedError{Code: 2007, StatusCode: http.StatusBadRequest, Err: "document title is too long", RuErr: "Слишком длинное название документа"}

	// 3*** - export, import and macro errors
	ErrUnsupportedExport = DefinedError{Code: 3001, StatusCode: http.StatusBadRequest, Err: "unsupported export format %s", RuErr: "Формат экспорта %s не поддерживается"}
	ErrExportFailed      = DefinedError{Code: 3002, StatusCode: http.StatusInternalServerError, Err: "export failed", RuErr: "Не удалось экспортировать документ"}
	ErrImportFailed      = DefinedError{Code: 3003, StatusCode: http.StatusBadRequest, Err: "import failed: %s", RuErr: "Не удалось импортировать документ: %s"}
	ErrMacroFailed       = DefinedError{Code: 3004, StatusCode: http.StatusUnprocessableEntity, Err: "macro failed: %s", RuErr: "Ошибка выполнения макроса: %s"}
	ErrMacroTooLong      = DefinedError{Code: 3005, StatusCode: http.StatusBadRequest, Err: "macro script is too long", RuErr: "Слишком длинный скрипт макроса"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}
