// Package engine - движок редактирования дерева документа.
//
// Основные возможности:
//   - Адресация узлов путями, точки и диапазоны выделения.
//   - Атомарные операции с обратными операциями (insert/remove/set/split/merge/move/text/selection).
//   - Запросы по дереву (Nodes, Above, Levels, UnhangRange, Marks).
//   - Преобразования поверх операций (InsertNodes, SetNodes, WrapNodes, UnwrapNodes, ...).
//   - Транзакции с нормализацией и история отмены/повтора.
package engine

import "errors"

// Ошибки адресации
var (
	// ErrInvalidPath - путь не указывает на существующий узел
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidOffset - смещение за пределами текста
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrNotElement - ожидался элемент, найден текст
	ErrNotElement = errors.New("node is not an element")

	// ErrNotText - ожидался текст, найден элемент
	ErrNotText = errors.New("node is not a text")

	// ErrRootPath - операция недопустима для корня документа
	ErrRootPath = errors.New("operation not allowed on root path")

	// ErrMoveIntoSelf - перемещение узла внутрь самого себя
	ErrMoveIntoSelf = errors.New("cannot move a node into itself")

	// ErrMergeMismatch - объединение текста с элементом
	ErrMergeMismatch = errors.New("cannot merge nodes of different kinds")
)

// Ошибки транзакций
var (
	// ErrTransactionActive - отмена и повтор недоступны внутри транзакции
	ErrTransactionActive = errors.New("transaction is active")

	// ErrNoTransaction - commit или rollback без активной транзакции
	ErrNoTransaction = errors.New("no active transaction")

	// ErrTransactionPoisoned - вложенная транзакция была откатана
	ErrTransactionPoisoned = errors.New("transaction was poisoned by inner rollback")

	// ErrNothingToUndo - история отмены пуста
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo - история повтора пуста
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNormalizeLoop - нормализация не сошлась
	ErrNormalizeLoop = errors.New("normalization did not converge")
)

// engineError передается паникой внутри преобразований и превращается в ошибку на границе транзакции
type engineError struct {
	err error
}

func fail(err error) {
	panic(engineError{err})
}
