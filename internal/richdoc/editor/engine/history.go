package engine

import (
	"log/slog"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

// DefaultHistoryDepth - сколько пакетов отмены хранится по умолчанию
const DefaultHistoryDepth = 100

// transaction - состояние открытой транзакции. Вложенные транзакции только меняют глубину.
type transaction struct {
	depth    int
	name     string
	poisoned bool
	ops      []Operation

	preDoc       *edtypes.Document
	preSelection *Range
	preMarks     *edtypes.Marks
}

// InTransaction сообщает, открыта ли транзакция
func (e *Editor) InTransaction() bool {
	return e.tx != nil
}

// TransactionStart открывает транзакцию или увеличивает глубину вложенной
func (e *Editor) TransactionStart(name string) {
	if e.tx != nil {
		e.tx.depth++
		return
	}
	e.tx = &transaction{
		depth:        1,
		name:         name,
		preDoc:       e.doc.Clone(),
		preSelection: e.Selection(),
		preMarks:     e.PendingMarks(),
	}
}

// TransactionCommit завершает транзакцию. Внешний commit нормализует документ,
// записывает пакет операций в историю и вызывает OnChange.
func (e *Editor) TransactionCommit() error {
	if e.tx == nil {
		return ErrNoTransaction
	}
	e.tx.depth--
	if e.tx.depth > 0 {
		return nil
	}

	tx := e.tx
	if tx.poisoned {
		e.rollbackToPreTransaction()
		e.tx = nil
		return ErrTransactionPoisoned
	}

	// Нормализация пишет операции в ту же транзакцию
	if err := e.catch(e.normalize); err != nil {
		e.rollbackToPreTransaction()
		e.tx = nil
		return err
	}
	e.tx = nil

	if len(tx.ops) == 0 {
		return nil
	}
	// Изменения выделения в историю не попадают, их восстанавливает SelectionBefore/After
	var saved []Operation
	for _, op := range tx.ops {
		if op.Type != OpSetSelection {
			saved = append(saved, op)
		}
	}
	if !e.replaying && len(saved) > 0 {
		e.history.push(Batch{
			Name:            tx.name,
			Ops:             saved,
			SelectionBefore: tx.preSelection,
			SelectionAfter:  e.Selection(),
		})
	}
	if e.OnChange != nil {
		e.OnChange(tx.ops)
	}
	return nil
}

// TransactionRollback отменяет транзакцию. Внутренний rollback отравляет внешнюю транзакцию,
// и ее commit тоже откатится.
func (e *Editor) TransactionRollback() error {
	if e.tx == nil {
		return ErrNoTransaction
	}
	e.tx.poisoned = true
	e.tx.depth--
	if e.tx.depth == 0 {
		e.rollbackToPreTransaction()
		e.tx = nil
	}
	return nil
}

func (e *Editor) rollbackToPreTransaction() {
	tx := e.tx
	if tx == nil {
		return
	}
	slog.Debug("Rollback transaction", "name", tx.name, "ops", len(tx.ops))
	e.doc.Children = tx.preDoc.Children
	e.selection = tx.preSelection
	e.marks = tx.preMarks
}

// Transact выполняет fn в транзакции. Ошибка fn или операции движка откатывает все изменения.
func (e *Editor) Transact(name string, fn func() error) (err error) {
	e.TransactionStart(name)
	defer func() {
		if r := recover(); r != nil {
			ee, ok := r.(engineError)
			if !ok {
				_ = e.TransactionRollback()
				panic(r)
			}
			err = ee.err
		}
		if err != nil {
			_ = e.TransactionRollback()
			return
		}
		err = e.TransactionCommit()
	}()
	return fn()
}

// WithTransaction выполняет fn одной транзакцией: один пакет истории на все операции
func WithTransaction(e *Editor, fn func() error) error {
	return e.Transact("batch", fn)
}

// Batch - операции одной внешней транзакции
type Batch struct {
	Name            string
	Ops             []Operation
	SelectionBefore *Range
	SelectionAfter  *Range
}

// History - стеки отмены и повтора
type History struct {
	depth int
	undos []Batch
	redos []Batch
}

func NewHistory(depth int) *History {
	h := &History{}
	h.SetDepth(depth)
	return h
}

// SetDepth ограничивает число хранимых пакетов отмены, лишние старые пакеты отбрасываются
func (h *History) SetDepth(depth int) {
	if depth < 1 {
		depth = 1
	}
	h.depth = depth
	h.trim()
}

func (h *History) Depth() int {
	return h.depth
}

func (h *History) CanUndo() bool {
	return len(h.undos) > 0
}

func (h *History) CanRedo() bool {
	return len(h.redos) > 0
}

// Undos возвращает имена пакетов отмены от старых к новым
func (h *History) Undos() []string {
	res := make([]string, len(h.undos))
	for i, b := range h.undos {
		res[i] = b.Name
	}
	return res
}

// Clear очищает историю
func (h *History) Clear() {
	h.undos = nil
	h.redos = nil
}

func (h *History) push(b Batch) {
	h.undos = append(h.undos, b)
	h.redos = nil
	h.trim()
}

func (h *History) trim() {
	if over := len(h.undos) - h.depth; over > 0 {
		h.undos = append([]Batch(nil), h.undos[over:]...)
	}
}

// Undo откатывает последний пакет и восстанавливает выделение до него
func (e *Editor) Undo() error {
	if e.tx != nil {
		return ErrTransactionActive
	}
	h := e.history
	if len(h.undos) == 0 {
		return ErrNothingToUndo
	}
	b := h.undos[len(h.undos)-1]

	err := e.replay("undo", func() {
		for _, op := range Inverse(b.Ops) {
			e.apply(op)
		}
		e.setSelection(b.SelectionBefore)
	})
	if err != nil {
		return err
	}
	h.undos = h.undos[:len(h.undos)-1]
	h.redos = append(h.redos, b)
	return nil
}

// Redo повторяет последний отмененный пакет
func (e *Editor) Redo() error {
	if e.tx != nil {
		return ErrTransactionActive
	}
	h := e.history
	if len(h.redos) == 0 {
		return ErrNothingToRedo
	}
	b := h.redos[len(h.redos)-1]

	err := e.replay("redo", func() {
		for _, op := range b.Ops {
			e.apply(op)
		}
		e.setSelection(b.SelectionAfter)
	})
	if err != nil {
		return err
	}
	h.redos = h.redos[:len(h.redos)-1]
	h.undos = append(h.undos, b)
	return nil
}

// replay применяет операции истории в транзакции, не записывая их в историю
func (e *Editor) replay(name string, fn func()) error {
	e.replaying = true
	defer func() { e.replaying = false }()
	return e.Transact(name, func() error {
		fn()
		return nil
	})
}
