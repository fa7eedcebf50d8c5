package engine

import (
	"fmt"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

type OpType string

const (
	OpInsertNode   OpType = "insert_node"
	OpRemoveNode   OpType = "remove_node"
	OpSetNode      OpType = "set_node"
	OpSplitNode    OpType = "split_node"
	OpMergeNode    OpType = "merge_node"
	OpMoveNode     OpType = "move_node"
	OpInsertText   OpType = "insert_text"
	OpRemoveText   OpType = "remove_text"
	OpSetSelection OpType = "set_selection"
)

// Operation - атомарное изменение дерева или выделения. Набор заполненных полей зависит от Type:
//   - insert_node/remove_node: Path, Node
//   - set_node: Path, Old, New (узлы без детей и без строки текста)
//   - split_node: Path, Position, Properties (свойства нового правого узла)
//   - merge_node: Path, Position, Properties (свойства поглощаемого узла)
//   - move_node: Path, NewPath
//   - insert_text/remove_text: Path, Offset, Text
//   - set_selection: Selection, NewSelection (nil - выделения нет)
type Operation struct {
	Type OpType

	Path    Path
	NewPath Path

	Node       edtypes.Node
	Old        edtypes.Node
	New        edtypes.Node
	Properties edtypes.Node
	Position   int

	Offset int
	Text   string

	Selection    *Range
	NewSelection *Range
}

func (op Operation) String() string {
	switch op.Type {
	case OpMoveNode:
		return fmt.Sprintf("%s %s -> %s", op.Type, op.Path, op.NewPath)
	case OpInsertText, OpRemoveText:
		return fmt.Sprintf("%s %s:%d %q", op.Type, op.Path, op.Offset, op.Text)
	case OpSplitNode, OpMergeNode:
		return fmt.Sprintf("%s %s@%d", op.Type, op.Path, op.Position)
	case OpSetSelection:
		return fmt.Sprintf("%s %v -> %v", op.Type, op.Selection, op.NewSelection)
	}
	return fmt.Sprintf("%s %s", op.Type, op.Path)
}

// Inverse возвращает операцию, отменяющую op
func (op Operation) Inverse() Operation {
	switch op.Type {
	case OpInsertNode:
		return Operation{Type: OpRemoveNode, Path: op.Path.Clone(), Node: op.Node}
	case OpRemoveNode:
		return Operation{Type: OpInsertNode, Path: op.Path.Clone(), Node: op.Node}
	case OpInsertText:
		return Operation{Type: OpRemoveText, Path: op.Path.Clone(), Offset: op.Offset, Text: op.Text}
	case OpRemoveText:
		return Operation{Type: OpInsertText, Path: op.Path.Clone(), Offset: op.Offset, Text: op.Text}
	case OpSetNode:
		return Operation{Type: OpSetNode, Path: op.Path.Clone(), Old: op.New, New: op.Old}
	case OpSplitNode:
		return Operation{Type: OpMergeNode, Path: op.Path.Next(), Position: op.Position, Properties: op.Properties}
	case OpMergeNode:
		return Operation{Type: OpSplitNode, Path: op.Path.Previous(), Position: op.Position, Properties: op.Properties}
	case OpMoveNode:
		if op.NewPath.Equal(op.Path) {
			return op
		}
		if op.Path.IsSibling(op.NewPath) {
			return Operation{Type: OpMoveNode, Path: op.NewPath.Clone(), NewPath: op.Path.Clone()}
		}
		inversePath, _ := TransformPath(op.Path, op, AffinityForward)
		inverseNewPath, _ := TransformPath(op.Path.Next(), op, AffinityForward)
		return Operation{Type: OpMoveNode, Path: inversePath, NewPath: inverseNewPath}
	case OpSetSelection:
		return Operation{Type: OpSetSelection, Selection: op.NewSelection, NewSelection: op.Selection}
	}
	panic(fmt.Sprintf("engine: unknown operation %q", op.Type))
}

// Inverse возвращает обратную последовательность операций
func Inverse(ops []Operation) []Operation {
	res := make([]Operation, 0, len(ops))
	for i := len(ops) - 1; i >= 0; i-- {
		res = append(res, ops[i].Inverse())
	}
	return res
}
