package editor

import (
	"math"
	"strings"

	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
)

const (
	MinTableRows = 1
	MaxTableRows = 10
	MinTableCols = 1
	MaxTableCols = 6

	DefaultTableRows = 2
	DefaultTableCols = 2
)

// InsertImage вставляет изображение в выделение. Пустой адрес - ничего не делает.
func InsertImage(e *engine.Editor, url, alt, caption string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	return insertBlocks(e, "insert_image", edtypes.NewImage(url, strings.TrimSpace(alt), strings.TrimSpace(caption)))
}

// InsertVideo вставляет видео в выделение. Пустой адрес - ничего не делает.
func InsertVideo(e *engine.Editor, url, title string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	return insertBlocks(e, "insert_video", edtypes.NewVideo(url, strings.TrimSpace(title)))
}

// InsertDivider вставляет разделитель и пустой абзац после него, курсор переходит в абзац
func InsertDivider(e *engine.Editor) error {
	return insertBlocks(e, "insert_divider", edtypes.NewDivider(), edtypes.NewParagraph())
}

// InsertTable вставляет пустую таблицу. Размеры округляются и ограничиваются
// диапазонами [1,10] строк и [1,6] столбцов.
func InsertTable(e *engine.Editor, rows, cols float64) error {
	if math.IsNaN(rows) || math.IsNaN(cols) {
		return apierrors.ErrTableSizeNotNumber
	}
	table := edtypes.NewTable(clampSize(rows, MinTableRows, MaxTableRows), clampSize(cols, MinTableCols, MaxTableCols))
	table.Align = edtypes.LeftAlign
	return insertBlocks(e, "insert_table", table)
}

func clampSize(v float64, lo, hi int) int {
	return int(max(float64(lo), min(float64(hi), math.Round(v))))
}

// insertBlocks вставляет блоки в позицию курсора. Внутри абзаца или другого текстового блока
// верхнего уровня блок разделяется, внутри списка, таблицы или void элемента блоки вставляются
// после контейнера верхнего уровня. Развернутое выделение сначала удаляется.
func insertBlocks(e *engine.Editor, name string, nodes ...edtypes.Node) error {
	if e.Selection() == nil {
		return nil
	}
	return e.Transact(name, func() error {
		if e.Selection().IsExpanded() {
			if err := e.Delete(engine.DeleteOptions{}); err != nil {
				return err
			}
		}
		sel := e.Selection()
		if sel == nil {
			return nil
		}
		top, ok := e.Above(sel.Anchor, engine.IsBlock, engine.ModeHighest, false)
		if ok && !edtypes.IsTextBlock(top.Node) {
			return e.InsertNodes(nodes, engine.TransformOptions{At: top.Path.Next(), Select: true})
		}
		return e.InsertNodes(nodes, engine.TransformOptions{})
	})
}
