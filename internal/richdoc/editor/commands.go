// Пакет editor - команды панели инструментов редактора документов поверх движка engine.
//
// Основные возможности:
//   - Запросы активного форматирования выделения (стили, блоки, выравнивание, ссылки).
//   - Команды форматирования: стили текста, типы блоков, заголовки, выравнивание, цвет и размер шрифта.
//   - Вставка изображений, видео, разделителей, таблиц и ссылок.
//   - Разбор пользовательского ввода панели инструментов (Intent) и горячие клавиши.
//   - Начальный документ и импорт HTML.
//
// Каждая команда выполняется одной транзакцией движка: изменения применяются целиком или не применяются,
// в историю отмены попадает один пакет. Без выделения команды ничего не делают.
package editor

import (
	"slices"

	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
)

// ToggleableBlocks - типы блоков, которые переключает ToggleBlock
var ToggleableBlocks = []edtypes.Kind{
	edtypes.KindParagraph,
	edtypes.KindHeading,
	edtypes.KindBlockquote,
	edtypes.KindCodeBlock,
	edtypes.KindBulletedList,
	edtypes.KindNumberedList,
}

// ToggleMark выключает стиль, если он активен, иначе включает. Остальные стили не меняются.
func ToggleMark(e *engine.Editor, mark edtypes.Mark) error {
	if e.Selection() == nil {
		return nil
	}
	if IsMarkActive(e, mark) {
		return e.RemoveMark(mark)
	}
	return e.AddMark(mark)
}

// ToggleBlock переключает тип текстовых блоков выделения. Активный тип возвращает блоки в абзацы,
// список оборачивает блоки в новый контейнер. Родительские списки всегда разворачиваются
// с разделением, чтобы пункт не оказался в двух списках.
func ToggleBlock(e *engine.Editor, kind edtypes.Kind) error {
	if !slices.Contains(ToggleableBlocks, kind) {
		return apierrors.ErrUnknownFormat.WithFormattedMessage(string(kind))
	}
	if e.Selection() == nil {
		return nil
	}
	isActive := IsBlockActive(e, kind)
	isList := kind == edtypes.KindBulletedList || kind == edtypes.KindNumberedList

	return e.Transact("toggle_block", func() error {
		if err := e.UnwrapNodes(engine.TransformOptions{Match: matchList, Split: true}); err != nil {
			return err
		}

		target := kind
		switch {
		case isActive:
			target = edtypes.KindParagraph
		case isList:
			target = edtypes.KindListItem
		}
		err := e.SetNodes(func(n edtypes.Node) edtypes.Node {
			return edtypes.Retype(n.(edtypes.Element), target)
		}, engine.TransformOptions{Match: matchTextBlock})
		if err != nil {
			return err
		}

		if !isActive && isList {
			return e.WrapNodes(edtypes.NewContainer(kind), engine.TransformOptions{Match: engine.MatchKind(edtypes.KindListItem)})
		}
		return nil
	})
}

// SetHeadingLevel делает текстовые блоки выделения заголовками уровня level.
// Уровень 0 превращает заголовки в абзацы, уровень при этом удаляется.
func SetHeadingLevel(e *engine.Editor, level int) error {
	if level != 0 && (level < edtypes.MinHeadingLevel || level > edtypes.MaxHeadingLevel) {
		return apierrors.ErrInvalidHeadingLevel
	}
	if e.Selection() == nil {
		return nil
	}

	if level == 0 {
		return e.Transact("set_heading_level", func() error {
			return e.SetNodes(func(n edtypes.Node) edtypes.Node {
				return edtypes.Retype(n.(edtypes.Element), edtypes.KindParagraph)
			}, engine.TransformOptions{Match: engine.MatchKind(edtypes.KindHeading)})
		})
	}

	return e.Transact("set_heading_level", func() error {
		if err := e.UnwrapNodes(engine.TransformOptions{Match: matchList, Split: true}); err != nil {
			return err
		}
		return e.SetNodes(func(n edtypes.Node) edtypes.Node {
			h := edtypes.Retype(n.(edtypes.Element), edtypes.KindHeading).(*edtypes.Heading)
			h.Level = level
			return h
		}, engine.TransformOptions{Match: matchTextBlock})
	})
}
