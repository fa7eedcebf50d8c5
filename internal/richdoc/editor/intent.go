package editor

import (
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
)

// Команды панели инструментов
const (
	CmdToggleMark      = "toggle-mark"
	CmdToggleBlock     = "toggle-block"
	CmdSetHeadingLevel = "set-heading-level"
	CmdSetFontSize     = "set-font-size"
	CmdSetAlignment    = "set-alignment"
	CmdSetTextColor    = "set-text-color"
	CmdInsertImage     = "insert-image"
	CmdInsertVideo     = "insert-video"
	CmdInsertDivider   = "insert-divider"
	CmdInsertTable     = "insert-table"
	CmdToggleLink      = "toggle-link"
	CmdInsertLink      = "insert-link"
	CmdRemoveLink      = "remove-link"
	CmdInsertText      = "insert-text"
	CmdDelete          = "delete"
	CmdUndo            = "undo"
	CmdRedo            = "redo"
)

// Commands - все команды в порядке описания
var Commands = []string{
	CmdToggleMark, CmdToggleBlock, CmdSetHeadingLevel, CmdSetFontSize, CmdSetAlignment, CmdSetTextColor,
	CmdInsertImage, CmdInsertVideo, CmdInsertDivider, CmdInsertTable,
	CmdToggleLink, CmdInsertLink, CmdRemoveLink,
	CmdInsertText, CmdDelete, CmdUndo, CmdRedo,
}

// Intent - действие пользователя на панели инструментов. Строковые поля содержат ввод как есть,
// Dispatch проверяет и разбирает их перед вызовом команды.
type Intent struct {
	Command string `json:"command"`
	Format  string `json:"format,omitempty"`
	Value   string `json:"value,omitempty"`

	URL     string `json:"url,omitempty"`
	Text    string `json:"text,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
	Title   string `json:"title,omitempty"`

	Rows string `json:"rows,omitempty"`
	Cols string `json:"cols,omitempty"`

	Reverse bool `json:"reverse,omitempty"`
}

// Dispatch проверяет ввод и выполняет команду. Некорректный ввод возвращает apierrors.DefinedError
// без изменения документа.
func Dispatch(e *engine.Editor, in Intent) error {
	err := dispatch(e, in)
	if err != nil {
		slog.Debug("Dispatch intent", "command", in.Command, "err", err)
	}
	return err
}

func dispatch(e *engine.Editor, in Intent) error {
	switch in.Command {
	case CmdToggleMark:
		mark, err := edtypes.ParseMark(strings.TrimSpace(in.Format))
		if err != nil {
			return apierrors.ErrUnknownFormat.WithFormattedMessage(in.Format)
		}
		return ToggleMark(e, mark)

	case CmdToggleBlock:
		return ToggleBlock(e, edtypes.Kind(strings.TrimSpace(in.Format)))

	case CmdSetHeadingLevel:
		level, err := parseOptionalInt(in.Value)
		if err != nil {
			return apierrors.ErrInvalidHeadingLevel
		}
		return SetHeadingLevel(e, level)

	case CmdSetFontSize:
		size, err := parseOptionalInt(strings.TrimSuffix(strings.TrimSpace(in.Value), "px"))
		if err != nil {
			return apierrors.ErrInvalidFontSize
		}
		return SetFontSize(e, size)

	case CmdSetAlignment:
		align, err := edtypes.ParseTextAlign(in.Value)
		if err != nil {
			return apierrors.ErrInvalidAlignment.WithFormattedMessage(in.Value)
		}
		return SetAlignment(e, align)

	case CmdSetTextColor:
		raw := strings.TrimSpace(in.Value)
		if raw == "" {
			return SetTextColor(e, nil)
		}
		c, err := edtypes.ParseColor(raw)
		if err != nil {
			return apierrors.ErrInvalidColor.WithFormattedMessage(raw)
		}
		return SetTextColor(e, &c)

	case CmdInsertImage:
		url := strings.TrimSpace(in.URL)
		if url == "" {
			return apierrors.ErrURLRequired
		}
		return InsertImage(e, url, in.Alt, in.Caption)

	case CmdInsertVideo:
		url := strings.TrimSpace(in.URL)
		if url == "" {
			return apierrors.ErrURLRequired
		}
		return InsertVideo(e, url, in.Title)

	case CmdInsertDivider:
		return InsertDivider(e)

	case CmdInsertTable:
		rows, err := parseTableSize(in.Rows)
		if err != nil {
			return err
		}
		cols, err := parseTableSize(in.Cols)
		if err != nil {
			return err
		}
		return InsertTable(e, rows, cols)

	case CmdToggleLink:
		if IsLinkActive(e) {
			return RemoveLink(e)
		}
		fallthrough
	case CmdInsertLink:
		url := strings.TrimSpace(in.URL)
		if url == "" {
			return apierrors.ErrURLRequired
		}
		return UpsertLink(e, url, strings.TrimSpace(in.Text))

	case CmdRemoveLink:
		return RemoveLink(e)

	case CmdInsertText:
		if in.Text == "" {
			return apierrors.ErrTextRequired
		}
		return e.InsertText(in.Text)

	case CmdDelete:
		return e.Delete(engine.DeleteOptions{Reverse: in.Reverse})

	case CmdUndo:
		if err := e.Undo(); errors.Is(err, engine.ErrNothingToUndo) {
			return apierrors.ErrNothingToUndo
		} else if err != nil {
			return err
		}
		return nil

	case CmdRedo:
		if err := e.Redo(); errors.Is(err, engine.ErrNothingToRedo) {
			return apierrors.ErrNothingToRedo
		} else if err != nil {
			return err
		}
		return nil
	}
	return apierrors.ErrUnknownCommand.WithFormattedMessage(in.Command)
}

// parseOptionalInt разбирает число, пустая строка - 0
func parseOptionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// parseTableSize разбирает размер таблицы: пустая строка - 0, нечисловой ввод отклоняется.
// Переполнение дает бесконечность, которую ограничит InsertTable.
func parseTableSize(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if errors.Is(err, strconv.ErrRange) {
		err = nil
	}
	if err != nil || math.IsNaN(v) {
		return 0, apierrors.ErrTableSizeNotNumber
	}
	return v, nil
}
