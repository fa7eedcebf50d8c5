// Структуры запросов и ответов HTTP API документов.
package dto

import (
	"encoding/json"
	"time"

	"github.com/aisa-it/richdoc/internal/richdoc/editor"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
)

type DocumentLight struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Document struct {
	DocumentLight
	CreatedAt time.Time `json:"created_at"`

	Content json.RawMessage `json:"content" swaggertype:"object"`
	State   *EditorState    `json:"state,omitempty"`
}

type Revision struct {
	Id        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// EditorState - выделение и состояние панели инструментов после команды
type EditorState struct {
	Selection *Selection   `json:"selection"`
	Toolbar   editor.State `json:"toolbar"`
	Undos     []string     `json:"undos,omitempty"`
}

type Point struct {
	Path   []int `json:"path" validate:"required,min=1,dive,min=0"`
	Offset int   `json:"offset" validate:"min=0"`
}

type Selection struct {
	Anchor Point `json:"anchor"`
	Focus  Point `json:"focus"`
}

func NewSelection(r *engine.Range) *Selection {
	if r == nil {
		return nil
	}
	return &Selection{
		Anchor: Point{Path: r.Anchor.Path, Offset: r.Anchor.Offset},
		Focus:  Point{Path: r.Focus.Path, Offset: r.Focus.Offset},
	}
}

func NewEditorState(e *engine.Editor) *EditorState {
	return &EditorState{
		Selection: NewSelection(e.Selection()),
		Toolbar:   editor.ToolbarState(e),
		Undos:     e.History().Undos(),
	}
}

type CreateDocumentRequest struct {
	Title   string            `json:"title" validate:"documentTitle"`
	Content *edtypes.Document `json:"content,omitempty" validate:"-"`
}

type RenameDocumentRequest struct {
	Title string `json:"title" validate:"required,documentTitle"`
}

// SelectionRequest без anchor снимает выделение, без focus ставит каретку в anchor
type SelectionRequest struct {
	Anchor *Point `json:"anchor,omitempty"`
	Focus  *Point `json:"focus,omitempty"`
}

func (r SelectionRequest) Range() *engine.Range {
	if r.Anchor == nil {
		return nil
	}
	anchor := engine.Point{Path: engine.Path(r.Anchor.Path), Offset: r.Anchor.Offset}
	focus := anchor
	if r.Focus != nil {
		focus = engine.Point{Path: engine.Path(r.Focus.Path), Offset: r.Focus.Offset}
	}
	return &engine.Range{Anchor: anchor, Focus: focus}
}

// CommandRequest - действие панели инструментов, поля совпадают с editor.Intent.
// Selection, если задано, применяется перед командой.
type CommandRequest struct {
	Command string `json:"command" validate:"required,command"`
	Format  string `json:"format,omitempty"`
	Value   string `json:"value,omitempty"`

	URL     string `json:"url,omitempty" validate:"max=2048"`
	Text    string `json:"text,omitempty" validate:"max=10000"`
	Alt     string `json:"alt,omitempty" validate:"max=500"`
	Caption string `json:"caption,omitempty" validate:"max=500"`
	Title   string `json:"title,omitempty" validate:"max=500"`

	Rows string `json:"rows,omitempty"`
	Cols string `json:"cols,omitempty"`

	Reverse bool `json:"reverse,omitempty"`

	Selection *SelectionRequest `json:"selection,omitempty"`
}

func (r CommandRequest) Intent() editor.Intent {
	return editor.Intent{
		Command: r.Command,
		Format:  r.Format,
		Value:   r.Value,
		URL:     r.URL,
		Text:    r.Text,
		Alt:     r.Alt,
		Caption: r.Caption,
		Title:   r.Title,
		Rows:    r.Rows,
		Cols:    r.Cols,
		Reverse: r.Reverse,
	}
}

type HotkeyRequest struct {
	Key string `json:"key" validate:"required,max=16"`
	Mod bool   `json:"mod"`
}

type MacroRequest struct {
	Script string `json:"script" validate:"required"`
}

type MacroResponse struct {
	Commands int          `json:"commands"`
	Messages []string     `json:"messages,omitempty"`
	State    *EditorState `json:"state"`
}

type ImportHTMLRequest struct {
	Title string `json:"title" validate:"documentTitle"`
	HTML  string `json:"html" validate:"required"`
}
