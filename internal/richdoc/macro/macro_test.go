package macro

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	"github.com/aisa-it/richdoc/internal/richdoc/editor"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor() *engine.Editor {
	return engine.New(&edtypes.Document{Children: []edtypes.Node{
		edtypes.NewParagraph(edtypes.NewText("hello world")),
	}})
}

func TestRun(t *testing.T) {
	e := newEditor()

	res, err := Run(context.Background(), e, `
		select({0, 0}, 0, {0, 0}, 5)
		toggle_mark("bold")
		if is_mark_active("bold") then
			log("bold: " .. selected_text())
		end
		collapse("end")
		set_heading(2)
		log("level " .. heading_level())
	`)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Commands)
	assert.Equal(t, []string{"bold: hello", "level 2"}, res.Messages)

	h, ok := e.Children()[0].(*edtypes.Heading)
	require.True(t, ok)
	assert.Equal(t, 2, h.Level)
	assert.True(t, h.Content[0].(*edtypes.Text).Bold)

	// весь макрос отменяется одним шагом
	require.NoError(t, e.Undo())
	assert.True(t, edtypes.EqualNodes(newEditor().Children(), e.Children()))
	assert.False(t, e.History().CanUndo())
}

func TestRun_Insertions(t *testing.T) {
	e := newEditor()

	_, err := Run(context.Background(), e, `
		select({0, 0}, 11)
		insert_divider()
		insert_text("after")
		insert_table(2, 3)
		insert_link("example.com", "site")
	`)
	require.NoError(t, err)

	assert.IsType(t, &edtypes.Divider{}, e.Children()[1])
	assert.Equal(t, "after", edtypes.String(e.Children()[2]))
	var table *edtypes.Table
	for _, n := range e.Children() {
		if tbl, ok := n.(*edtypes.Table); ok {
			table = tbl
		}
	}
	require.NotNil(t, table)
	assert.Len(t, table.Content, 2)
	assert.Equal(t, "https://example.com", editor.GetActiveLinkURL(e))
	assert.Empty(t, edtypes.Validate(e.Document()))
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name   string
		script string
		msg    string
	}{
		{"syntax", `select({0, 0}, `, ""},
		{"unknown mark", `select({0, 0}, 0, {0, 0}, 5) toggle_mark("bold") toggle_mark("strike")`, "unknown format strike"},
		{"bad path", `select({5, 0}, 0)`, "select"},
		{"empty url", `select({0, 0}, 0) insert_image("  ")`, "url is required"},
		{"os is denied", `os.exit(1)`, ""},
		{"io is denied", `io.open("/etc/passwd")`, ""},
		{"require is denied", `require("socket")`, ""},
		{"error", `error("stop")`, "stop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor()
			before := e.Document().Clone()

			_, err := Run(context.Background(), e, tt.script)
			require.Error(t, err)
			assert.ErrorIs(t, err, apierrors.ErrMacroFailed)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}

			assert.True(t, edtypes.EqualNodes(before.Children, e.Children()))
			assert.False(t, e.History().CanUndo())
		})
	}
}

func TestRun_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, newEditor(), `while true do end`)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrMacroFailed)
	assert.Contains(t, err.Error(), "timeout")
}

func TestRun_TooLong(t *testing.T) {
	_, err := Run(context.Background(), newEditor(), strings.Repeat("-", MaxScriptLength+1))
	assert.ErrorIs(t, err, apierrors.ErrMacroTooLong)
}
