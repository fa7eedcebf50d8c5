package richdoc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aisa-it/richdoc/internal/richdoc/config"
	"github.com/aisa-it/richdoc/internal/richdoc/dao"
	"github.com/aisa-it/richdoc/internal/richdoc/dto"
	"github.com/aisa-it/richdoc/internal/richdoc/editor"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	e *echo.Echo
	s *Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := dao.Open("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{
		HistoryDepth:    config.DefaultHistoryDepth,
		SessionTTLMin:   config.DefaultSessionTTL,
		MacroTimeoutSec: 1,
	}
	reg := prometheus.NewRegistry()
	s, err := NewServices(db, cfg, reg, "test")
	require.NoError(t, err)
	return &testServer{e: s.Router(reg), s: s}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) create(t *testing.T, body any) dto.Document {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/documents/", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var doc dto.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) dto.EditorState {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var state dto.EditorState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func assertAPIError(t *testing.T, rec *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	var res struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, code, res.Code)
}

func contentKinds(t *testing.T, raw json.RawMessage) []string {
	t.Helper()
	var nodes []struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(raw, &nodes))
	kinds := make([]string, len(nodes))
	for i, n := range nodes {
		kinds[i] = n.Type
	}
	return kinds
}

func selectionBody(path []int, from, to int) map[string]any {
	return map[string]any{
		"anchor": map[string]any{"path": path, "offset": from},
		"focus":  map[string]any{"path": path, "offset": to},
	}
}

func TestCreateDocument(t *testing.T) {
	ts := newTestServer(t)

	t.Run("bootstrap", func(t *testing.T) {
		doc := ts.create(t, map[string]any{})
		assert.Equal(t, defaultTitle, doc.Title)
		assert.Len(t, contentKinds(t, doc.Content), 11)
		require.NotNil(t, doc.State)
		assert.Nil(t, doc.State.Selection)
		assert.False(t, doc.State.Toolbar.CanUndo)
	})

	t.Run("with content", func(t *testing.T) {
		doc := ts.create(t, map[string]any{
			"title":   "메모",
			"content": []any{map[string]any{"type": "paragraph", "children": []any{map[string]any{"text": "hi", "bold": true}}}},
		})
		assert.Equal(t, "메모", doc.Title)
		assert.Equal(t, []string{"paragraph"}, contentKinds(t, doc.Content))
	})

	t.Run("title too long", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/documents/", map[string]any{"title": strings.Repeat("a", 151)})
		assertAPIError(t, rec, http.StatusBadRequest, 1011)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/documents/", strings.NewReader("{"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		ts.e.ServeHTTP(rec, req)
		assertAPIError(t, rec, http.StatusBadRequest, 1010)
	})

	rec := ts.do(t, http.MethodGet, "/api/documents/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []dto.DocumentLight
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestCommands(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.create(t, nil)
	base := "/api/documents/" + doc.Id

	state := decodeState(t, ts.do(t, http.MethodPost, base+"/selection/", selectionBody([]int{1, 0}, 0, 4)))
	require.NotNil(t, state.Selection)
	assert.Equal(t, []int{1, 0}, state.Selection.Focus.Path)
	assert.Equal(t, 4, state.Selection.Focus.Offset)
	assert.Equal(t, "이것은 ", state.Toolbar.SelectedText)
	assert.False(t, state.Toolbar.Marks[edtypes.MarkBold])

	state = decodeState(t, ts.do(t, http.MethodPost, base+"/commands/", map[string]any{
		"command": editor.CmdToggleMark,
		"format":  "bold",
	}))
	assert.True(t, state.Toolbar.Marks[edtypes.MarkBold])
	assert.True(t, state.Toolbar.CanUndo)
	assert.Equal(t, float64(1), testutil.ToFloat64(ts.s.metrics.commands.WithLabelValues(editor.CmdToggleMark)))

	state = decodeState(t, ts.do(t, http.MethodPost, base+"/undo/", nil))
	assert.False(t, state.Toolbar.Marks[edtypes.MarkBold])
	assert.True(t, state.Toolbar.CanRedo)

	state = decodeState(t, ts.do(t, http.MethodPost, base+"/redo/", nil))
	assert.True(t, state.Toolbar.Marks[edtypes.MarkBold])

	decodeState(t, ts.do(t, http.MethodPost, base+"/undo/", nil))
	assertAPIError(t, ts.do(t, http.MethodPost, base+"/undo/", nil), http.StatusConflict, 2004)

	t.Run("selection in request", func(t *testing.T) {
		state := decodeState(t, ts.do(t, http.MethodPost, base+"/commands/", map[string]any{
			"command":   editor.CmdSetAlignment,
			"value":     "right",
			"selection": selectionBody([]int{0, 0}, 0, 0),
		}))
		assert.True(t, state.Toolbar.Alignments["right"])
	})

	t.Run("hotkey", func(t *testing.T) {
		decodeState(t, ts.do(t, http.MethodPost, base+"/selection/", selectionBody([]int{1, 0}, 0, 4)))
		state := decodeState(t, ts.do(t, http.MethodPost, base+"/hotkeys/", map[string]any{"key": "i", "mod": true}))
		assert.True(t, state.Toolbar.Marks[edtypes.MarkItalic])
	})

	state = decodeState(t, ts.do(t, http.MethodGet, base+"/state/", nil))
	assert.Len(t, state.Undos, 2)
	assert.False(t, state.Toolbar.CanRedo)
}

func TestCommands_Rejected(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.create(t, nil)
	base := "/api/documents/" + doc.Id

	decodeState(t, ts.do(t, http.MethodPost, base+"/selection/", selectionBody([]int{1, 0}, 0, 4)))

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   int
	}{
		{"empty image url", http.MethodPost, base + "/commands/", map[string]any{"command": "insert-image", "url": "  "}, http.StatusBadRequest, 1001},
		{"table size", http.MethodPost, base + "/commands/", map[string]any{"command": "insert-table", "rows": "abc"}, http.StatusBadRequest, 1002},
		{"color", http.MethodPost, base + "/commands/", map[string]any{"command": "set-text-color", "value": "#zz"}, http.StatusBadRequest, 1003},
		{"unknown command", http.MethodPost, base + "/commands/", map[string]any{"command": "strike"}, http.StatusBadRequest, 1011},
		{"missing command", http.MethodPost, base + "/commands/", map[string]any{}, http.StatusBadRequest, 1011},
		{"selection out of document", http.MethodPost, base + "/selection/", selectionBody([]int{99, 0}, 0, 0), http.StatusBadRequest, 2003},
		{"negative path", http.MethodPost, base + "/selection/", selectionBody([]int{-1}, 0, 0), http.StatusBadRequest, 2003},
		{"empty path", http.MethodPost, base + "/selection/", selectionBody([]int{}, 0, 0), http.StatusBadRequest, 2003},
		{"redo", http.MethodPost, base + "/redo/", nil, http.StatusConflict, 2005},
		{"bad id", http.MethodGet, "/api/documents/42/state/", nil, http.StatusBadRequest, 2006},
		{"missing document", http.MethodGet, "/api/documents/" + uuid.Must(uuid.NewV4()).String() + "/state/", nil, http.StatusNotFound, 2001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAPIError(t, ts.do(t, tt.method, tt.path, tt.body), tt.status, tt.code)
		})
	}

	state := decodeState(t, ts.do(t, http.MethodGet, base+"/state/", nil))
	assert.False(t, state.Toolbar.CanUndo)
	assert.Equal(t, "이것은 ", state.Toolbar.SelectedText)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.create(t, map[string]any{"title": "demo"})
	base := "/api/documents/" + doc.Id + "/export/"

	t.Run("markdown", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, base+"md", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/markdown")
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "demo.md")
		assert.Contains(t, rec.Body.String(), "Slate.js 텍스트 에디터 데모")
	})

	t.Run("json", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, base+"json/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, contentKinds(t, rec.Body.Bytes()), 11)
	})

	t.Run("html", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, base+"html/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<title>demo</title>")
	})

	t.Run("unsupported", func(t *testing.T) {
		assertAPIError(t, ts.do(t, http.MethodGet, base+"docx/", nil), http.StatusBadRequest, 3001)
	})
}

func TestMacro(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.create(t, nil)
	base := "/api/documents/" + doc.Id

	rec := ts.do(t, http.MethodPost, base+"/macro/", map[string]any{
		"script": `select({1, 0}, 0, {1, 0}, 4)
toggle_mark("underline")
log("done")`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res dto.MacroResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{"done"}, res.Messages)
	assert.True(t, res.State.Toolbar.Marks[edtypes.MarkUnderline])
	assert.Equal(t, []string{"macro"}, res.State.Undos)

	assertAPIError(t, ts.do(t, http.MethodPost, base+"/macro/", map[string]any{"script": `error("boom")`}), http.StatusUnprocessableEntity, 3004)
	assertAPIError(t, ts.do(t, http.MethodPost, base+"/macro/", map[string]any{"script": ""}), http.StatusBadRequest, 1011)
}

func TestImportHTML(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/documents/import/html/", map[string]any{
		"title": "imported",
		"html":  `<h1>Title</h1><p>text <b>bold</b></p><script>alert(1)</script>`,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var doc dto.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "imported", doc.Title)
	assert.Equal(t, []string{"heading", "paragraph"}, contentKinds(t, doc.Content))
	assert.NotContains(t, string(doc.Content), "alert")

	assertAPIError(t, ts.do(t, http.MethodPost, "/api/documents/import/html/", map[string]any{"html": "<script>x</script>"}), http.StatusBadRequest, 3003)
	assertAPIError(t, ts.do(t, http.MethodPost, "/api/documents/import/html/", map[string]any{}), http.StatusBadRequest, 1011)
}

func TestDocumentLifecycle(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.create(t, nil)
	base := "/api/documents/" + doc.Id + "/"

	rec := ts.do(t, http.MethodPatch, base, map[string]any{"title": "renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var renamed dto.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &renamed))
	assert.Equal(t, "renamed", renamed.Title)

	decodeState(t, ts.do(t, http.MethodPost, base+"selection/", selectionBody([]int{1, 0}, 0, 4)))
	decodeState(t, ts.do(t, http.MethodPost, base+"commands/", map[string]any{"command": "toggle-mark", "format": "code"}))

	rec = ts.do(t, http.MethodPost, base+"save/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, base+"revisions/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var revisions []dto.Revision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &revisions))
	assert.Len(t, revisions, 1)

	rec = ts.do(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assertAPIError(t, ts.do(t, http.MethodGet, base, nil), http.StatusNotFound, 2001)
	assert.Equal(t, 0, ts.s.sessions.Count())
}

func TestMeta(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/toolbar/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []editor.ToolbarGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	assert.Len(t, groups, 6)

	rec = ts.do(t, http.MethodGet, "/api/_health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "richdoc", rec.Header().Get(echo.HeaderServer))

	rec = ts.do(t, http.MethodGet, "/api/version/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)

	rec = ts.do(t, http.MethodGet, "/api/unknown/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
