package richdoc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	"github.com/aisa-it/richdoc/internal/richdoc/dao"
	"github.com/aisa-it/richdoc/internal/richdoc/dto"
	"github.com/aisa-it/richdoc/internal/richdoc/editor"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
	"github.com/aisa-it/richdoc/internal/richdoc/export"
	"github.com/aisa-it/richdoc/internal/richdoc/macro"
	"github.com/aisa-it/richdoc/internal/richdoc/sessions"
	errStack "github.com/aisa-it/richdoc/internal/richdoc/stack-error"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
)

const defaultTitle = "Untitled"

type DocumentContext struct {
	echo.Context
	Session *sessions.Session
}

func (s *Services) DocumentMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.FromString(c.Param("docId"))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrInvalidID)
		}
		session, err := s.sessions.Get(id)
		if err != nil {
			return EError(c, err)
		}
		return next(DocumentContext{c, session})
	}
}

func (s *Services) AddDocumentServices(g *echo.Group) {
	g.GET("documents/", s.listDocuments)
	g.POST("documents/", s.createDocument)
	g.POST("documents/import/html/", s.importHTML)

	docGroup := g.Group("documents/:docId/", s.DocumentMiddleware)
	docGroup.GET("", s.getDocument)
	docGroup.PATCH("", s.renameDocument)
	docGroup.DELETE("", s.deleteDocument)
	docGroup.POST("save/", s.saveDocument)
	docGroup.GET("revisions/", s.getRevisions)

	docGroup.GET("state/", s.getState)
	docGroup.POST("selection/", s.setSelection)
	docGroup.POST("commands/", s.runCommand)
	docGroup.POST("hotkeys/", s.runHotkey)
	docGroup.POST("undo/", s.undo)
	docGroup.POST("redo/", s.redo)

	docGroup.GET("export/:format/", s.exportDocument)
	docGroup.POST("macro/", s.runMacro)
}

func (s *Services) getToolbar(c echo.Context) error {
	return c.JSON(http.StatusOK, editor.Toolbar())
}

func (s *Services) listDocuments(c echo.Context) error {
	limit := 100
	offset := 0
	if err := echo.QueryParamsBinder(c).
		Int("limit", &limit).
		Int("offset", &offset).
		BindError(); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	limit = min(max(limit, 1), 100)
	offset = max(offset, 0)

	docs, err := dao.ListDocuments(s.db, limit, offset)
	if err != nil {
		return EError(c, err)
	}
	res := make([]dto.DocumentLight, len(docs))
	for i, d := range docs {
		res[i] = dto.DocumentLight{Id: d.ID.String(), Title: d.Title, UpdatedAt: d.UpdatedAt}
	}
	return c.JSON(http.StatusOK, res)
}

// createDocument создает документ из тела запроса или демонстрационный, если содержимое не передано
func (s *Services) createDocument(c echo.Context) error {
	var req dto.CreateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	content := req.Content
	if content == nil || len(content.Children) == 0 {
		content = editor.InitialDocument()
	} else if err := engine.New(content).Normalize(); err != nil {
		return EError(c, apierrors.ErrInvalidDocument.WithFormattedMessage(err.Error()))
	}

	session, err := s.sessions.Create(titleOrDefault(req.Title), content)
	if err != nil {
		return EError(c, err)
	}
	return s.documentResponse(c, http.StatusCreated, session)
}

func (s *Services) importHTML(c echo.Context) error {
	var req dto.ImportHTMLRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	doc, err := editor.ParseHTML(strings.NewReader(req.HTML))
	if err != nil {
		return EError(c, apierrors.ErrImportFailed.WithFormattedMessage(err.Error()))
	}
	if strings.TrimSpace(doc.PlainText()) == "" {
		return EError(c, apierrors.ErrImportFailed.WithFormattedMessage("no content"))
	}

	session, err := s.sessions.Create(titleOrDefault(req.Title), doc)
	if err != nil {
		return EError(c, err)
	}
	return s.documentResponse(c, http.StatusCreated, session)
}

func (s *Services) getDocument(c echo.Context) error {
	return s.documentResponse(c, http.StatusOK, c.(DocumentContext).Session)
}

func (s *Services) renameDocument(c echo.Context) error {
	session := c.(DocumentContext).Session

	var req dto.RenameDocumentRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	if err := session.Do(func(e *engine.Editor) error {
		if err := dao.RenameDocument(s.db, session.ID, req.Title); err != nil {
			return err
		}
		session.Title = req.Title
		return nil
	}); err != nil {
		return EError(c, err)
	}
	return s.documentResponse(c, http.StatusOK, session)
}

func (s *Services) deleteDocument(c echo.Context) error {
	session := c.(DocumentContext).Session

	s.sessions.Forget(session.ID)
	if err := dao.DeleteDocument(s.db, session.ID); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Services) saveDocument(c echo.Context) error {
	session := c.(DocumentContext).Session
	if err := s.sessions.Save(session); err != nil {
		return EError(c, errStack.TrackErrorStack(err).AddContext("document_id", session.ID))
	}
	return c.NoContent(http.StatusOK)
}

func (s *Services) getRevisions(c echo.Context) error {
	session := c.(DocumentContext).Session

	revisions, err := dao.GetRevisions(s.db, session.ID)
	if err != nil {
		return EError(c, err)
	}
	res := make([]dto.Revision, len(revisions))
	for i, r := range revisions {
		res[i] = dto.Revision{Id: r.ID.String(), CreatedAt: r.CreatedAt}
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Services) getState(c echo.Context) error {
	return s.stateResponse(c, c.(DocumentContext).Session)
}

func (s *Services) setSelection(c echo.Context) error {
	session := c.(DocumentContext).Session

	var req dto.SelectionRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrInvalidSelection)
	}

	if err := session.Do(func(e *engine.Editor) error {
		return applySelection(e, req)
	}); err != nil {
		return EError(c, err)
	}
	return s.stateResponse(c, session)
}

func applySelection(e *engine.Editor, req dto.SelectionRequest) error {
	r := req.Range()
	if r == nil {
		return e.Deselect()
	}
	if err := e.Select(*r); err != nil {
		return apierrors.ErrInvalidSelection
	}
	return nil
}

func (s *Services) runCommand(c echo.Context) error {
	session := c.(DocumentContext).Session

	var req dto.CommandRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	return s.dispatch(c, session, req.Intent(), req.Selection)
}

func (s *Services) undo(c echo.Context) error {
	return s.dispatch(c, c.(DocumentContext).Session, editor.Intent{Command: editor.CmdUndo}, nil)
}

func (s *Services) redo(c echo.Context) error {
	return s.dispatch(c, c.(DocumentContext).Session, editor.Intent{Command: editor.CmdRedo}, nil)
}

// dispatch применяет выделение из запроса и выполняет команду под блокировкой сессии
func (s *Services) dispatch(c echo.Context, session *sessions.Session, in editor.Intent, sel *dto.SelectionRequest) error {
	err := session.Do(func(e *engine.Editor) error {
		if sel != nil {
			if err := applySelection(e, *sel); err != nil {
				return err
			}
		}
		return editor.Dispatch(e, in)
	})
	if err != nil {
		var defined apierrors.DefinedError
		if errors.As(err, &defined) {
			return EErrorDefined(c, defined)
		}
		return EError(c, errStack.TrackErrorStack(err).
			AddContext("document_id", session.ID).
			AddContext("command", in.Command))
	}
	s.metrics.CommandDone(in.Command)
	return s.stateResponse(c, session)
}

func (s *Services) runHotkey(c echo.Context) error {
	session := c.(DocumentContext).Session

	var req dto.HotkeyRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	var handled bool
	if err := session.Do(func(e *engine.Editor) (err error) {
		handled, err = editor.HandleHotkey(e, req.Key, req.Mod)
		return err
	}); err != nil {
		return EError(c, errStack.TrackErrorStack(err).AddContext("document_id", session.ID))
	}
	if handled {
		s.metrics.CommandDone(editor.CmdToggleMark)
	}
	return s.stateResponse(c, session)
}

func (s *Services) exportDocument(c echo.Context) error {
	session := c.(DocumentContext).Session

	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		return EError(c, err)
	}

	var doc *edtypes.Document
	var title string
	session.Do(func(e *engine.Editor) error {
		doc = e.Document().Clone()
		title = session.Title
		return nil
	})

	var buf bytes.Buffer
	if err := export.Export(doc, format, &buf, export.Options{
		Title:       title,
		FontPath:    s.cfg.PDFFontPath,
		FetchImages: s.cfg.PDFFetchImages,
	}); err != nil {
		errStack.GetError(c, errStack.TrackErrorStack(err).
			AddContext("document_id", session.ID).
			AddContext("format", format))
		return EErrorDefined(c, apierrors.ErrExportFailed)
	}

	fileName := title + format.Extension()
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(fileName)))
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Services) runMacro(c echo.Context) error {
	session := c.(DocumentContext).Session

	var req dto.MacroRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.cfg.MacroTimeout())
	defer cancel()

	var res dto.MacroResponse
	if err := session.Do(func(e *engine.Editor) error {
		result, err := macro.Run(ctx, e, req.Script)
		if err != nil {
			return err
		}
		res.Commands = result.Commands
		res.Messages = result.Messages
		res.State = dto.NewEditorState(e)
		return nil
	}); err != nil {
		return EError(c, err)
	}
	s.metrics.CommandDone("macro")
	return c.JSON(http.StatusOK, res)
}

func (s *Services) documentResponse(c echo.Context, status int, session *sessions.Session) error {
	var res dto.Document
	if err := session.Do(func(e *engine.Editor) error {
		content, err := json.Marshal(e.Document())
		if err != nil {
			return err
		}
		doc, err := dao.GetDocument(s.db, session.ID)
		if err != nil {
			return err
		}
		res = dto.Document{
			DocumentLight: dto.DocumentLight{Id: session.ID.String(), Title: session.Title, UpdatedAt: doc.UpdatedAt},
			CreatedAt:     doc.CreatedAt,
			Content:       content,
			State:         dto.NewEditorState(e),
		}
		return nil
	}); err != nil {
		return EError(c, err)
	}
	return c.JSON(status, res)
}

func (s *Services) stateResponse(c echo.Context, session *sessions.Session) error {
	var state *dto.EditorState
	session.Do(func(e *engine.Editor) error {
		state = dto.NewEditorState(e)
		return nil
	})
	return c.JSON(http.StatusOK, state)
}

func titleOrDefault(title string) string {
	if title = strings.TrimSpace(title); title == "" {
		return defaultTitle
	}
	return title
}
