package dao

import (
	"strings"
	"testing"

	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	"github.com/aisa-it/richdoc/internal/richdoc/editor"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestDocumentLifecycle(t *testing.T) {
	db := openTestDB(t)

	doc := &Document{Title: "데모", Content: *editor.InitialDocument()}
	require.NoError(t, CreateDocument(db, doc))
	require.False(t, doc.ID.IsNil())

	got, err := GetDocument(db, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "데모", got.Title)
	assert.True(t, edtypes.EqualNodes(doc.Content.Children, got.Content.Children))

	updated := &edtypes.Document{Children: []edtypes.Node{edtypes.NewParagraph(edtypes.NewText("changed"))}}
	require.NoError(t, SaveContent(db, doc.ID, updated))

	got, err = GetDocument(db, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Content.PlainText())

	revisions, err := GetRevisions(db, doc.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, "changed", revisions[0].Content.PlainText())

	require.NoError(t, RenameDocument(db, doc.ID, "renamed"))
	list, err := ListDocuments(db, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "renamed", list[0].Title)

	require.NoError(t, DeleteDocument(db, doc.ID))
	_, err = GetDocument(db, doc.ID)
	assert.ErrorIs(t, err, apierrors.ErrDocumentNotFound)
	revisions, err = GetRevisions(db, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, revisions)
}

func TestRevisionsAreTrimmed(t *testing.T) {
	db := openTestDB(t)

	doc := &Document{Title: "doc", Content: *editor.InitialDocument()}
	require.NoError(t, CreateDocument(db, doc))

	for i := 0; i < MaxRevisions+3; i++ {
		content := &edtypes.Document{Children: []edtypes.Node{edtypes.NewParagraph(edtypes.NewText(strings.Repeat("x", i+1)))}}
		require.NoError(t, SaveContent(db, doc.ID, content))
	}

	revisions, err := GetRevisions(db, doc.ID)
	require.NoError(t, err)
	assert.Len(t, revisions, MaxRevisions)
}

func TestDocumentErrors(t *testing.T) {
	db := openTestDB(t)
	missing := uuid.Must(uuid.NewV4())

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"get missing", func() error { _, err := GetDocument(db, missing); return err }, apierrors.ErrDocumentNotFound},
		{"save missing", func() error { return SaveContent(db, missing, editor.InitialDocument()) }, apierrors.ErrDocumentNotFound},
		{"rename missing", func() error { return RenameDocument(db, missing, "x") }, apierrors.ErrDocumentNotFound},
		{"delete missing", func() error { return DeleteDocument(db, missing) }, apierrors.ErrDocumentNotFound},
		{"long title", func() error {
			return CreateDocument(db, &Document{Title: strings.Repeat("я", MaxTitleLength+1)})
		}, apierrors.ErrDocumentTitleLong},
		{"invalid content", func() error {
			return CreateDocument(db, &Document{Title: "bad", Content: edtypes.Document{Children: []edtypes.Node{edtypes.NewText("loose")}}})
		}, apierrors.ErrInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}
