// Пакет dao хранит документы richdoc в базе данных через GORM.
//
// Основные возможности:
//   - Подключение к SQLite (файл или память) или PostgreSQL по DSN.
//   - Создание, чтение, сохранение содержимого и удаление документов.
//   - Снимки содержимого (ревизии) при каждом сохранении.
package dao

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aisa-it/richdoc/internal/richdoc/apierrors"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	_ "github.com/aisa-it/richdoc/internal/richdoc/editor/slatejson"
	"github.com/aisa-it/richdoc/internal/richdoc/gormlogger"
	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const MaxTitleLength = 150

// MaxRevisions - сколько последних ревизий хранится на документ
const MaxRevisions = 20

type Document struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`

	Title   string           `json:"title" gorm:"size:150"`
	Content edtypes.Document `json:"content"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID.IsNil() {
		d.ID, err = uuid.NewV4()
	}
	return
}

// DocumentLight - документ без содержимого для списков
type DocumentLight struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Document) ToLight() DocumentLight {
	return DocumentLight{ID: d.ID, Title: d.Title, UpdatedAt: d.UpdatedAt}
}

// DocumentRevision - снимок содержимого документа на момент сохранения
type DocumentRevision struct {
	ID         uuid.UUID        `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	DocumentID uuid.UUID        `gorm:"type:uuid;index" json:"document_id"`
	Document   *Document        `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
	Content    edtypes.Document `json:"content"`
}

func (r *DocumentRevision) BeforeCreate(tx *gorm.DB) (err error) {
	r.ID, err = uuid.NewV4()
	return
}

var Models = []any{&Document{}, &DocumentRevision{}}

// Open подключается к базе. DSN postgres:// выбирает PostgreSQL, остальное считается путем SQLite.
func Open(dsn string, trace bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.New(postgres.Config{DSN: dsn})
	} else {
		dialector = sqlite.Open(dsn)
	}

	level := logger.Warn
	if trace {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.NewGormLogger(slog.Default(), time.Second).LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, err
	}
	return db, nil
}

func CreateDocument(db *gorm.DB, doc *Document) error {
	if len([]rune(doc.Title)) > MaxTitleLength {
		return apierrors.ErrDocumentTitleLong
	}
	if errs := edtypes.Validate(&doc.Content); len(errs) > 0 {
		return apierrors.ErrInvalidDocument.WithFormattedMessage(errors.Join(errs...).Error())
	}
	return db.Create(doc).Error
}

func GetDocument(db *gorm.DB, id uuid.UUID) (*Document, error) {
	var doc Document
	if err := db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ListDocuments возвращает документы без содержимого, последние измененные первыми
func ListDocuments(db *gorm.DB, limit, offset int) ([]DocumentLight, error) {
	var docs []Document
	if err := db.Select("id", "title", "updated_at").
		Order("updated_at desc").
		Limit(limit).
		Offset(offset).
		Find(&docs).Error; err != nil {
		return nil, err
	}
	res := make([]DocumentLight, len(docs))
	for i := range docs {
		res[i] = docs[i].ToLight()
	}
	return res, nil
}

// SaveContent сохраняет содержимое документа и пишет ревизию. Старые ревизии сверх MaxRevisions удаляются.
func SaveContent(db *gorm.DB, id uuid.UUID, content *edtypes.Document) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Document{}).
			Where("id = ?", id).
			Updates(map[string]any{"content": content, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apierrors.ErrDocumentNotFound
		}

		if err := tx.Create(&DocumentRevision{DocumentID: id, Content: *content}).Error; err != nil {
			return err
		}

		var stale []uuid.UUID
		if err := tx.Model(&DocumentRevision{}).
			Where("document_id = ?", id).
			Order("created_at desc").
			Offset(MaxRevisions).
			Pluck("id", &stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		return tx.Where("id in (?)", stale).Delete(&DocumentRevision{}).Error
	})
}

func RenameDocument(db *gorm.DB, id uuid.UUID, title string) error {
	if len([]rune(title)) > MaxTitleLength {
		return apierrors.ErrDocumentTitleLong
	}
	res := db.Model(&Document{}).Where("id = ?", id).Update("title", title)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierrors.ErrDocumentNotFound
	}
	return nil
}

func GetRevisions(db *gorm.DB, id uuid.UUID) ([]DocumentRevision, error) {
	var revisions []DocumentRevision
	err := db.Where("document_id = ?", id).Order("created_at desc").Find(&revisions).Error
	return revisions, err
}

func DeleteDocument(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&DocumentRevision{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Document{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apierrors.ErrDocumentNotFound
		}
		return nil
	})
}
