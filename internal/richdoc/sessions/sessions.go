// Сессии редактирования открытых документов в памяти процесса.
//
// Основные возможности:
//   - Один редактор на документ, доступ к нему сериализуется мьютексом сессии.
//   - Сессии живут в кеше go-cache и вытесняются по TTL с сохранением изменений.
//   - Пакетное сохранение измененных сессий для задачи автосохранения.
package sessions

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aisa-it/richdoc/internal/richdoc/dao"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
	"github.com/gofrs/uuid"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

type Session struct {
	ID     uuid.UUID
	Title  string
	Opened time.Time

	mu     sync.Mutex
	editor *engine.Editor
	dirty  bool
}

// Do выполняет fn с редактором сессии под ее блокировкой
func (s *Session) Do(fn func(e *engine.Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.editor)
}

// Dirty сообщает, есть ли несохраненные изменения
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

type SessionsManager struct {
	db           *gorm.DB
	cache        *cache.Cache
	historyDepth int

	// Загрузка из базы под этой блокировкой, чтобы на документ не открылось два редактора
	loadMu sync.Mutex
}

func NewSessionsManager(db *gorm.DB, ttl time.Duration, historyDepth int) *SessionsManager {
	sm := &SessionsManager{
		db:           db,
		cache:        cache.New(ttl, max(ttl/2, time.Second)),
		historyDepth: historyDepth,
	}
	sm.cache.OnEvicted(func(key string, v interface{}) {
		s := v.(*Session)
		if err := sm.Save(s); err != nil {
			slog.Error("Save evicted session", "id", key, "err", err)
			return
		}
		slog.Debug("Session closed", "id", key)
	})
	return sm
}

// Create сохраняет новый документ и открывает для него сессию
func (sm *SessionsManager) Create(title string, content *edtypes.Document) (*Session, error) {
	doc := dao.Document{Title: title, Content: *content}
	if err := dao.CreateDocument(sm.db, &doc); err != nil {
		return nil, err
	}
	s := sm.newSession(&doc)
	sm.cache.SetDefault(s.ID.String(), s)
	return s, nil
}

// Get возвращает открытую сессию или загружает документ из базы. Обращение продлевает TTL.
func (sm *SessionsManager) Get(id uuid.UUID) (*Session, error) {
	key := id.String()
	if v, ok := sm.cache.Get(key); ok {
		sm.cache.SetDefault(key, v)
		return v.(*Session), nil
	}

	sm.loadMu.Lock()
	defer sm.loadMu.Unlock()

	if v, ok := sm.cache.Get(key); ok {
		return v.(*Session), nil
	}

	doc, err := dao.GetDocument(sm.db, id)
	if err != nil {
		return nil, err
	}
	s := sm.newSession(doc)
	sm.cache.SetDefault(key, s)
	slog.Debug("Session opened", "id", key)
	return s, nil
}

func (sm *SessionsManager) newSession(doc *dao.Document) *Session {
	s := &Session{
		ID:     doc.ID,
		Title:  doc.Title,
		Opened: time.Now(),
		editor: engine.New(&doc.Content),
	}
	s.editor.History().SetDepth(sm.historyDepth)
	s.editor.OnChange = func(ops []engine.Operation) {
		for _, op := range ops {
			if op.Type != engine.OpSetSelection {
				s.dirty = true
				return
			}
		}
	}
	return s
}

// Save записывает содержимое сессии, если оно менялось
func (sm *SessionsManager) Save(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	if err := dao.SaveContent(sm.db, s.ID, s.editor.Document()); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// SaveDirty сохраняет все измененные сессии и возвращает число сохраненных
func (sm *SessionsManager) SaveDirty() int {
	var saved int
	for key, item := range sm.cache.Items() {
		s := item.Object.(*Session)
		if !s.Dirty() {
			continue
		}
		if err := sm.Save(s); err != nil {
			slog.Error("Autosave session", "id", key, "err", err)
			continue
		}
		saved++
	}
	if saved > 0 {
		slog.Info("Sessions autosaved", "count", saved)
	}
	return saved
}

// Close сохраняет сессию и убирает ее из памяти
func (sm *SessionsManager) Close(id uuid.UUID) {
	sm.cache.Delete(id.String())
}

// Forget убирает сессию без сохранения, для удаленных документов
func (sm *SessionsManager) Forget(id uuid.UUID) {
	key := id.String()
	if v, ok := sm.cache.Get(key); ok {
		s := v.(*Session)
		s.mu.Lock()
		s.dirty = false
		s.mu.Unlock()
	}
	sm.cache.Delete(key)
}

// Shutdown сохраняет все сессии перед остановкой сервера
func (sm *SessionsManager) Shutdown() error {
	var errs []error
	for key, item := range sm.cache.Items() {
		if err := sm.Save(item.Object.(*Session)); err != nil {
			errs = append(errs, err)
			slog.Error("Save session on shutdown", "id", key, "err", err)
		}
	}
	return errors.Join(errs...)
}

// Count - число открытых сессий, включая истекшие и еще не вытесненные
func (sm *SessionsManager) Count() int {
	return sm.cache.ItemCount()
}
