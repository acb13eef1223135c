// sessions.go — сервис коллекции raw_behavioral_sessions.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
	"github.com/kraftonexstudios/finshield/admin-module/internal/domain/model"
	"github.com/kraftonexstudios/finshield/admin-module/internal/query"
)

// Количество последних сессий на странице пользователя.
const recentSessionsLimit = 20

// SessionService — сервис поведенческих сессий.
type SessionService struct {
	engine *query.Engine[model.BehavioralSession]
	store  docstore.Store
	cache  *LookupCache[model.BehavioralSession]
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionService создаёт сервис поведенческих сессий.
func NewSessionService(store docstore.Store, cache *LookupCache[model.BehavioralSession], logger *slog.Logger) *SessionService {
	return &SessionService{
		engine: query.NewEngine(store, docstore.CollectionSessions,
			model.DecodeSession, query.CompareSessions, logger),
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "session-service")),
		now:    time.Now,
	}
}

// List возвращает страницу сессий.
func (s *SessionService) List(ctx context.Context, filters query.SessionFilters, sort query.SortSpec, page query.PageRequest) (query.PageResponse[model.BehavioralSession], error) {
	return s.engine.Run(ctx, filters, sort, page)
}

// ListByUser возвращает последние сессии пользователя (не более 20).
func (s *SessionService) ListByUser(ctx context.Context, userID string) (query.PageResponse[model.BehavioralSession], error) {
	return s.engine.Run(ctx, query.SessionFilters{UserID: userID},
		query.DefaultSessionSort,
		query.PageRequest{Page: 1, PageSize: recentSessionsLimit})
}

// GetByID возвращает сессию по ID документа.
// Пробрасывает ErrNotFound и ошибки хранилища.
func (s *SessionService) GetByID(ctx context.Context, id string) (model.BehavioralSession, error) {
	if sess, ok := s.cache.Get(id); ok {
		return sess, nil
	}

	docs, err := s.store.Query(ctx, docstore.CollectionSessions,
		docstore.Where(docstore.FieldDocumentID, docstore.OpEqual, id))
	if err != nil {
		return model.BehavioralSession{}, fmt.Errorf("ошибка чтения сессии %s: %w", id, err)
	}
	if len(docs) == 0 {
		return model.BehavioralSession{}, fmt.Errorf("сессия %s: %w", id, ErrNotFound)
	}

	sess, err := model.DecodeSession(docstore.NormalizeDocument(docs[0]))
	if err != nil {
		return model.BehavioralSession{}, fmt.Errorf("ошибка декодирования сессии %s: %w", id, err)
	}

	s.cache.Set(id, sess)
	return sess, nil
}

// Create добавляет сессию и возвращает назначенный ID.
func (s *SessionService) Create(ctx context.Context, sess model.BehavioralSession) (string, error) {
	if sess.Behavior == "" {
		sess.Behavior = model.SessionBehaviorNormal
	}
	nowMillis := s.now().UnixMilli()
	if sess.Timestamp == 0 {
		sess.Timestamp = nowMillis
	}
	if sess.CreatedAt == 0 {
		sess.CreatedAt = nowMillis
	}

	id, err := s.store.Insert(ctx, docstore.CollectionSessions, sess.Fields())
	if err != nil {
		return "", fmt.Errorf("ошибка создания сессии: %w", err)
	}

	s.logger.Info("Сессия создана",
		slog.String("id", id),
		slog.String("sessionId", sess.SessionID))
	return id, nil
}
