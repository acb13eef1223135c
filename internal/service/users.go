// users.go — сервис коллекции users: страничные выборки через ядро,
// единичные чтения с LRU-кэшем, узкий путь вставки.
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

// UserService — сервис пользователей.
type UserService struct {
	engine *query.Engine[model.User]
	store  docstore.Store
	cache  *LookupCache[model.User]
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService создаёт сервис пользователей.
func NewUserService(store docstore.Store, cache *LookupCache[model.User], logger *slog.Logger) *UserService {
	return &UserService{
		engine: query.NewEngine(store, docstore.CollectionUsers,
			model.DecodeUser, query.CompareUsers, logger),
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "user-service")),
		now:    time.Now,
	}
}

// List возвращает страницу пользователей.
// При ошибке хранилища ответ пуст, но корректно типизирован;
// ошибка возвращается для errMsg координатора и логов.
func (s *UserService) List(ctx context.Context, filters query.UserFilters, sort query.SortSpec, page query.PageRequest) (query.PageResponse[model.User], error) {
	return s.engine.Run(ctx, filters, sort, page)
}

// GetByID возвращает пользователя по ID документа.
// Пробрасывает ошибки: ErrNotFound при отсутствии, обёрнутую ошибку
// хранилища при сбое — детальная страница различает эти случаи.
func (s *UserService) GetByID(ctx context.Context, id string) (model.User, error) {
	if u, ok := s.cache.Get(id); ok {
		return u, nil
	}

	docs, err := s.store.Query(ctx, docstore.CollectionUsers,
		docstore.Where(docstore.FieldDocumentID, docstore.OpEqual, id))
	if err != nil {
		return model.User{}, fmt.Errorf("ошибка чтения пользователя %s: %w", id, err)
	}
	if len(docs) == 0 {
		return model.User{}, fmt.Errorf("пользователь %s: %w", id, ErrNotFound)
	}

	u, err := model.DecodeUser(docstore.NormalizeDocument(docs[0]))
	if err != nil {
		return model.User{}, fmt.Errorf("ошибка декодирования пользователя %s: %w", id, err)
	}

	s.cache.Set(id, u)
	return u, nil
}

// Create добавляет пользователя и возвращает назначенный ID.
// Метки времени проставляются сервером.
func (s *UserService) Create(ctx context.Context, u model.User) (string, error) {
	if u.Status == "" {
		u.Status = model.UserStatusActive
	}
	nowMillis := s.now().UnixMilli()
	if u.CreatedAt == 0 {
		u.CreatedAt = nowMillis
	}
	if u.LastLoginAt == 0 {
		u.LastLoginAt = nowMillis
	}

	id, err := s.store.Insert(ctx, docstore.CollectionUsers, u.Fields())
	if err != nil {
		return "", fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	s.logger.Info("Пользователь создан", slog.String("id", id))
	return id, nil
}
