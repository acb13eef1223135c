// transactions.go — сервис коллекции transactions.
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

// TransactionService — сервис транзакций.
type TransactionService struct {
	engine *query.Engine[model.Transaction]
	store  docstore.Store
	cache  *LookupCache[model.Transaction]
	logger *slog.Logger
	now    func() time.Time
}

// NewTransactionService создаёт сервис транзакций.
func NewTransactionService(store docstore.Store, cache *LookupCache[model.Transaction], logger *slog.Logger) *TransactionService {
	return &TransactionService{
		engine: query.NewEngine(store, docstore.CollectionTransactions,
			model.DecodeTransaction, query.CompareTransactions, logger),
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "transaction-service")),
		now:    time.Now,
	}
}

// List возвращает страницу транзакций.
func (s *TransactionService) List(ctx context.Context, filters query.TransactionFilters, sort query.SortSpec, page query.PageRequest) (query.PageResponse[model.Transaction], error) {
	return s.engine.Run(ctx, filters, sort, page)
}

// ListByUser возвращает страницу транзакций, отправленных пользователем.
// Скоуп fromUserId уходит в хранилище; при отсутствии составного индекса
// движок сортирует по createdAt в памяти.
func (s *TransactionService) ListByUser(ctx context.Context, userID string, page query.PageRequest) (query.PageResponse[model.Transaction], error) {
	return s.engine.Run(ctx, query.TransactionFilters{UserID: userID},
		query.DefaultTransactionSort, page)
}

// GetByID возвращает транзакцию по ID документа.
// Пробрасывает ErrNotFound и ошибки хранилища.
func (s *TransactionService) GetByID(ctx context.Context, id string) (model.Transaction, error) {
	if tx, ok := s.cache.Get(id); ok {
		return tx, nil
	}

	docs, err := s.store.Query(ctx, docstore.CollectionTransactions,
		docstore.Where(docstore.FieldDocumentID, docstore.OpEqual, id))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("ошибка чтения транзакции %s: %w", id, err)
	}
	if len(docs) == 0 {
		return model.Transaction{}, fmt.Errorf("транзакция %s: %w", id, ErrNotFound)
	}

	tx, err := model.DecodeTransaction(docstore.NormalizeDocument(docs[0]))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("ошибка декодирования транзакции %s: %w", id, err)
	}

	s.cache.Set(id, tx)
	return tx, nil
}

// Create добавляет транзакцию и возвращает назначенный ID.
func (s *TransactionService) Create(ctx context.Context, tx model.Transaction) (string, error) {
	if tx.Status == "" {
		tx.Status = model.TransactionStatusPending
	}
	if tx.CreatedAt == 0 {
		tx.CreatedAt = s.now().UnixMilli()
	}

	id, err := s.store.Insert(ctx, docstore.CollectionTransactions, tx.Fields())
	if err != nil {
		return "", fmt.Errorf("ошибка создания транзакции: %w", err)
	}

	s.logger.Info("Транзакция создана",
		slog.String("id", id),
		slog.String("reference", tx.Reference))
	return id, nil
}
