// risk.go — сервис производных коллекций risk_scores и behaviour_profiles.
// Сам расчёт риска выполняет внешний risk-движок; модуль только читает.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
	"github.com/kraftonexstudios/finshield/admin-module/internal/domain/model"
	"github.com/kraftonexstudios/finshield/admin-module/internal/query"
)

// RiskService — сервис оценок риска и поведенческих профилей.
type RiskService struct {
	engine *query.Engine[model.RiskScore]
	store  docstore.Store
	logger *slog.Logger
}

// NewRiskService создаёт сервис оценок риска.
func NewRiskService(store docstore.Store, logger *slog.Logger) *RiskService {
	return &RiskService{
		engine: query.NewEngine(store, docstore.CollectionRiskScores,
			model.DecodeRiskScore, query.CompareRiskScores, logger),
		store:  store,
		logger: logger.With(slog.String("component", "risk-service")),
	}
}

// ListByUser возвращает страницу оценок риска пользователя.
// Канонический случай index-fallback: userId + timestamp desc без
// составного индекса сортируется движком в памяти.
func (s *RiskService) ListByUser(ctx context.Context, userID string, page query.PageRequest) (query.PageResponse[model.RiskScore], error) {
	return s.engine.Run(ctx, query.RiskScoreFilters{UserID: userID},
		query.DefaultRiskScoreSort, page)
}

// LatestByUser возвращает последнюю оценку риска пользователя
// либо nil, если оценок ещё нет.
func (s *RiskService) LatestByUser(ctx context.Context, userID string) (*model.RiskScore, error) {
	docs, err := s.store.Query(ctx, docstore.CollectionRiskScores,
		docstore.Where("userId", docstore.OpEqual, userID),
		docstore.OrderBy("timestamp", true),
		docstore.Limit(1))

	var idxErr *docstore.IndexRequiredError
	if errors.As(err, &idxErr) {
		// Индекса нет: забираем все оценки пользователя и выбираем
		// максимальный timestamp в памяти
		s.logger.Warn("индекс userId+timestamp отсутствует, выбор последней оценки в памяти",
			slog.String("userId", userID))
		docs, err = s.store.Query(ctx, docstore.CollectionRiskScores,
			docstore.Where("userId", docstore.OpEqual, userID))
		if err == nil {
			docs = []docstore.Document{latestByTimestamp(docs)}
			if docs[0].ID == "" {
				docs = nil
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения оценок риска %s: %w", userID, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	rs, err := model.DecodeRiskScore(docstore.NormalizeDocument(docs[0]))
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования оценки риска: %w", err)
	}
	return &rs, nil
}

// BehaviorProfile возвращает поведенческий профиль пользователя.
// Отсутствие профиля и временные сбои дают nil: профиль — вспомогательная
// информация, детальная страница работает и без него.
func (s *RiskService) BehaviorProfile(ctx context.Context, userID string) (*model.BehaviorProfile, error) {
	docs, err := s.store.Query(ctx, docstore.CollectionBehaviorProfiles,
		docstore.Where("userId", docstore.OpEqual, userID),
		docstore.Limit(1))
	if err != nil {
		s.logger.Warn("профиль недоступен, деградация до nil",
			slog.String("userId", userID),
			slog.String("error", err.Error()))
		return nil, nil
	}
	if len(docs) == 0 {
		return nil, nil
	}

	bp, err := model.DecodeBehaviorProfile(docstore.NormalizeDocument(docs[0]))
	if err != nil {
		s.logger.Warn("профиль не декодируется, деградация до nil",
			slog.String("userId", userID),
			slog.String("error", err.Error()))
		return nil, nil
	}
	return &bp, nil
}

// latestByTimestamp выбирает документ с максимальным полем timestamp.
// Возвращает нулевой документ для пустого входа.
func latestByTimestamp(docs []docstore.Document) docstore.Document {
	var (
		best     docstore.Document
		bestTime int64 = -1
	)
	for _, d := range docs {
		var ts int64
		switch v := docstore.Normalize(d.Fields["timestamp"]).(type) {
		case int64:
			ts = v
		case float64:
			ts = int64(v)
		case int:
			ts = int64(v)
		}
		if ts > bestTime {
			best, bestTime = d, ts
		}
	}
	return best
}
