// stats.go — агрегаты для дашборда: счётчики, последние записи,
// разбивка по версиям приложения, семидневные ряды.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
	"github.com/kraftonexstudios/finshield/admin-module/internal/domain/model"
)

// Пользователь считается активным при входе за последние 30 дней.
const activeUserWindow = 30 * 24 * time.Hour

// Глубина рядов роста и тренда.
const trendDays = 7

// Количество последних записей в сводке.
const recentLimit = 10

// DailyCount — одна точка суточного ряда.
type DailyCount struct {
	// Date — день в формате YYYY-MM-DD
	Date string `json:"date"`
	// Count — количество записей за день
	Count int `json:"count"`
}

// Stats — сводка дашборда.
type Stats struct {
	TotalUsers         int                 `json:"totalUsers"`
	ActiveUsers        int                 `json:"activeUsers"`
	TotalTransactions  int                 `json:"totalTransactions"`
	TotalSessions      int                 `json:"totalSessions"`
	RecentUsers        []model.User        `json:"recentUsers"`
	RecentTransactions []model.Transaction `json:"recentTransactions"`
	// AppVersions — доля пользователей по версиям приложения, проценты
	AppVersions map[string]float64 `json:"appVersions"`
	// UserGrowth — регистрации по дням за последнюю неделю
	UserGrowth []DailyCount `json:"userGrowth"`
	// TransactionTrend — транзакции по дням за последнюю неделю
	TransactionTrend []DailyCount `json:"transactionTrend"`
}

// StatsService — сервис сводки дашборда.
type StatsService struct {
	store  docstore.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsService создаёт сервис сводки.
func NewStatsService(store docstore.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger.With(slog.String("component", "stats-service")),
		now:    time.Now,
	}
}

// Collect собирает сводку. Части сводки независимы: сбой одной
// оставляет её нулевой, остальные заполняются — дашборд не падает
// из-за одного недоступного агрегата.
func (s *StatsService) Collect(ctx context.Context) *Stats {
	stats := &Stats{
		RecentUsers:        []model.User{},
		RecentTransactions: []model.Transaction{},
		AppVersions:        map[string]float64{},
	}
	now := s.now()

	stats.TotalUsers = s.count(ctx, docstore.CollectionUsers)
	stats.TotalTransactions = s.count(ctx, docstore.CollectionTransactions)
	stats.TotalSessions = s.count(ctx, docstore.CollectionSessions)

	activeSince := now.Add(-activeUserWindow).UnixMilli()
	n, err := s.store.Count(ctx, docstore.CollectionUsers,
		docstore.Where("lastLoginAt", docstore.OpGreaterOrEqual, activeSince))
	if err != nil {
		s.logger.Warn("подсчёт активных пользователей недоступен", slog.String("error", err.Error()))
	} else {
		stats.ActiveUsers = n
	}

	users := s.fetchUsers(ctx)
	if len(users) > 0 {
		stats.RecentUsers = users[:min(recentLimit, len(users))]
		stats.AppVersions = appVersionBreakdown(users)
		stats.UserGrowth = dailySeries(now, func(yield func(int64)) {
			for _, u := range users {
				yield(u.CreatedAt)
			}
		})
	}

	txs := s.fetchTransactions(ctx)
	if len(txs) > 0 {
		stats.RecentTransactions = txs[:min(recentLimit, len(txs))]
		stats.TransactionTrend = dailySeries(now, func(yield func(int64)) {
			for _, tx := range txs {
				yield(tx.CreatedAt)
			}
		})
	}

	return stats
}

// count возвращает server-side количество документов коллекции,
// ноль при сбое.
func (s *StatsService) count(ctx context.Context, collection string) int {
	n, err := s.store.Count(ctx, collection)
	if err != nil {
		s.logger.Warn("подсчёт коллекции недоступен",
			slog.String("collection", collection),
			slog.String("error", err.Error()))
		return 0
	}
	return n
}

// fetchUsers забирает пользователей, новые первыми. Пусто при сбое.
func (s *StatsService) fetchUsers(ctx context.Context) []model.User {
	docs, err := s.store.Query(ctx, docstore.CollectionUsers,
		docstore.OrderBy("createdAt", true))
	if err != nil {
		s.logger.Warn("выборка пользователей для сводки недоступна", slog.String("error", err.Error()))
		return nil
	}

	users := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		u, err := model.DecodeUser(docstore.NormalizeDocument(doc))
		if err != nil {
			continue
		}
		users = append(users, u)
	}
	return users
}

// fetchTransactions забирает транзакции, новые первыми. Пусто при сбое.
func (s *StatsService) fetchTransactions(ctx context.Context) []model.Transaction {
	docs, err := s.store.Query(ctx, docstore.CollectionTransactions,
		docstore.OrderBy("createdAt", true))
	if err != nil {
		s.logger.Warn("выборка транзакций для сводки недоступна", slog.String("error", err.Error()))
		return nil
	}

	txs := make([]model.Transaction, 0, len(docs))
	for _, doc := range docs {
		tx, err := model.DecodeTransaction(docstore.NormalizeDocument(doc))
		if err != nil {
			continue
		}
		txs = append(txs, tx)
	}
	return txs
}

// appVersionBreakdown считает долю пользователей по версиям приложения.
func appVersionBreakdown(users []model.User) map[string]float64 {
	counts := make(map[string]int)
	for _, u := range users {
		version := u.AppVersion
		if version == "" {
			version = "unknown"
		}
		counts[version]++
	}

	out := make(map[string]float64, len(counts))
	for version, n := range counts {
		out[version] = 100 * float64(n) / float64(len(users))
	}
	return out
}

// dailySeries строит суточный ряд за последние trendDays дней
// по меткам времени, которые отдаёт iterate.
func dailySeries(now time.Time, iterate func(yield func(int64))) []DailyCount {
	days := make([]DailyCount, trendDays)
	index := make(map[string]int, trendDays)
	for i := 0; i < trendDays; i++ {
		date := now.AddDate(0, 0, i-trendDays+1).Format("2006-01-02")
		days[i] = DailyCount{Date: date}
		index[date] = i
	}

	iterate(func(millis int64) {
		date := time.UnixMilli(millis).Format("2006-01-02")
		if i, ok := index[date]; ok {
			days[i].Count++
		}
	})
	return days
}
