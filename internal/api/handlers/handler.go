// handler.go — основной HTTP-обработчик Admin Module.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kraftonexstudios/finshield/admin-module/internal/query"
	"github.com/kraftonexstudios/finshield/admin-module/internal/service"
)

// Handler — основной обработчик API Admin Module.
type Handler struct {
	health          *HealthHandler
	users           *service.UserService
	transactions    *service.TransactionService
	sessions        *service.SessionService
	risk            *service.RiskService
	stats           *service.StatsService
	defaultPageSize int
	logger          *slog.Logger
}

// NewHandler создаёт основной обработчик API.
func NewHandler(
	health *HealthHandler,
	users *service.UserService,
	transactions *service.TransactionService,
	sessions *service.SessionService,
	risk *service.RiskService,
	stats *service.StatsService,
	defaultPageSize int,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		health:          health,
		users:           users,
		transactions:    transactions,
		sessions:        sessions,
		risk:            risk,
		stats:           stats,
		defaultPageSize: defaultPageSize,
		logger:          logger.With(slog.String("component", "api_handler")),
	}
}

// Routes регистрирует все маршруты API на роутере.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Get("/metrics", h.health.GetMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Get("/{id}/transactions", h.ListUserTransactions)
			r.Get("/{id}/sessions", h.ListUserSessions)
			r.Get("/{id}/risk-scores", h.ListUserRiskScores)
			r.Get("/{id}/risk-scores/latest", h.GetUserLatestRiskScore)
			r.Get("/{id}/behavior-profile", h.GetUserBehaviorProfile)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
			r.Get("/{id}", h.GetTransaction)
		})
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CreateSession)
			r.Get("/{id}", h.GetSession)
		})
		r.Get("/stats", h.GetStats)
	})
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Общие query-ключи всех страничных endpoint'ов.
var pagingKeys = []string{"page", "page_size", "sort_by", "sort_order"}

// validateQueryKeys отвергает запрос с неизвестными query-параметрами.
// Наборы фильтров закрыты: опечатка в ключе — ошибка клиента,
// а не молча проигнорированный фильтр.
func validateQueryKeys(r *http.Request, filterKeys ...string) error {
	allowed := make(map[string]bool, len(pagingKeys)+len(filterKeys))
	for _, k := range pagingKeys {
		allowed[k] = true
	}
	for _, k := range filterKeys {
		allowed[k] = true
	}

	var unknown []string
	for k := range r.URL.Query() {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("неизвестные параметры запроса: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// parsePage извлекает и валидирует параметры пагинации.
// Отсутствующие параметры получают значения по умолчанию.
func (h *Handler) parsePage(r *http.Request) (query.PageRequest, error) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query.PageRequest{}, fmt.Errorf("page: некорректное целое число %q", raw)
		}
		page = n
	}

	pageSize := h.defaultPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query.PageRequest{}, fmt.Errorf("page_size: некорректное целое число %q", raw)
		}
		pageSize = n
	}

	return query.NewPageRequest(page, pageSize)
}
