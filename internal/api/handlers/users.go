// users.go — обработчики /api/v1/users endpoints и вложенных
// пользовательских ресурсов (транзакции, сессии, оценки риска, профиль).
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/kraftonexstudios/finshield/admin-module/internal/api/errors"
	"github.com/kraftonexstudios/finshield/admin-module/internal/domain/model"
	"github.com/kraftonexstudios/finshield/admin-module/internal/query"
	"github.com/kraftonexstudios/finshield/admin-module/internal/service"
)

// ListUsers — GET /api/v1/users.
// Страничный список пользователей с фильтрами и сортировкой.
// Ошибка хранилища даёт пустую страницу, не 5xx: таблица остаётся рабочей.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if err := validateQueryKeys(r, "search", "status", "verification"); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	q := r.URL.Query()
	sortSpec, err := query.ParseSort(q.Get("sort_by"), q.Get("sort_order"),
		query.UserSortFields, query.DefaultUserSort)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	page, err := h.parsePage(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	filters := query.UserFilters{
		Search:             q.Get("search"),
		StatusFilter:       q.Get("status"),
		VerificationFilter: q.Get("verification"),
	}

	resp, err := h.users.List(r.Context(), filters, sortSpec, page)
	if err != nil {
		h.logger.Error("Ошибка выборки пользователей", "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetUser — GET /api/v1/users/{id}.
// Отсутствие документа — 404, сбой хранилища — 502.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Пользователь не найден")
			return
		}
		h.logger.Error("Ошибка чтения пользователя", "id", id, "error", err)
		apierrors.StoreUnavailable(w, "Хранилище временно недоступно")
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// createUserRequest — тело POST /api/v1/users.
type createUserRequest struct {
	FullName   string `json:"fullName"`
	EmailID    string `json:"emailId"`
	Mobile     string `json:"mobile"`
	Status     string `json:"status"`
	Verified   bool   `json:"verified"`
	AppVersion string `json:"appVersion"`
}

// CreateUser — POST /api/v1/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	if req.FullName == "" {
		apierrors.ValidationError(w, "Поле fullName обязательно")
		return
	}
	if req.EmailID == "" {
		apierrors.ValidationError(w, "Поле emailId обязательно")
		return
	}

	id, err := h.users.Create(r.Context(), model.User{
		FullName:   req.FullName,
		EmailID:    req.EmailID,
		Mobile:     req.Mobile,
		Status:     req.Status,
		Verified:   req.Verified,
		AppVersion: req.AppVersion,
	})
	if err != nil {
		h.logger.Error("Ошибка создания пользователя", "error", err)
		apierrors.StoreUnavailable(w, "Не удалось создать пользователя")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// ListUserTransactions — GET /api/v1/users/{id}/transactions.
// Транзакции, отправленные пользователем, новые первыми.
func (h *Handler) ListUserTransactions(w http.ResponseWriter, r *http.Request) {
	if err := validateQueryKeys(r); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	page, err := h.parsePage(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	resp, err := h.transactions.ListByUser(r.Context(), id, page)
	if err != nil {
		h.logger.Error("Ошибка выборки транзакций пользователя", "userId", id, "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListUserSessions — GET /api/v1/users/{id}/sessions.
// Последние поведенческие сессии пользователя.
func (h *Handler) ListUserSessions(w http.ResponseWriter, r *http.Request) {
	if err := validateQueryKeys(r); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	resp, err := h.sessions.ListByUser(r.Context(), id)
	if err != nil {
		h.logger.Error("Ошибка выборки сессий пользователя", "userId", id, "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListUserRiskScores — GET /api/v1/users/{id}/risk-scores.
func (h *Handler) ListUserRiskScores(w http.ResponseWriter, r *http.Request) {
	if err := validateQueryKeys(r); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	page, err := h.parsePage(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	resp, err := h.risk.ListByUser(r.Context(), id, page)
	if err != nil {
		h.logger.Error("Ошибка выборки оценок риска", "userId", id, "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetUserLatestRiskScore — GET /api/v1/users/{id}/risk-scores/latest.
// Отсутствие оценок — 404, сбой хранилища — 502.
func (h *Handler) GetUserLatestRiskScore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rs, err := h.risk.LatestByUser(r.Context(), id)
	if err != nil {
		h.logger.Error("Ошибка чтения последней оценки риска", "userId", id, "error", err)
		apierrors.StoreUnavailable(w, "Хранилище временно недоступно")
		return
	}
	if rs == nil {
		apierrors.NotFound(w, "Оценки риска для пользователя отсутствуют")
		return
	}

	writeJSON(w, http.StatusOK, rs)
}

// GetUserBehaviorProfile — GET /api/v1/users/{id}/behavior-profile.
// Профиль — вспомогательная информация: отсутствие или сбой дают 404,
// детальная страница пользователя работает и без профиля.
func (h *Handler) GetUserBehaviorProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	bp, err := h.risk.BehaviorProfile(r.Context(), id)
	if err != nil || bp == nil {
		apierrors.NotFound(w, "Поведенческий профиль отсутствует")
		return
	}

	writeJSON(w, http.StatusOK, bp)
}
