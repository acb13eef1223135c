// sessions.go — обработчики /api/v1/sessions endpoints.
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

// ListSessions — GET /api/v1/sessions.
// Страничный список поведенческих сессий.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if err := validateQueryKeys(r, "search", "behavior", "user_id"); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	q := r.URL.Query()
	sortSpec, err := query.ParseSort(q.Get("sort_by"), q.Get("sort_order"),
		query.SessionSortFields, query.DefaultSessionSort)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	page, err := h.parsePage(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	filters := query.SessionFilters{
		Search:         q.Get("search"),
		BehaviorFilter: q.Get("behavior"),
		UserID:         q.Get("user_id"),
	}

	resp, err := h.sessions.List(r.Context(), filters, sortSpec, page)
	if err != nil {
		h.logger.Error("Ошибка выборки сессий", "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetSession — GET /api/v1/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := h.sessions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Сессия не найдена")
			return
		}
		h.logger.Error("Ошибка чтения сессии", "id", id, "error", err)
		apierrors.StoreUnavailable(w, "Хранилище временно недоступно")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// createSessionRequest — тело POST /api/v1/sessions.
type createSessionRequest struct {
	SessionID   string `json:"sessionId"`
	UserID      string `json:"userId"`
	Behavior    string `json:"behavior"`
	DeviceModel string `json:"deviceModel"`
	Timestamp   int64  `json:"timestamp"`
}

// CreateSession — POST /api/v1/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	if req.SessionID == "" {
		apierrors.ValidationError(w, "Поле sessionId обязательно")
		return
	}
	if req.UserID == "" {
		apierrors.ValidationError(w, "Поле userId обязательно")
		return
	}

	id, err := h.sessions.Create(r.Context(), model.BehavioralSession{
		SessionID:   req.SessionID,
		UserID:      req.UserID,
		Behavior:    req.Behavior,
		DeviceModel: req.DeviceModel,
		Timestamp:   req.Timestamp,
	})
	if err != nil {
		h.logger.Error("Ошибка создания сессии", "error", err)
		apierrors.StoreUnavailable(w, "Не удалось создать сессию")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
