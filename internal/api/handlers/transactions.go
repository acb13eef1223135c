// transactions.go — обработчики /api/v1/transactions endpoints.
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

// ListTransactions — GET /api/v1/transactions.
// Страничный список транзакций с фильтрами и сортировкой.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	if err := validateQueryKeys(r, "search", "status", "type", "category", "user_id"); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	q := r.URL.Query()
	sortSpec, err := query.ParseSort(q.Get("sort_by"), q.Get("sort_order"),
		query.TransactionSortFields, query.DefaultTransactionSort)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	page, err := h.parsePage(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	filters := query.TransactionFilters{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Type:     q.Get("type"),
		Category: q.Get("category"),
		UserID:   q.Get("user_id"),
	}

	resp, err := h.transactions.List(r.Context(), filters, sortSpec, page)
	if err != nil {
		h.logger.Error("Ошибка выборки транзакций", "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetTransaction — GET /api/v1/transactions/{id}.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := h.transactions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Транзакция не найдена")
			return
		}
		h.logger.Error("Ошибка чтения транзакции", "id", id, "error", err)
		apierrors.StoreUnavailable(w, "Хранилище временно недоступно")
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// createTransactionRequest — тело POST /api/v1/transactions.
type createTransactionRequest struct {
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
	FromUserID  string  `json:"fromUserId"`
	ToUserID    string  `json:"toUserId"`
	FromMobile  string  `json:"fromMobile"`
	ToMobile    string  `json:"toMobile"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
}

// CreateTransaction — POST /api/v1/transactions.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	if req.Reference == "" {
		apierrors.ValidationError(w, "Поле reference обязательно")
		return
	}
	if req.FromUserID == "" {
		apierrors.ValidationError(w, "Поле fromUserId обязательно")
		return
	}
	if req.Amount < 0 {
		apierrors.ValidationError(w, "Поле amount не может быть отрицательным")
		return
	}

	id, err := h.transactions.Create(r.Context(), model.Transaction{
		Reference:   req.Reference,
		Description: req.Description,
		FromUserID:  req.FromUserID,
		ToUserID:    req.ToUserID,
		FromMobile:  req.FromMobile,
		ToMobile:    req.ToMobile,
		Amount:      req.Amount,
		Status:      req.Status,
		Type:        req.Type,
		Category:    req.Category,
	})
	if err != nil {
		h.logger.Error("Ошибка создания транзакции", "error", err)
		apierrors.StoreUnavailable(w, "Не удалось создать транзакцию")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
