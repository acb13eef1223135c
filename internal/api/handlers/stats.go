// stats.go — обработчик /api/v1/stats: сводка для дашборда.
package handlers

import (
	"net/http"

	apierrors "github.com/kraftonexstudios/finshield/admin-module/internal/api/errors"
)

// GetStats — GET /api/v1/stats.
// Сводка деградирует по частям: недоступная часть даёт нули,
// endpoint не возвращает 5xx из-за сбоя хранилища.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if err := validateQueryKeys(r); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	stats := h.stats.Collect(r.Context())
	writeJSON(w, http.StatusOK, stats)
}
