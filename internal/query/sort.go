// sort.go — спецификация сортировки и белые списки полей по коллекциям.
package query

import "fmt"

// SortSpec — одно активное поле сортировки и направление.
type SortSpec struct {
	Field      string
	Descending bool
}

// Сортировки по умолчанию.
var (
	// DefaultUserSort — users по времени регистрации, новые первыми.
	DefaultUserSort = SortSpec{Field: "createdAt", Descending: true}
	// DefaultTransactionSort — transactions по времени создания, новые первыми.
	DefaultTransactionSort = SortSpec{Field: "createdAt", Descending: true}
	// DefaultSessionSort — сессии по метке времени телеметрии, новые первыми.
	DefaultSessionSort = SortSpec{Field: "timestamp", Descending: true}
	// DefaultRiskScoreSort — оценки риска по времени расчёта, новые первыми.
	DefaultRiskScoreSort = SortSpec{Field: "timestamp", Descending: true}
)

// Белые списки полей сортировки по коллекциям.
var (
	UserSortFields        = map[string]bool{"createdAt": true, "lastLoginAt": true, "fullName": true, "status": true}
	TransactionSortFields = map[string]bool{"createdAt": true, "amount": true, "status": true}
	SessionSortFields     = map[string]bool{"timestamp": true, "createdAt": true}
	RiskScoreSortFields   = map[string]bool{"timestamp": true, "riskScore": true}
)

// ParseSort валидирует поле и направление сортировки по белому списку
// коллекции. Пустое поле даёт сортировку по умолчанию, пустое
// направление — направление по умолчанию.
func ParseSort(field, order string, allowed map[string]bool, def SortSpec) (SortSpec, error) {
	spec := def
	if field != "" {
		if !allowed[field] {
			return SortSpec{}, fmt.Errorf("недопустимое поле сортировки: %q", field)
		}
		spec.Field = field
	}
	switch order {
	case "":
	case "asc":
		spec.Descending = false
	case "desc":
		spec.Descending = true
	default:
		return SortSpec{}, fmt.Errorf("недопустимое направление сортировки: %q", order)
	}
	return spec, nil
}
