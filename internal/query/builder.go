// builder.go — построение ограничений запроса к хранилищу.
package query

import (
	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
)

// Build разделяет логический набор фильтров на pushed-ограничения
// и residual-предикаты.
//
// В хранилище уходят ровно две вещи: order-by по полю сортировки и
// не более одного равенства по скоуп-полю коллекции — единственному
// полю с гарантированным одиночным индексом. Все прочие равенства и
// free-text поиск остаются residual: их пушдаун потребовал бы
// заранее подготовленных составных индексов.
//
// Residual-предикаты возвращаются в фиксированном порядке применения:
// точные фильтры, затем поиск.
func Build[T any](filters FilterSet[T], sort SortSpec) ([]docstore.Constraint, []Predicate[T]) {
	pushed := []docstore.Constraint{
		docstore.OrderBy(sort.Field, sort.Descending),
	}
	if field, value, ok := filters.Scope(); ok {
		pushed = append(pushed, docstore.Where(field, docstore.OpEqual, value))
	}

	residual := filters.Residual()
	if search := filters.SearchPredicate(); search != nil {
		residual = append(residual, search)
	}
	return pushed, residual
}
