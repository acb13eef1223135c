// engine.go — fetch-and-reconcile: выборка из хранилища, нормализация,
// residual-фильтрация и сборка страничного ответа.
package query

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
)

// Prometheus-метрики движка запросов.
var (
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "am_query_total",
		Help: "Общее количество запросов к ядру по коллекциям и результату.",
	}, []string{"collection", "result"})
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "am_query_duration_seconds",
		Help:    "Длительность fetch-and-reconcile по коллекциям.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})
	indexFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "am_query_index_fallback_total",
		Help: "Количество деградаций на in-memory сортировку из-за отсутствующего индекса.",
	}, []string{"collection"})
)

// Comparator возвращает функцию сравнения записей по полю сортировки
// (возрастание) либо nil, если поле неизвестно.
type Comparator[T any] func(field string) func(a, b T) int

// Engine — движок fetch-and-reconcile одной коллекции.
// Один запуск Run — одна логическая единица работы: одно чтение
// хранилища, полная материализация, фильтрация и срез в памяти.
type Engine[T any] struct {
	store      docstore.Store
	collection string
	decode     func(docstore.Document) (T, error)
	compare    Comparator[T]
	logger     *slog.Logger
}

// NewEngine создаёт движок для коллекции.
func NewEngine[T any](
	store docstore.Store,
	collection string,
	decode func(docstore.Document) (T, error),
	compare Comparator[T],
	logger *slog.Logger,
) *Engine[T] {
	return &Engine[T]{
		store:      store,
		collection: collection,
		decode:     decode,
		compare:    compare,
		logger:     logger.With(slog.String("component", "query-engine"), slog.String("collection", collection)),
	}
}

// Run выполняет полный цикл: pushed-запрос, нормализация, декодирование,
// residual-фильтрация, пересчёт метаданных, срез страницы.
//
// При IndexRequiredError запрос повторяется один раз без order-by,
// сортировка выполняется в памяти. При прочих ошибках хранилища
// возвращается пустой ответ и ошибка; вызывающий решает, деградировать
// или пробрасывать.
//
// Фильтрация никогда не меняет порядок: порядок страницы — порядок
// последней применённой сортировки.
func (e *Engine[T]) Run(ctx context.Context, filters FilterSet[T], sort SortSpec, page PageRequest) (PageResponse[T], error) {
	start := time.Now()
	defer func() {
		queryDuration.WithLabelValues(e.collection).Observe(time.Since(start).Seconds())
	}()

	pushed, residual := Build(filters, sort)

	docs, err := e.store.Query(ctx, e.collection, pushed...)
	sortInMemory := false

	var idxErr *docstore.IndexRequiredError
	if errors.As(err, &idxErr) {
		e.logger.Warn("хранилище требует составной индекс, деградация на in-memory сортировку",
			slog.String("fields", strings.Join(idxErr.Fields, ", ")))
		indexFallbackTotal.WithLabelValues(e.collection).Inc()

		sortInMemory = true
		docs, err = e.store.Query(ctx, e.collection, docstore.DropOrderBy(pushed)...)
	}
	if err != nil {
		e.logger.Error("ошибка запроса к хранилищу", slog.String("error", err.Error()))
		queryTotal.WithLabelValues(e.collection, "error").Inc()
		return EmptyPage[T](page, filters.Echo()), err
	}

	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, decErr := e.decode(docstore.NormalizeDocument(doc))
		if decErr != nil {
			e.logger.Warn("документ пропущен: ошибка декодирования",
				slog.String("id", doc.ID),
				slog.String("error", decErr.Error()))
			continue
		}
		records = append(records, rec)
	}

	if sortInMemory {
		records = e.sortRecords(records, sort)
	}

	for _, pred := range residual {
		records = applyPredicate(records, pred)
	}

	queryTotal.WithLabelValues(e.collection, "ok").Inc()
	return NewPageResponse(records, page, filters.Echo()), nil
}

// sortRecords сортирует записи в памяти по полю SortSpec.
// Сортировка стабильна; неизвестное поле оставляет порядок хранилища.
func (e *Engine[T]) sortRecords(records []T, sort SortSpec) []T {
	cmp := e.compare(sort.Field)
	if cmp == nil {
		e.logger.Warn("нет компаратора для поля сортировки, порядок хранилища сохранён",
			slog.String("field", sort.Field))
		return records
	}
	if sort.Descending {
		asc := cmp
		cmp = func(a, b T) int { return -asc(a, b) }
	}
	slices.SortStableFunc(records, cmp)
	return records
}

// applyPredicate фильтрует срез с сохранением порядка.
func applyPredicate[T any](records []T, pred Predicate[T]) []T {
	out := records[:0]
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
