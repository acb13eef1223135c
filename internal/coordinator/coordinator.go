// Пакет coordinator — кэш и координатор запросов одной коллекции.
//
// Хранит последний успешный страничный ответ, текущие параметры
// (фильтры, сортировка, страница) и состояние загрузки; решает, когда
// нужен повторный fetch. Каждая коллекция получает независимый
// экземпляр координатора — глобального синглтона нет, межколлекционные
// блокировки не нужны.
//
// Правила перезапроса:
//   - изменение поискового запроса дебаунсится (по умолчанию 500 мс);
//   - любое другое изменение параметров запускает fetch немедленно;
//   - одновременно авторитетен не более чем один fetch: результат,
//     чей снимок параметров уже не совпадает с текущим, отбрасывается
//     (last-request-wins);
//   - успех заменяет кэш целиком; неудача сохраняет прежний кэш
//     и выставляет текст ошибки.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kraftonexstudios/finshield/admin-module/internal/query"
)

// Status — состояние загрузки коллекции.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// FilterSet — набор фильтров коллекции с заменяемым поисковым запросом.
// Сравнимость нужна для снимков параметров (last-request-wins).
type FilterSet[F any] interface {
	comparable
	WithSearch(string) F
}

// Fetch выполняет выборку страницы для заданных параметров.
type Fetch[F any, T any] func(ctx context.Context, filters F, sort query.SortSpec, page query.PageRequest) (query.PageResponse[T], error)

// params — снимок параметров запроса. Сравнимое значение.
type params[F comparable] struct {
	filters F
	sort    query.SortSpec
	page    query.PageRequest
}

// Entry — текущее наблюдаемое состояние коллекции для UI.
type Entry[F comparable, T any] struct {
	Status Status
	// Cache — последний успешный ответ; nil до первой удачной загрузки.
	// Остаётся видимым (stale) при ошибке обновления.
	Cache *query.PageResponse[T]
	// Err — человекочитаемое сообщение последней ошибки.
	Err     string
	Filters F
	Sort    query.SortSpec
	Page    query.PageRequest
}

// Coordinator — координатор одной коллекции.
type Coordinator[F FilterSet[F], T any] struct {
	ctx      context.Context
	fetch    Fetch[F, T]
	debounce time.Duration
	defaults params[F]
	logger   *slog.Logger

	mu        sync.Mutex
	cur       params[F]
	status    Status
	cache     *query.PageResponse[T]
	cacheFor  *params[F]
	errMsg    string
	timer     *time.Timer
	searchPin string
}

// New создаёт координатор коллекции.
// ctx — жизненный цикл координатора: все fetch выполняются в нём.
func New[F FilterSet[F], T any](
	ctx context.Context,
	fetch Fetch[F, T],
	defaultFilters F,
	defaultSort query.SortSpec,
	defaultPage query.PageRequest,
	debounce time.Duration,
	logger *slog.Logger,
) *Coordinator[F, T] {
	def := params[F]{filters: defaultFilters, sort: defaultSort, page: defaultPage}
	return &Coordinator[F, T]{
		ctx:      ctx,
		fetch:    fetch,
		debounce: debounce,
		defaults: def,
		cur:      def,
		status:   StatusIdle,
		logger:   logger.With(slog.String("component", "coordinator")),
	}
}

// Load запускает загрузку, если кэш не актуален.
// Идемпотентна: повторный вызов при неизменных параметрах и уже
// идущей или завершённой загрузке не делает ничего.
func (c *Coordinator[F, T]) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == StatusLoading {
		return
	}
	if c.status == StatusReady && c.cacheFor != nil && *c.cacheFor == c.cur {
		return
	}
	c.startFetchLocked()
}

// SetSearch меняет поисковый запрос с дебаунсом: быстрые последовательные
// вызовы схлопываются в один fetch с параметрами последнего вызова.
func (c *Coordinator[F, T]) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchPin = term
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.cur.filters = c.cur.filters.WithSearch(c.searchPin)
		c.cur.page.Page = 1
		c.startFetchLocked()
	})
}

// SetFilters применяет изменение фильтров и немедленно запускает fetch.
// Страница сбрасывается на первую.
func (c *Coordinator[F, T]) SetFilters(update func(F) F) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cur.filters = update(c.cur.filters)
	c.cur.page.Page = 1
	c.startFetchLocked()
}

// SetSort меняет сортировку и немедленно запускает fetch.
func (c *Coordinator[F, T]) SetSort(sort query.SortSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cur.sort = sort
	c.cur.page.Page = 1
	c.startFetchLocked()
}

// SetPagination меняет страницу и немедленно запускает fetch.
// Недопустимый размер страницы — синхронная ошибка, fetch не стартует.
func (c *Coordinator[F, T]) SetPagination(page, pageSize int) error {
	req, err := query.NewPageRequest(page, pageSize)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur.page = req
	c.startFetchLocked()
	return nil
}

// ResetFilters восстанавливает параметры коллекции по умолчанию
// и запускает fetch.
func (c *Coordinator[F, T]) ResetFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cur = c.defaults
	c.searchPin = ""
	c.startFetchLocked()
}

// Snapshot возвращает текущее наблюдаемое состояние коллекции.
func (c *Coordinator[F, T]) Snapshot() Entry[F, T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Entry[F, T]{
		Status:  c.status,
		Cache:   c.cache,
		Err:     c.errMsg,
		Filters: c.cur.filters,
		Sort:    c.cur.sort,
		Page:    c.cur.page,
	}
}

// startFetchLocked запускает fetch для текущего снимка параметров.
// Вызывается под мьютексом.
func (c *Coordinator[F, T]) startFetchLocked() {
	snapshot := c.cur
	c.status = StatusLoading

	go func() {
		resp, err := c.fetch(c.ctx, snapshot.filters, snapshot.sort, snapshot.page)

		c.mu.Lock()
		defer c.mu.Unlock()

		// Last-request-wins: параметры изменились, результат устарел
		if snapshot != c.cur {
			c.logger.Debug("результат fetch отброшен: параметры изменились")
			return
		}

		if err != nil {
			// Прежний кэш остаётся видимым
			c.status = StatusError
			c.errMsg = fmt.Sprintf("не удалось загрузить данные: %v", err)
			c.logger.Warn("ошибка загрузки коллекции", slog.String("error", err.Error()))
			return
		}

		c.cache = &resp
		c.cacheFor = &snapshot
		c.errMsg = ""
		c.status = StatusReady
	}()
}
