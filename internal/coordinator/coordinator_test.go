package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kraftonexstudios/finshield/admin-module/internal/domain/model"
	"github.com/kraftonexstudios/finshield/admin-module/internal/query"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingFetch считает вызовы и запоминает параметры последнего.
type countingFetch struct {
	mu    sync.Mutex
	calls int
	last  query.TransactionFilters
	err   error
	// gates — опциональные шлюзы по search-терму: fetch блокируется,
	// пока его шлюз не закрыт. Управляют порядком завершения.
	gates map[string]chan struct{}
}

func (f *countingFetch) fetch(_ context.Context, filters query.TransactionFilters, _ query.SortSpec, page query.PageRequest) (query.PageResponse[model.Transaction], error) {
	f.mu.Lock()
	f.calls++
	f.last = filters
	err := f.err
	gate := f.gates[filters.Search]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return query.EmptyPage[model.Transaction](page, filters.Echo()), err
	}
	return query.NewPageResponse([]model.Transaction{{Reference: "TXN-" + filters.Search}}, page, filters.Echo()), nil
}

func (f *countingFetch) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestCoordinator(f *countingFetch, debounce time.Duration) *Coordinator[query.TransactionFilters, model.Transaction] {
	return New(context.Background(), f.fetch,
		query.TransactionFilters{}, query.DefaultTransactionSort,
		query.PageRequest{Page: 1, PageSize: 10},
		debounce, testLogger())
}

// waitFor опрашивает условие до дедлайна.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("условие не выполнилось за отведённое время")
}

// Два быстрых изменения поиска в окне дебаунса — ровно один fetch
// с параметрами второго вызова.
func TestCoordinator_DebounceCollapsesSearches(t *testing.T) {
	f := &countingFetch{}
	c := newTestCoordinator(f, 30*time.Millisecond)

	c.SetSearch("an")
	c.SetSearch("anna")

	waitFor(t, func() bool { return f.callCount() == 1 })
	time.Sleep(60 * time.Millisecond) // дебаунс-окно истекло, второго fetch нет

	if got := f.callCount(); got != 1 {
		t.Errorf("количество fetch = %d, ожидается 1", got)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last.Search != "anna" {
		t.Errorf("Search = %q, ожидается параметры второго вызова (anna)", f.last.Search)
	}
}

// Повторный Load при неизменных параметрах — no-op.
func TestCoordinator_LoadIdempotent(t *testing.T) {
	f := &countingFetch{}
	c := newTestCoordinator(f, time.Millisecond)

	c.Load()
	c.Load() // первый ещё в полёте — no-op

	waitFor(t, func() bool { return c.Snapshot().Status == StatusReady })

	c.Load() // кэш актуален — no-op

	time.Sleep(20 * time.Millisecond)
	if got := f.callCount(); got != 1 {
		t.Errorf("количество fetch = %d, ожидается 1", got)
	}
}

// Last-request-wins: результат первого fetch, пришедший после старта
// второго, отбрасывается.
func TestCoordinator_LastRequestWins(t *testing.T) {
	f := &countingFetch{gates: map[string]chan struct{}{
		"первый": make(chan struct{}),
		"второй": make(chan struct{}),
	}}
	c := newTestCoordinator(f, time.Millisecond)

	c.SetFilters(func(fl query.TransactionFilters) query.TransactionFilters {
		fl.Search = "первый"
		return fl
	})
	waitFor(t, func() bool { return f.callCount() == 1 })

	c.SetFilters(func(fl query.TransactionFilters) query.TransactionFilters {
		fl.Search = "второй"
		return fl
	})
	waitFor(t, func() bool { return f.callCount() == 2 })

	// Второй fetch завершается первым
	close(f.gates["второй"])
	waitFor(t, func() bool { return c.Snapshot().Status == StatusReady })

	// Теперь завершается первый — его результат должен быть отброшен
	close(f.gates["первый"])
	time.Sleep(20 * time.Millisecond)

	snap := c.Snapshot()
	if snap.Cache == nil || snap.Cache.Data[0].Reference != "TXN-второй" {
		t.Errorf("кэш должен содержать результат второго запроса: %+v", snap.Cache)
	}
}

// Неудачное обновление сохраняет прежний кэш и выставляет ошибку.
func TestCoordinator_FailureKeepsStaleCache(t *testing.T) {
	f := &countingFetch{}
	c := newTestCoordinator(f, time.Millisecond)

	c.Load()
	waitFor(t, func() bool { return c.Snapshot().Status == StatusReady })

	f.mu.Lock()
	f.err = errors.New("хранилище недоступно")
	f.mu.Unlock()

	c.SetFilters(func(fl query.TransactionFilters) query.TransactionFilters {
		fl.Status = "flagged"
		return fl
	})
	waitFor(t, func() bool { return c.Snapshot().Status == StatusError })

	snap := c.Snapshot()
	if snap.Cache == nil {
		t.Fatal("прежний кэш не должен очищаться при ошибке обновления")
	}
	if snap.Err == "" {
		t.Error("текст ошибки должен быть выставлен")
	}
}

// ResetFilters восстанавливает параметры по умолчанию и запускает fetch.
func TestCoordinator_ResetFilters(t *testing.T) {
	f := &countingFetch{}
	c := newTestCoordinator(f, time.Millisecond)

	c.SetFilters(func(fl query.TransactionFilters) query.TransactionFilters {
		fl.Status = "flagged"
		return fl
	})
	if err := c.SetPagination(3, 25); err != nil {
		t.Fatalf("SetPagination() вернул ошибку: %v", err)
	}

	c.ResetFilters()
	waitFor(t, func() bool { return c.Snapshot().Status == StatusReady })

	snap := c.Snapshot()
	if snap.Filters != (query.TransactionFilters{}) {
		t.Errorf("Filters = %+v, ожидаются значения по умолчанию", snap.Filters)
	}
	if snap.Page != (query.PageRequest{Page: 1, PageSize: 10}) {
		t.Errorf("Page = %+v, ожидается страница по умолчанию", snap.Page)
	}
}

// Недопустимый размер страницы — синхронная ошибка без fetch.
func TestCoordinator_SetPaginationValidation(t *testing.T) {
	f := &countingFetch{}
	c := newTestCoordinator(f, time.Millisecond)

	if err := c.SetPagination(1, 0); !errors.Is(err, query.ErrInvalidPageSize) {
		t.Fatalf("ожидается ErrInvalidPageSize, получено: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if f.callCount() != 0 {
		t.Error("fetch не должен запускаться при ошибке валидации")
	}
}
