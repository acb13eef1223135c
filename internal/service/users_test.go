package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
	"github.com/kraftonexstudios/finshield/admin-module/internal/domain/model"
	"github.com/kraftonexstudios/finshield/admin-module/internal/query"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newUserCache() *LookupCache[model.User] {
	return NewLookupCache[model.User](docstore.CollectionUsers, 100, time.Minute)
}

// mockStore — мок хранилища с настраиваемыми функциями.
type mockStore struct {
	count  func(ctx context.Context, collection string, constraints ...docstore.Constraint) (int, error)
	query  func(ctx context.Context, collection string, constraints ...docstore.Constraint) ([]docstore.Document, error)
	insert func(ctx context.Context, collection string, fields map[string]any) (string, error)
	ping   func(ctx context.Context) error
}

func (m *mockStore) Count(ctx context.Context, collection string, constraints ...docstore.Constraint) (int, error) {
	if m.count == nil {
		return 0, nil
	}
	return m.count(ctx, collection, constraints...)
}

func (m *mockStore) Query(ctx context.Context, collection string, constraints ...docstore.Constraint) ([]docstore.Document, error) {
	if m.query == nil {
		return nil, nil
	}
	return m.query(ctx, collection, constraints...)
}

func (m *mockStore) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if m.insert == nil {
		return "", nil
	}
	return m.insert(ctx, collection, fields)
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.ping == nil {
		return nil
	}
	return m.ping(ctx)
}

func TestUserService_GetByID(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	id, err := store.Insert(ctx, docstore.CollectionUsers, map[string]any{
		"fullName": "Анна Петрова",
		"status":   "active",
	})
	if err != nil {
		t.Fatal(err)
	}

	svc := NewUserService(store, newUserCache(), testLogger())

	u, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() вернул ошибку: %v", err)
	}
	if u.FullName != "Анна Петрова" {
		t.Errorf("FullName = %q, ожидается Анна Петрова", u.FullName)
	}
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc := NewUserService(docstore.NewMemoryStore(), newUserCache(), testLogger())

	_, err := svc.GetByID(context.Background(), "нет-такого")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидается ErrNotFound, получено: %v", err)
	}
}

// Временный сбой хранилища пробрасывается и отличим от ErrNotFound.
func TestUserService_GetByID_TransientError(t *testing.T) {
	store := &mockStore{
		query: func(context.Context, string, ...docstore.Constraint) ([]docstore.Document, error) {
			return nil, docstore.ErrUnavailable
		},
	}
	svc := NewUserService(store, newUserCache(), testLogger())

	_, err := svc.GetByID(context.Background(), "u-1")
	if !errors.Is(err, docstore.ErrUnavailable) {
		t.Errorf("ожидается ErrUnavailable, получено: %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("временный сбой не должен выглядеть как ErrNotFound")
	}
}

// Повторное чтение обслуживается из кэша без похода в хранилище.
func TestUserService_GetByID_Cached(t *testing.T) {
	queries := 0
	store := &mockStore{
		query: func(context.Context, string, ...docstore.Constraint) ([]docstore.Document, error) {
			queries++
			return []docstore.Document{{ID: "u-1", Fields: map[string]any{"fullName": "Анна"}}}, nil
		},
	}
	svc := NewUserService(store, newUserCache(), testLogger())
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, "u-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetByID(ctx, "u-1"); err != nil {
		t.Fatal(err)
	}

	if queries != 1 {
		t.Errorf("обращений к хранилищу = %d, ожидается 1", queries)
	}
}

// Create проставляет статус и метки времени по умолчанию.
func TestUserService_Create_Defaults(t *testing.T) {
	var inserted map[string]any
	store := &mockStore{
		insert: func(_ context.Context, _ string, fields map[string]any) (string, error) {
			inserted = fields
			return "u-новый", nil
		},
	}
	svc := NewUserService(store, newUserCache(), testLogger())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	id, err := svc.Create(context.Background(), model.User{FullName: "Анна"})
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}
	if id != "u-новый" {
		t.Errorf("id = %q, ожидается u-новый", id)
	}
	if inserted["status"] != model.UserStatusActive {
		t.Errorf("status = %v, ожидается active", inserted["status"])
	}
	if inserted["createdAt"] != int64(1700000000000) {
		t.Errorf("createdAt = %v, ожидается 1700000000000", inserted["createdAt"])
	}
}

// List деградирует до пустого ответа при сбое хранилища.
func TestUserService_List_Degrades(t *testing.T) {
	store := &mockStore{
		query: func(context.Context, string, ...docstore.Constraint) ([]docstore.Document, error) {
			return nil, docstore.ErrUnavailable
		},
	}
	svc := NewUserService(store, newUserCache(), testLogger())

	resp, err := svc.List(context.Background(), query.UserFilters{},
		query.DefaultUserSort, query.PageRequest{Page: 1, PageSize: 10})

	if err == nil {
		t.Fatal("ожидается ошибка для errMsg координатора")
	}
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Errorf("ожидается пустой типизированный ответ: %+v", resp)
	}
}
