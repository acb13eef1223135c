package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresStore запускает PostgreSQL в Docker-контейнере через
// testcontainers, применяет миграции и возвращает готовый Store.
func setupPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("finshield_test"),
		postgres.WithUsername("finshield"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dsn := fmt.Sprintf("postgres://finshield:test-password@%s:%s/finshield_test?sslmode=disable",
		host, port.Port())
	migrateURL := fmt.Sprintf("pgx5://finshield:test-password@%s:%s/finshield_test?sslmode=disable",
		host, port.Port())

	if err := MigratePostgres(migrateURL, logger); err != nil {
		t.Fatalf("MigratePostgres() вернул ошибку: %v", err)
	}

	pool, err := ConnectPostgres(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("ConnectPostgres() вернул ошибку: %v", err)
	}
	t.Cleanup(pool.Close)

	return NewPostgresStore(pool, logger)
}

// TestPostgresStore_InsertQueryCount — полный цикл: вставка, фильтрация,
// сортировка, подсчёт.
func TestPostgresStore_InsertQueryCount(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()

	seed := []map[string]any{
		{"reference": "TXN-001", "status": "flagged", "amount": 150.0, "createdAt": int64(3000)},
		{"reference": "TXN-002", "status": "completed", "amount": 20.0, "createdAt": int64(1000)},
		{"reference": "TXN-003", "status": "flagged", "amount": 75.5, "createdAt": int64(2000)},
	}
	for _, d := range seed {
		if _, err := s.Insert(ctx, CollectionTransactions, d); err != nil {
			t.Fatalf("Insert() вернул ошибку: %v", err)
		}
	}

	// Равенство + сортировка
	docs, err := s.Query(ctx, CollectionTransactions,
		Where("status", OpEqual, "flagged"),
		OrderBy("createdAt", true))
	if err != nil {
		t.Fatalf("Query() вернул ошибку: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, ожидается 2", len(docs))
	}
	if docs[0].Fields["reference"] != "TXN-001" || docs[1].Fields["reference"] != "TXN-003" {
		t.Errorf("неверный порядок сортировки: %v, %v",
			docs[0].Fields["reference"], docs[1].Fields["reference"])
	}

	// Подсчёт
	n, err := s.Count(ctx, CollectionTransactions, Where("status", OpEqual, "flagged"))
	if err != nil {
		t.Fatalf("Count() вернул ошибку: %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, ожидается 2", n)
	}
}

func TestPostgresStore_DocumentIDLookup(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, CollectionUsers, map[string]any{"fullName": "Анна"})
	if err != nil {
		t.Fatalf("Insert() вернул ошибку: %v", err)
	}

	docs, err := s.Query(ctx, CollectionUsers, Where(FieldDocumentID, OpEqual, id))
	if err != nil {
		t.Fatalf("Query() вернул ошибку: %v", err)
	}
	if len(docs) != 1 || docs[0].Fields["fullName"] != "Анна" {
		t.Errorf("выборка по ID вернула %v", docs)
	}

	// Несуществующий ID — пустая выборка, не ошибка
	docs, err = s.Query(ctx, CollectionUsers,
		Where(FieldDocumentID, OpEqual, "00000000-0000-0000-0000-000000000000"))
	if err != nil {
		t.Fatalf("Query() вернул ошибку: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("ожидается пустая выборка, получено %d документов", len(docs))
	}
}

func TestPostgresStore_RangeAndLimit(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := s.Insert(ctx, CollectionRiskScores, map[string]any{
			"userId":    "u-1",
			"riskScore": float64(i * 10),
			"timestamp": int64(i * 1000),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	docs, err := s.Query(ctx, CollectionRiskScores,
		Where("timestamp", OpGreaterOrEqual, int64(2000)),
		Where("timestamp", OpLessOrEqual, int64(4000)),
		OrderBy("timestamp", true),
		Limit(2))
	if err != nil {
		t.Fatalf("Query() вернул ошибку: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, ожидается 2", len(docs))
	}
	// jsonb-числа декодируются как float64
	if docs[0].Fields["timestamp"] != float64(4000) {
		t.Errorf("docs[0].timestamp = %v, ожидается 4000", docs[0].Fields["timestamp"])
	}
}
