// Точка входа Admin Module — модуль данных админ-панели FinShield.
// Загружает конфигурацию, подключает документное хранилище (Firestore,
// PostgreSQL или in-memory), создаёт сервисный слой и API handlers,
// запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/kraftonexstudios/finshield/admin-module/internal/api/handlers"
	"github.com/kraftonexstudios/finshield/admin-module/internal/api/middleware"
	"github.com/kraftonexstudios/finshield/admin-module/internal/config"
	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
	"github.com/kraftonexstudios/finshield/admin-module/internal/domain/model"
	"github.com/kraftonexstudios/finshield/admin-module/internal/server"
	"github.com/kraftonexstudios/finshield/admin-module/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Admin Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("docstore", cfg.Docstore),
	)

	if os.Getenv("AM_DEPHEALTH_GROUP") == "" {
		logger.Warn("AM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Подключение документного хранилища
	ctx := context.Background()
	var (
		store docstore.Store
		pgDB  *sql.DB
	)

	switch cfg.Docstore {
	case config.DocstoreFirestore:
		fs, fsErr := docstore.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentials, logger)
		if fsErr != nil {
			logger.Error("Ошибка подключения к Firestore", slog.String("error", fsErr.Error()))
			os.Exit(1)
		}
		defer fs.Close()
		store = fs

	case config.DocstorePostgres:
		// 3.1 Применение миграций БД
		logger.Info("Применение миграций БД...")
		if migErr := docstore.MigratePostgres(cfg.MigrateURL(), logger); migErr != nil {
			logger.Error("Ошибка миграций БД", slog.String("error", migErr.Error()))
			os.Exit(1)
		}

		pool, poolErr := docstore.ConnectPostgres(ctx, cfg.DatabaseDSN(), logger)
		if poolErr != nil {
			logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", poolErr.Error()))
			os.Exit(1)
		}
		defer pool.Close()
		store = docstore.NewPostgresStore(pool, logger)

		// Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode):
		// проверка здоровья идёт через существующий пул соединений
		pgDB = stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()

	case config.DocstoreMemory:
		logger.Warn("Используется in-memory хранилище: данные не сохраняются между рестартами")
		store = docstore.NewMemoryStore()
	}

	// 4. Кэши единичных записей
	userCache := service.NewLookupCache[model.User](docstore.CollectionUsers, cfg.CacheSize, cfg.CacheTTL)
	txCache := service.NewLookupCache[model.Transaction](docstore.CollectionTransactions, cfg.CacheSize, cfg.CacheTTL)
	sessionCache := service.NewLookupCache[model.BehavioralSession](docstore.CollectionSessions, cfg.CacheSize, cfg.CacheTTL)

	// 5. Сервисный слой
	userSvc := service.NewUserService(store, userCache, logger)
	txSvc := service.NewTransactionService(store, txCache, logger)
	sessionSvc := service.NewSessionService(store, sessionCache, logger)
	riskSvc := service.NewRiskService(store, logger)
	statsSvc := service.NewStatsService(store, logger)

	// 6. JWT middleware (опционально: пустой AM_JWKS_URL отключает auth)
	var jwtAuth *middleware.JWTAuth
	if cfg.JWKSURL != "" {
		jwtAuth, err = middleware.NewJWTAuth(
			cfg.JWKSURL,
			cfg.CACertPath,
			cfg.JWTIssuer,
			cfg.AdminGroups,
			cfg.ReadonlyGroups,
			cfg.JWKSClientTimeout,
			cfg.JWKSRefreshInterval,
			cfg.JWTLeeway,
			logger,
		)
		if err != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("JWT middleware инициализирован",
			slog.String("jwks_url", cfg.JWKSURL),
			slog.String("issuer", cfg.JWTIssuer),
		)
	} else {
		logger.Warn("AM_JWKS_URL не задан, JWT-аутентификация отключена")
	}

	// 7. topologymetrics — мониторинг зависимостей
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthConfig{
		ServiceID:     "admin-module",
		Group:         cfg.DephealthGroup,
		DB:            pgDB,
		PGConnURL:     cfg.DatabaseDSN(),
		RiskEngineURL: cfg.RiskEngineURL,
		CheckInterval: cfg.DephealthCheckInterval,
		IsEntry:       cfg.DephealthIsEntry,
	}, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 8. API handler
	healthHandler := handlers.NewHealthHandler(docstore.NewReadinessChecker(store))
	apiHandler := handlers.NewHandler(
		healthHandler,
		userSvc,
		txSvc,
		sessionSvc,
		riskSvc,
		statsSvc,
		cfg.DefaultPageSize,
		logger,
	)

	// 9. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, jwtAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 10. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Admin Module остановлен")
}
