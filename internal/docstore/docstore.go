// Пакет docstore — абстракция документного хранилища FinShield.
// Ядро работает с коллекциями документов только для чтения
// (плюс узкий путь вставки) и не владеет схемой хранилища.
//
// Реализации: Firestore (production), PostgreSQL/JSONB (альтернативный
// бэкенд с составными индексами), in-memory (тесты и demo-режим).
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Имена коллекций FinShield.
const (
	CollectionUsers            = "users"
	CollectionTransactions     = "transactions"
	CollectionSessions         = "raw_behavioral_sessions"
	CollectionRiskScores       = "risk_scores"
	CollectionBehaviorProfiles = "behaviour_profiles"
)

// FieldDocumentID — псевдо-поле для выборки документа по ID
// (аналог __name__ в Firestore). Каждый бэкенд обрабатывает его особо.
const FieldDocumentID = "__name__"

// Ошибки слоя хранилища.
var (
	// ErrNotFound — документ не найден.
	ErrNotFound = errors.New("документ не найден")
	// ErrUnavailable — хранилище временно недоступно (сеть, таймаут).
	ErrUnavailable = errors.New("документное хранилище недоступно")
)

// IndexRequiredError — хранилище требует составной индекс для запроса.
// Fields содержит поля, которые нужно включить в индекс, —
// используется для actionable-ремедиации в логах.
type IndexRequiredError struct {
	Collection string
	Fields     []string
}

func (e *IndexRequiredError) Error() string {
	return fmt.Sprintf("коллекция %s: требуется составной индекс по полям [%s]",
		e.Collection, strings.Join(e.Fields, ", "))
}

// Операторы сравнения для Where-ограничений.
const (
	OpEqual          = "=="
	OpGreaterOrEqual = ">="
	OpLessOrEqual    = "<="
)

// Вид ограничения запроса.
type constraintKind int

const (
	kindWhere constraintKind = iota
	kindOrderBy
	kindLimit
)

// Constraint — одно ограничение запроса к хранилищу (pushed constraint).
// Создаётся конструкторами Where, OrderBy, Limit.
type Constraint struct {
	kind  constraintKind
	Field string
	Op    string
	Value any
	Desc  bool
	N     int
}

// Where создаёт ограничение сравнения поля.
func Where(field, op string, value any) Constraint {
	return Constraint{kind: kindWhere, Field: field, Op: op, Value: value}
}

// OrderBy создаёт ограничение сортировки по одному полю.
func OrderBy(field string, desc bool) Constraint {
	return Constraint{kind: kindOrderBy, Field: field, Desc: desc}
}

// Limit ограничивает количество возвращаемых документов.
func Limit(n int) Constraint {
	return Constraint{kind: kindLimit, N: n}
}

// IsWhere сообщает, является ли ограничение фильтром Where.
func (c Constraint) IsWhere() bool { return c.kind == kindWhere }

// IsOrderBy сообщает, является ли ограничение сортировкой.
func (c Constraint) IsOrderBy() bool { return c.kind == kindOrderBy }

// IsLimit сообщает, является ли ограничение лимитом.
func (c Constraint) IsLimit() bool { return c.kind == kindLimit }

// DropOrderBy возвращает копию списка ограничений без сортировок.
// Используется при fallback на in-memory сортировку (missing index).
func DropOrderBy(cs []Constraint) []Constraint {
	out := make([]Constraint, 0, len(cs))
	for _, c := range cs {
		if !c.IsOrderBy() {
			out = append(out, c)
		}
	}
	return out
}

// Document — документ коллекции: ID, назначенный хранилищем,
// и непрозрачный набор полей. Ядро не мутирует документы.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store — read-контракт документного хранилища плюс узкий путь вставки.
type Store interface {
	// Count возвращает количество документов, удовлетворяющих ограничениям
	// (server-side aggregate, только pushed constraints).
	Count(ctx context.Context, collection string, constraints ...Constraint) (int, error)
	// Query возвращает документы коллекции, полностью материализованные.
	Query(ctx context.Context, collection string, constraints ...Constraint) ([]Document, error)
	// Insert добавляет документ и возвращает назначенный ID.
	Insert(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}

// Таймаут Ping при проверке готовности.
const pingTimeout = 3 * time.Second

// ReadinessChecker — проверка готовности хранилища для health endpoint.
type ReadinessChecker struct {
	store Store
}

// NewReadinessChecker создаёт проверку готовности документного хранилища.
func NewReadinessChecker(store Store) *ReadinessChecker {
	return &ReadinessChecker{store: store}
}

// CheckReady проверяет доступность хранилища через Ping.
// Возвращает статус ("ok", "fail") и сообщение.
func (c *ReadinessChecker) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		return "fail", fmt.Sprintf("хранилище недоступно: %v", err)
	}
	return "ok", "подключение активно"
}
