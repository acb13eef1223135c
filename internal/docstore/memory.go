// memory.go — in-memory реализация Store для тестов и demo-режима.
//
// Имитирует индексную модель Firestore: равенство по одному полю и
// сортировка по одному полю обслуживаются одиночными индексами
// (автоматическими), а комбинация where + order-by по разным полям
// требует заранее объявленного составного индекса (DeclareIndex),
// иначе запрос завершается IndexRequiredError. Это позволяет
// прогонять fallback-сценарии ядра без реального хранилища.
package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore — потокобезопасное in-memory документное хранилище.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
	composites  map[string]bool
}

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Document),
		composites:  make(map[string]bool),
	}
}

// DeclareIndex объявляет составной индекс для коллекции.
// Порядок полей значим: (whereField, orderField).
func (s *MemoryStore) DeclareIndex(collection string, fields ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composites[compositeKey(collection, fields)] = true
}

func compositeKey(collection string, fields []string) string {
	return collection + "|" + strings.Join(fields, "+")
}

// Insert добавляет документ и возвращает назначенный UUID.
func (s *MemoryStore) Insert(_ context.Context, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}

	id := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], Document{ID: id, Fields: copied})
	return id, nil
}

// Query возвращает документы коллекции с учётом ограничений.
// Комбинация where + order-by по разным полям без объявленного
// составного индекса завершается IndexRequiredError.
func (s *MemoryStore) Query(_ context.Context, collection string, constraints ...Constraint) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wheres, orderBy, limit := splitConstraints(constraints)

	// Проверка индексного требования (по модели Firestore)
	if orderBy != nil {
		for _, w := range wheres {
			if w.Field == FieldDocumentID || w.Field == orderBy.Field {
				continue
			}
			if !s.composites[compositeKey(collection, []string{w.Field, orderBy.Field})] {
				return nil, &IndexRequiredError{
					Collection: collection,
					Fields:     []string{w.Field, orderBy.Field},
				}
			}
		}
	}

	var out []Document
	for _, d := range s.collections[collection] {
		if matchesAll(d, wheres) {
			out = append(out, d)
		}
	}

	if orderBy != nil {
		sortDocuments(out, orderBy.Field, orderBy.Desc)
	}
	if limit != nil && limit.N >= 0 && len(out) > limit.N {
		out = out[:limit.N]
	}

	return out, nil
}

// Count возвращает количество документов, удовлетворяющих Where-ограничениям.
func (s *MemoryStore) Count(_ context.Context, collection string, constraints ...Constraint) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wheres, _, _ := splitConstraints(constraints)

	n := 0
	for _, d := range s.collections[collection] {
		if matchesAll(d, wheres) {
			n++
		}
	}
	return n, nil
}

// Ping всегда успешен для in-memory хранилища.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// splitConstraints разделяет ограничения на фильтры, сортировку и лимит.
func splitConstraints(cs []Constraint) (wheres []Constraint, orderBy, limit *Constraint) {
	for i := range cs {
		c := cs[i]
		switch {
		case c.IsWhere():
			wheres = append(wheres, c)
		case c.IsOrderBy():
			orderBy = &cs[i]
		case c.IsLimit():
			limit = &cs[i]
		}
	}
	return wheres, orderBy, limit
}

// matchesAll проверяет документ по всем Where-ограничениям.
func matchesAll(d Document, wheres []Constraint) bool {
	for _, w := range wheres {
		var fieldVal any
		if w.Field == FieldDocumentID {
			fieldVal = d.ID
		} else {
			fieldVal = d.Fields[w.Field]
		}
		if !matches(fieldVal, w.Op, w.Value) {
			return false
		}
	}
	return true
}

// matches сравнивает значение поля с ограничением.
func matches(fieldVal any, op string, want any) bool {
	switch op {
	case OpEqual:
		return valuesEqual(fieldVal, want)
	case OpGreaterOrEqual:
		cmp, ok := compareValues(fieldVal, want)
		return ok && cmp >= 0
	case OpLessOrEqual:
		cmp, ok := compareValues(fieldVal, want)
		return ok && cmp <= 0
	default:
		return false
	}
}

// valuesEqual — нестрогое равенство: числа сравниваются по значению
// независимо от Go-типа, остальное — по строковому представлению.
func valuesEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// compareValues сравнивает два значения одного вида (числа или строки).
// Возвращает (-1|0|1, true) либо (0, false) для несравнимых значений.
func compareValues(a, b any) (int, bool) {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return 0, false
	}
	return strings.Compare(as, bs), true
}

// asFloat приводит числовое значение любого вида к float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// sortDocuments сортирует документы по значению поля.
// Документы без поля или с несравнимым значением уходят в конец.
func sortDocuments(docs []Document, field string, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		cmp, ok := compareValues(docs[i].Fields[field], docs[j].Fields[field])
		if !ok {
			_, iok := docs[i].Fields[field]
			_, jok := docs[j].Fields[field]
			return iok && !jok
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
