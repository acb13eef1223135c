// Пакет service — бизнес-логика Admin Module поверх ядра запросов.
// LookupCache — LRU-кэш единичных записей с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики кэша единичных записей.
var (
	lookupCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "am_lookup_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш единичных записей.",
	}, []string{"collection"})
	lookupCacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "am_lookup_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша единичных записей.",
	}, []string{"collection"})
)

// LookupCache — LRU-кэш записей одной коллекции с автоматическим TTL.
// Каждый экземпляр модуля имеет собственный in-memory кэш.
type LookupCache[T any] struct {
	cache      *expirable.LRU[string, T]
	collection string
}

// NewLookupCache создаёт LRU-кэш коллекции с указанным размером и TTL.
func NewLookupCache[T any](collection string, maxSize int, ttl time.Duration) *LookupCache[T] {
	return &LookupCache[T]{
		cache:      expirable.NewLRU[string, T](maxSize, nil, ttl),
		collection: collection,
	}
}

// Get возвращает запись из кэша по ID.
// Обновляет Prometheus-метрики hit/miss.
func (c *LookupCache[T]) Get(id string) (T, bool) {
	val, ok := c.cache.Get(id)
	if ok {
		lookupCacheHitsTotal.WithLabelValues(c.collection).Inc()
		return val, true
	}
	lookupCacheMissesTotal.WithLabelValues(c.collection).Inc()
	var zero T
	return zero, false
}

// Set добавляет или обновляет запись в кэше.
func (c *LookupCache[T]) Set(id string, record T) {
	c.cache.Add(id, record)
}

// Delete удаляет запись из кэша.
func (c *LookupCache[T]) Delete(id string) {
	c.cache.Remove(id)
}
