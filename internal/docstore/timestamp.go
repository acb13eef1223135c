// timestamp.go — нормализация временных меток телеметрии.
//
// Продюсеры телеметрии присылают метки времени в разных кодировках:
// epoch-миллисекунды, нативный timestamp хранилища (time.Time),
// protobuf-timestamp, пара {seconds, nanoseconds}. Normalize приводит
// все варианты к каноническим epoch-миллисекундам, рекурсивно обходя
// вложенные документы и массивы. Некорректные timestamp-подобные
// объекты не считаются ошибкой и возвращаются без изменений —
// продюсерам нельзя доверять единообразие формата.
package docstore

import "time"

// calendarConvertible — значение с нуль-арной конверсией в календарную дату
// (protobuf Timestamp и совместимые типы).
type calendarConvertible interface {
	AsTime() time.Time
}

// Normalize приводит значение к каноническому представлению времени.
// Правила проверяются по порядку:
//  1. time.Time → epoch-миллисекунды
//  2. значение с AsTime() → epoch-миллисекунды
//  3. map вида {seconds, nanoseconds} → seconds*1000 + nanoseconds/1e6
//  4. массив → поэлементная нормализация с сохранением порядка
//  5. map → нормализация по полям с сохранением всех ключей
//  6. иначе — без изменений
//
// Normalize идемпотентна: Normalize(Normalize(x)) == Normalize(x).
func Normalize(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v.UnixMilli()
	case calendarConvertible:
		return v.AsTime().UnixMilli()
	case map[string]any:
		if ms, ok := secondsNanos(v); ok {
			return ms
		}
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = Normalize(val)
		}
		return out
	default:
		return value
	}
}

// NormalizeDocument возвращает копию документа с нормализованными полями.
func NormalizeDocument(d Document) Document {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = Normalize(v)
	}
	return Document{ID: d.ID, Fields: fields}
}

// secondsNanos распознаёт map вида {seconds, nanoseconds}.
// Оба поля обязаны присутствовать и быть числами, иначе map
// не считается timestamp-подобным.
func secondsNanos(m map[string]any) (int64, bool) {
	sec, ok := asInt64(m["seconds"])
	if !ok {
		return 0, false
	}
	nanos, ok := asInt64(m["nanoseconds"])
	if !ok {
		return 0, false
	}
	return sec*1000 + nanos/1_000_000, true
}

// asInt64 приводит числовое значение любого вида к int64.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	default:
		return 0, false
	}
}
