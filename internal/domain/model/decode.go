// Пакет model — доменные модели FinShield и декодирование документов
// хранилища в типизированные записи.
//
// Документы приходят без схемы, поэтому декодирование lenient:
// отсутствующее поле даёт нулевое значение, а поле неверного типа —
// DecodeError, по которой запись пропускается с предупреждением в логе.
package model

import (
	"fmt"
	"time"
)

// DecodeError — поле документа имеет неожиданный тип.
type DecodeError struct {
	Field string
	Want  string
	Got   any
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("поле %s: ожидается %s, получено %T", e.Field, e.Want, e.Got)
}

// decodeString читает строковое поле. Отсутствие поля — пустая строка.
func decodeString(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &DecodeError{Field: key, Want: "string", Got: v}
	}
	return s, nil
}

// decodeFloat читает числовое поле. Отсутствие поля — ноль.
func decodeFloat(fields map[string]any, key string) (float64, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, &DecodeError{Field: key, Want: "number", Got: v}
	}
}

// decodeBool читает булево поле. Отсутствие поля — false.
func decodeBool(fields map[string]any, key string) (bool, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, &DecodeError{Field: key, Want: "bool", Got: v}
	}
	return b, nil
}

// decodeMillis читает метку времени в epoch-миллисекундах.
// Нормализованные документы хранят числа, но исторические записи
// могут содержать строку RFC3339. Отсутствие поля — ноль.
func decodeMillis(fields map[string]any, key string) (int64, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		t, err := time.Parse(time.RFC3339, n)
		if err != nil {
			return 0, &DecodeError{Field: key, Want: "epoch-ms или RFC3339", Got: v}
		}
		return t.UnixMilli(), nil
	default:
		return 0, &DecodeError{Field: key, Want: "epoch-ms", Got: v}
	}
}

// decodeStrings читает поле-массив строк. Отсутствие поля — nil.
func decodeStrings(fields map[string]any, key string) ([]string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &DecodeError{Field: key, Want: "array", Got: v}
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil, &DecodeError{Field: key, Want: "array of strings", Got: el}
		}
		out = append(out, s)
	}
	return out, nil
}
