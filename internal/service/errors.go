// errors.go — ошибки сервисного слоя.
package service

import "errors"

// ErrNotFound — запись не найдена.
// Единичные выборки пробрасывают её, чтобы вызывающий мог отличить
// "записи нет" от временного сбоя хранилища.
var ErrNotFound = errors.New("запись не найдена")
