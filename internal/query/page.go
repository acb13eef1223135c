// Пакет query — ядро доступа к данным: построение ограничений запроса,
// fetch-and-reconcile и сборка страничного ответа.
package query

import (
	"errors"
	"fmt"
)

// ErrInvalidPageSize — размер страницы меньше единицы.
var ErrInvalidPageSize = errors.New("размер страницы должен быть не меньше 1")

// PageRequest — запрос страницы: номер (1-based) и размер.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest валидирует параметры страницы.
// pageSize < 1 — ошибка; page < 1 приводится к 1.
func NewPageRequest(page, pageSize int) (PageRequest, error) {
	if pageSize < 1 {
		return PageRequest{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	if page < 1 {
		page = 1
	}
	return PageRequest{Page: page, PageSize: pageSize}, nil
}

// Pagination — блок метаданных страницы.
// TotalItems всегда отражает количество ПОСЛЕ residual-фильтрации.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	PageSize        int  `json:"pageSize"`
	TotalItems      int  `json:"totalItems"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// PageResponse — иммутабельный страничный ответ: данные, метаданные
// и фактически применённые фильтры.
type PageResponse[T any] struct {
	Data       []T               `json:"data"`
	Pagination Pagination        `json:"pagination"`
	Filters    map[string]string `json:"filters"`
}

// NewPageResponse собирает страничный ответ из отфильтрованного набора.
// Страница за пределами набора даёт пустые данные и корректные метаданные.
func NewPageResponse[T any](items []T, req PageRequest, filters map[string]string) PageResponse[T] {
	totalItems := len(items)
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + req.PageSize - 1) / req.PageSize
	}

	start := (req.Page - 1) * req.PageSize
	end := start + req.PageSize
	var data []T
	if start < totalItems {
		if end > totalItems {
			end = totalItems
		}
		data = items[start:end]
	} else {
		data = []T{}
	}

	return PageResponse[T]{
		Data: data,
		Pagination: Pagination{
			CurrentPage:     req.Page,
			PageSize:        req.PageSize,
			TotalItems:      totalItems,
			TotalPages:      totalPages,
			HasNextPage:     req.Page < totalPages,
			HasPreviousPage: req.Page > 1,
		},
		Filters: filters,
	}
}

// EmptyPage — пустой ответ с нулевыми метаданными.
// Используется при деградации на ошибках хранилища.
func EmptyPage[T any](req PageRequest, filters map[string]string) PageResponse[T] {
	return PageResponse[T]{
		Data: []T{},
		Pagination: Pagination{
			CurrentPage: req.Page,
			PageSize:    req.PageSize,
		},
		Filters: filters,
	}
}
