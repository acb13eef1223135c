package query

import (
	"errors"
	"testing"
)

func TestNewPageRequest_RejectsPageSize(t *testing.T) {
	if _, err := NewPageRequest(1, 0); !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("NewPageRequest(1, 0): ожидается ErrInvalidPageSize, получено %v", err)
	}
	if _, err := NewPageRequest(1, -5); !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("NewPageRequest(1, -5): ожидается ErrInvalidPageSize, получено %v", err)
	}
}

func TestNewPageRequest_ClampsPage(t *testing.T) {
	req, err := NewPageRequest(-3, 10)
	if err != nil {
		t.Fatalf("NewPageRequest() вернул ошибку: %v", err)
	}
	if req.Page != 1 {
		t.Errorf("Page = %d, ожидается 1 (clamp)", req.Page)
	}
}

func TestNewPageResponse_Slicing(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	req := PageRequest{Page: 2, PageSize: 3}

	resp := NewPageResponse(items, req, nil)

	if len(resp.Data) != 3 || resp.Data[0] != 4 {
		t.Errorf("Data = %v, ожидается [4 5 6]", resp.Data)
	}
	p := resp.Pagination
	if p.TotalItems != 7 || p.TotalPages != 3 {
		t.Errorf("TotalItems = %d, TotalPages = %d, ожидается 7 и 3", p.TotalItems, p.TotalPages)
	}
	if !p.HasNextPage || !p.HasPreviousPage {
		t.Errorf("HasNextPage = %v, HasPreviousPage = %v, ожидается true/true", p.HasNextPage, p.HasPreviousPage)
	}
}

// Страница за пределами набора — пустые данные, не ошибка.
func TestNewPageResponse_OutOfRange(t *testing.T) {
	items := []int{1, 2, 3}

	resp := NewPageResponse(items, PageRequest{Page: 5, PageSize: 2}, nil)

	if len(resp.Data) != 0 {
		t.Errorf("Data = %v, ожидается пустой срез", resp.Data)
	}
	p := resp.Pagination
	if p.TotalItems != 3 || p.TotalPages != 2 {
		t.Errorf("TotalItems = %d, TotalPages = %d, ожидается 3 и 2", p.TotalItems, p.TotalPages)
	}
	if p.HasNextPage {
		t.Error("HasNextPage должен быть false за пределами набора")
	}
	if !p.HasPreviousPage {
		t.Error("HasPreviousPage должен быть true для page > 1")
	}
}

func TestNewPageResponse_EmptySet(t *testing.T) {
	resp := NewPageResponse([]int{}, PageRequest{Page: 1, PageSize: 10}, nil)

	p := resp.Pagination
	if p.TotalItems != 0 || p.TotalPages != 0 || p.HasNextPage || p.HasPreviousPage {
		t.Errorf("неверные метаданные пустого набора: %+v", p)
	}
}

// Полный обход страниц: сумма длин срезов равна totalItems,
// записи не дублируются и не теряются.
func TestNewPageResponse_FullSweep(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	for _, pageSize := range []int{1, 5, 10, 23, 50} {
		seen := make(map[int]bool)
		total := 0
		page := 1
		for {
			resp := NewPageResponse(items, PageRequest{Page: page, PageSize: pageSize}, nil)
			for _, v := range resp.Data {
				if seen[v] {
					t.Fatalf("pageSize=%d: запись %d продублирована", pageSize, v)
				}
				seen[v] = true
			}
			total += len(resp.Data)
			if !resp.Pagination.HasNextPage {
				break
			}
			page++
		}
		if total != len(items) {
			t.Errorf("pageSize=%d: сумма длин срезов = %d, ожидается %d", pageSize, total, len(items))
		}
	}
}

func TestEmptyPage(t *testing.T) {
	resp := EmptyPage[int](PageRequest{Page: 3, PageSize: 10}, map[string]string{"status": "flagged"})

	if len(resp.Data) != 0 || resp.Pagination.TotalItems != 0 {
		t.Errorf("ожидается пустой ответ: %+v", resp)
	}
	if resp.Filters["status"] != "flagged" {
		t.Error("фильтры должны эхом возвращаться даже в пустом ответе")
	}
}
