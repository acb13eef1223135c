package query

import (
	"testing"

	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
	"github.com/kraftonexstudios/finshield/admin-module/internal/domain/model"
)

// В хранилище уходят только order-by и скоуп-равенство;
// статус и поиск остаются residual.
func TestBuild_PushedAndResidual(t *testing.T) {
	filters := TransactionFilters{
		Search: "TXN",
		Status: "flagged",
		UserID: "u-1",
	}

	pushed, residual := Build[model.Transaction](filters, DefaultTransactionSort)

	if len(pushed) != 2 {
		t.Fatalf("len(pushed) = %d, ожидается 2 (order-by + scope)", len(pushed))
	}
	if !pushed[0].IsOrderBy() || pushed[0].Field != "createdAt" || !pushed[0].Desc {
		t.Errorf("pushed[0] = %+v, ожидается OrderBy(createdAt, desc)", pushed[0])
	}
	if !pushed[1].IsWhere() || pushed[1].Field != "fromUserId" || pushed[1].Value != "u-1" {
		t.Errorf("pushed[1] = %+v, ожидается Where(fromUserId, ==, u-1)", pushed[1])
	}
	// Точный фильтр + поиск
	if len(residual) != 2 {
		t.Errorf("len(residual) = %d, ожидается 2", len(residual))
	}
}

// Значение "all" эквивалентно отсутствию фильтра.
func TestBuild_AllMeansUnset(t *testing.T) {
	filters := TransactionFilters{
		Status: FilterAll,
		Type:   FilterAll,
		UserID: FilterAll,
	}

	pushed, residual := Build[model.Transaction](filters, DefaultTransactionSort)

	if len(pushed) != 1 {
		t.Errorf("len(pushed) = %d, ожидается 1 (только order-by)", len(pushed))
	}
	if len(residual) != 0 {
		t.Errorf("len(residual) = %d, ожидается 0", len(residual))
	}
}

func TestBuild_UsersHaveNoScope(t *testing.T) {
	filters := UserFilters{StatusFilter: "active", Search: "анна"}

	pushed, residual := Build[model.User](filters, DefaultUserSort)

	for _, c := range pushed {
		if c.IsWhere() {
			t.Errorf("у users не должно быть pushed-равенств: %+v", c)
		}
	}
	if len(residual) != 2 {
		t.Errorf("len(residual) = %d, ожидается 2", len(residual))
	}
}

func TestDropOrderByKeepsScope(t *testing.T) {
	filters := SessionFilters{UserID: "u-1"}
	pushed, _ := Build[model.BehavioralSession](filters, DefaultSessionSort)

	dropped := docstore.DropOrderBy(pushed)
	if len(dropped) != 1 || !dropped[0].IsWhere() {
		t.Errorf("DropOrderBy() = %+v, ожидается только Where", dropped)
	}
}

func TestParseSort(t *testing.T) {
	spec, err := ParseSort("amount", "asc", TransactionSortFields, DefaultTransactionSort)
	if err != nil {
		t.Fatalf("ParseSort() вернул ошибку: %v", err)
	}
	if spec.Field != "amount" || spec.Descending {
		t.Errorf("spec = %+v, ожидается amount asc", spec)
	}

	// Пустые параметры — значения по умолчанию
	spec, err = ParseSort("", "", TransactionSortFields, DefaultTransactionSort)
	if err != nil {
		t.Fatalf("ParseSort() вернул ошибку: %v", err)
	}
	if spec != DefaultTransactionSort {
		t.Errorf("spec = %+v, ожидается сортировка по умолчанию", spec)
	}

	if _, err := ParseSort("password", "asc", TransactionSortFields, DefaultTransactionSort); err == nil {
		t.Error("ожидается ошибка для поля вне белого списка")
	}
	if _, err := ParseSort("amount", "sideways", TransactionSortFields, DefaultTransactionSort); err == nil {
		t.Error("ожидается ошибка для недопустимого направления")
	}
}

// Free-text поиск: регистронезависимое вхождение, OR по полям.
func TestUserFilters_SearchPredicate(t *testing.T) {
	pred := UserFilters{Search: "ANNA"}.SearchPredicate()

	if !pred(model.User{EmailID: "anna@example.com"}) {
		t.Error("поиск должен быть регистронезависимым")
	}
	if !pred(model.User{FullName: "Anna Petrova", EmailID: "x@y.z"}) {
		t.Error("совпадение по любому из полей достаточно")
	}
	if pred(model.User{FullName: "Boris", EmailID: "boris@example.com", Mobile: "+7999"}) {
		t.Error("запись без вхождения не должна совпадать")
	}
}
