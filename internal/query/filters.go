// filters.go — закрытые наборы фильтров по коллекциям.
//
// Каждая коллекция имеет явную структуру фильтров с именованными
// полями; неизвестные ключи отвергаются на HTTP-границе. Значение
// "all" эквивалентно отсутствию фильтра. Скоуп-поле — единственный
// фильтр, уходящий в хранилище; остальные равенства и free-text
// поиск применяются в памяти после выборки (residual).
package query

import (
	"strconv"
	"strings"

	"github.com/kraftonexstudios/finshield/admin-module/internal/domain/model"
)

// FilterAll — значение фильтра, эквивалентное отсутствию ограничения.
const FilterAll = "all"

// Predicate — residual-фильтр, применяемый к записи в памяти.
type Predicate[T any] func(T) bool

// FilterSet — контракт набора фильтров коллекции для билдера и движка.
type FilterSet[T any] interface {
	// Scope возвращает скоуп-поле коллекции и его значение,
	// если фильтр задан. Единственное равенство, уходящее в хранилище.
	Scope() (field, value string, ok bool)
	// Residual возвращает точные residual-фильтры в фиксированном порядке.
	Residual() []Predicate[T]
	// SearchPredicate возвращает free-text предикат либо nil, если поиск не задан.
	SearchPredicate() Predicate[T]
	// Echo возвращает фактически применённые фильтры для страничного ответа.
	Echo() map[string]string
}

// isSet сообщает, задано ли значение фильтра ("all" ≡ не задано).
func isSet(v string) bool {
	return v != "" && v != FilterAll
}

// containsFold — регистронезависимое вхождение подстроки.
func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

// echoValue нормализует значение фильтра для Echo.
func echoValue(v string) string {
	if v == "" {
		return FilterAll
	}
	return v
}

// UserFilters — фильтры коллекции users.
type UserFilters struct {
	// Search — подстрока по fullName, emailId, mobile
	Search string
	// StatusFilter — статус пользователя (active, blocked)
	StatusFilter string
	// VerificationFilter — verified / unverified
	VerificationFilter string
}

// WithSearch возвращает копию фильтров с новым поисковым запросом.
func (f UserFilters) WithSearch(s string) UserFilters {
	f.Search = s
	return f
}

// Scope: у users нет скоуп-поля, все фильтры residual.
func (f UserFilters) Scope() (string, string, bool) { return "", "", false }

func (f UserFilters) Residual() []Predicate[model.User] {
	var preds []Predicate[model.User]
	if isSet(f.StatusFilter) {
		preds = append(preds, func(u model.User) bool { return u.Status == f.StatusFilter })
	}
	if isSet(f.VerificationFilter) {
		want := f.VerificationFilter == "verified"
		preds = append(preds, func(u model.User) bool { return u.Verified == want })
	}
	return preds
}

func (f UserFilters) SearchPredicate() Predicate[model.User] {
	if f.Search == "" {
		return nil
	}
	term := f.Search
	return func(u model.User) bool {
		return containsFold(u.FullName, term) ||
			containsFold(u.EmailID, term) ||
			containsFold(u.Mobile, term)
	}
}

func (f UserFilters) Echo() map[string]string {
	return map[string]string{
		"search":             f.Search,
		"statusFilter":       echoValue(f.StatusFilter),
		"verificationFilter": echoValue(f.VerificationFilter),
	}
}

// TransactionFilters — фильтры коллекции transactions.
type TransactionFilters struct {
	// Search — подстрока по reference, description, fromMobile, toMobile,
	// сумме в строковом представлении
	Search string
	// Status — статус транзакции
	Status string
	// Type — тип операции
	Type string
	// Category — категория платежа
	Category string
	// UserID — скоуп по отправителю (поле fromUserId)
	UserID string
}

// WithSearch возвращает копию фильтров с новым поисковым запросом.
func (f TransactionFilters) WithSearch(s string) TransactionFilters {
	f.Search = s
	return f
}

func (f TransactionFilters) Scope() (string, string, bool) {
	if isSet(f.UserID) {
		return "fromUserId", f.UserID, true
	}
	return "", "", false
}

func (f TransactionFilters) Residual() []Predicate[model.Transaction] {
	var preds []Predicate[model.Transaction]
	if isSet(f.Status) {
		preds = append(preds, func(tx model.Transaction) bool { return tx.Status == f.Status })
	}
	if isSet(f.Type) {
		preds = append(preds, func(tx model.Transaction) bool { return tx.Type == f.Type })
	}
	if isSet(f.Category) {
		preds = append(preds, func(tx model.Transaction) bool { return tx.Category == f.Category })
	}
	return preds
}

func (f TransactionFilters) SearchPredicate() Predicate[model.Transaction] {
	if f.Search == "" {
		return nil
	}
	term := f.Search
	return func(tx model.Transaction) bool {
		return containsFold(tx.Reference, term) ||
			containsFold(tx.Description, term) ||
			containsFold(tx.FromMobile, term) ||
			containsFold(tx.ToMobile, term) ||
			containsFold(strconv.FormatFloat(tx.Amount, 'f', -1, 64), term)
	}
}

func (f TransactionFilters) Echo() map[string]string {
	return map[string]string{
		"search":   f.Search,
		"status":   echoValue(f.Status),
		"type":     echoValue(f.Type),
		"category": echoValue(f.Category),
		"userId":   echoValue(f.UserID),
	}
}

// SessionFilters — фильтры коллекции raw_behavioral_sessions.
type SessionFilters struct {
	// Search — подстрока по sessionId, userId
	Search string
	// BehaviorFilter — вердикт анализа (normal, anomalous)
	BehaviorFilter string
	// UserID — скоуп по пользователю (поле userId)
	UserID string
}

// WithSearch возвращает копию фильтров с новым поисковым запросом.
func (f SessionFilters) WithSearch(s string) SessionFilters {
	f.Search = s
	return f
}

func (f SessionFilters) Scope() (string, string, bool) {
	if isSet(f.UserID) {
		return "userId", f.UserID, true
	}
	return "", "", false
}

func (f SessionFilters) Residual() []Predicate[model.BehavioralSession] {
	var preds []Predicate[model.BehavioralSession]
	if isSet(f.BehaviorFilter) {
		preds = append(preds, func(s model.BehavioralSession) bool { return s.Behavior == f.BehaviorFilter })
	}
	return preds
}

func (f SessionFilters) SearchPredicate() Predicate[model.BehavioralSession] {
	if f.Search == "" {
		return nil
	}
	term := f.Search
	return func(s model.BehavioralSession) bool {
		return containsFold(s.SessionID, term) || containsFold(s.UserID, term)
	}
}

func (f SessionFilters) Echo() map[string]string {
	return map[string]string{
		"search":         f.Search,
		"behaviorFilter": echoValue(f.BehaviorFilter),
		"userId":         echoValue(f.UserID),
	}
}

// RiskScoreFilters — фильтры коллекции risk_scores.
type RiskScoreFilters struct {
	// UserID — скоуп по пользователю (поле userId)
	UserID string
}

// WithSearch — у risk_scores нет free-text поиска, фильтры без изменений.
func (f RiskScoreFilters) WithSearch(string) RiskScoreFilters { return f }

func (f RiskScoreFilters) Scope() (string, string, bool) {
	if isSet(f.UserID) {
		return "userId", f.UserID, true
	}
	return "", "", false
}

func (f RiskScoreFilters) Residual() []Predicate[model.RiskScore] { return nil }

func (f RiskScoreFilters) SearchPredicate() Predicate[model.RiskScore] { return nil }

func (f RiskScoreFilters) Echo() map[string]string {
	return map[string]string{"userId": echoValue(f.UserID)}
}
