// compare.go — компараторы записей для in-memory сортировки
// при деградации из-за отсутствующего индекса.
package query

import (
	"cmp"
	"strings"

	"github.com/kraftonexstudios/finshield/admin-module/internal/domain/model"
)

// CompareUsers возвращает компаратор users по полю сортировки.
func CompareUsers(field string) func(a, b model.User) int {
	switch field {
	case "createdAt":
		return func(a, b model.User) int { return cmp.Compare(a.CreatedAt, b.CreatedAt) }
	case "lastLoginAt":
		return func(a, b model.User) int { return cmp.Compare(a.LastLoginAt, b.LastLoginAt) }
	case "fullName":
		return func(a, b model.User) int { return strings.Compare(a.FullName, b.FullName) }
	case "status":
		return func(a, b model.User) int { return strings.Compare(a.Status, b.Status) }
	default:
		return nil
	}
}

// CompareTransactions возвращает компаратор transactions по полю сортировки.
func CompareTransactions(field string) func(a, b model.Transaction) int {
	switch field {
	case "createdAt":
		return func(a, b model.Transaction) int { return cmp.Compare(a.CreatedAt, b.CreatedAt) }
	case "amount":
		return func(a, b model.Transaction) int { return cmp.Compare(a.Amount, b.Amount) }
	case "status":
		return func(a, b model.Transaction) int { return strings.Compare(a.Status, b.Status) }
	default:
		return nil
	}
}

// CompareSessions возвращает компаратор сессий по полю сортировки.
func CompareSessions(field string) func(a, b model.BehavioralSession) int {
	switch field {
	case "timestamp":
		return func(a, b model.BehavioralSession) int { return cmp.Compare(a.Timestamp, b.Timestamp) }
	case "createdAt":
		return func(a, b model.BehavioralSession) int { return cmp.Compare(a.CreatedAt, b.CreatedAt) }
	default:
		return nil
	}
}

// CompareRiskScores возвращает компаратор risk_scores по полю сортировки.
func CompareRiskScores(field string) func(a, b model.RiskScore) int {
	switch field {
	case "timestamp":
		return func(a, b model.RiskScore) int { return cmp.Compare(a.Timestamp, b.Timestamp) }
	case "riskScore":
		return func(a, b model.RiskScore) int { return cmp.Compare(a.Score, b.Score) }
	default:
		return nil
	}
}
