package model

import (
	"errors"
	"testing"

	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
)

func TestDecodeUser(t *testing.T) {
	doc := docstore.Document{
		ID: "u-1",
		Fields: map[string]any{
			"fullName":    "Анна Петрова",
			"emailId":     "anna@example.com",
			"mobile":      "+79990001122",
			"status":      "active",
			"verified":    true,
			"createdAt":   int64(1700000000000),
			"lastLoginAt": float64(1700000100000),
		},
	}

	u, err := DecodeUser(doc)
	if err != nil {
		t.Fatalf("DecodeUser() вернул ошибку: %v", err)
	}
	if u.ID != "u-1" || u.FullName != "Анна Петрова" || !u.Verified {
		t.Errorf("неверное декодирование: %+v", u)
	}
	if u.CreatedAt != 1700000000000 || u.LastLoginAt != 1700000100000 {
		t.Errorf("метки времени: CreatedAt=%d, LastLoginAt=%d", u.CreatedAt, u.LastLoginAt)
	}
}

// Отсутствующие поля дают нулевые значения, а не ошибку.
func TestDecodeUser_MissingFields(t *testing.T) {
	u, err := DecodeUser(docstore.Document{ID: "u-2", Fields: map[string]any{}})
	if err != nil {
		t.Fatalf("DecodeUser() вернул ошибку: %v", err)
	}
	if u.FullName != "" || u.Verified || u.CreatedAt != 0 {
		t.Errorf("ожидаются нулевые значения: %+v", u)
	}
}

// Поле неверного типа — DecodeError.
func TestDecodeUser_TypeMismatch(t *testing.T) {
	_, err := DecodeUser(docstore.Document{
		ID:     "u-3",
		Fields: map[string]any{"fullName": 42},
	})

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("ожидается DecodeError, получено: %v", err)
	}
	if decErr.Field != "fullName" {
		t.Errorf("Field = %q, ожидается fullName", decErr.Field)
	}
}

func TestDecodeTransaction(t *testing.T) {
	doc := docstore.Document{
		ID: "t-1",
		Fields: map[string]any{
			"reference":  "TXN-001",
			"fromUserId": "u-1",
			"toUserId":   "u-2",
			"fromMobile": "+79990001122",
			"amount":     150.75,
			"status":     "flagged",
			"type":       "transfer",
			"createdAt":  int64(1700000000000),
		},
	}

	tx, err := DecodeTransaction(doc)
	if err != nil {
		t.Fatalf("DecodeTransaction() вернул ошибку: %v", err)
	}
	if tx.Reference != "TXN-001" || tx.Amount != 150.75 || tx.Status != "flagged" {
		t.Errorf("неверное декодирование: %+v", tx)
	}
}

// RFC3339-строка в поле времени принимается для исторических записей.
func TestDecodeTransaction_RFC3339Timestamp(t *testing.T) {
	tx, err := DecodeTransaction(docstore.Document{
		ID:     "t-2",
		Fields: map[string]any{"createdAt": "2023-11-14T22:13:20Z"},
	})
	if err != nil {
		t.Fatalf("DecodeTransaction() вернул ошибку: %v", err)
	}
	if tx.CreatedAt != 1700000000000 {
		t.Errorf("CreatedAt = %d, ожидается 1700000000000", tx.CreatedAt)
	}
}

func TestDecodeSession(t *testing.T) {
	s, err := DecodeSession(docstore.Document{
		ID: "s-1",
		Fields: map[string]any{
			"sessionId": "sess-42",
			"userId":    "u-1",
			"behavior":  "anomalous",
			"timestamp": int64(1000),
		},
	})
	if err != nil {
		t.Fatalf("DecodeSession() вернул ошибку: %v", err)
	}
	if s.SessionID != "sess-42" || s.Behavior != SessionBehaviorAnomalous {
		t.Errorf("неверное декодирование: %+v", s)
	}
}

func TestDecodeRiskScore(t *testing.T) {
	rs, err := DecodeRiskScore(docstore.Document{
		ID: "r-1",
		Fields: map[string]any{
			"userId":    "u-1",
			"riskScore": 87.5,
			"riskLevel": "high",
			"factors":   []any{"velocity", "new_device"},
			"timestamp": int64(1700000000000),
		},
	})
	if err != nil {
		t.Fatalf("DecodeRiskScore() вернул ошибку: %v", err)
	}
	if rs.Score != 87.5 || rs.Level != RiskLevelHigh || len(rs.Factors) != 2 {
		t.Errorf("неверное декодирование: %+v", rs)
	}
}

func TestDecodeBehaviorProfile(t *testing.T) {
	bp, err := DecodeBehaviorProfile(docstore.Document{
		ID: "p-1",
		Fields: map[string]any{
			"userId":      "u-1",
			"metrics":     map[string]any{"typingSpeed": 4.2, "swipeVelocity": 810.0},
			"sampleCount": float64(17),
			"updatedAt":   int64(1700000000000),
		},
	})
	if err != nil {
		t.Fatalf("DecodeBehaviorProfile() вернул ошибку: %v", err)
	}
	if bp.SampleCount != 17 || bp.Metrics["typingSpeed"] != 4.2 {
		t.Errorf("неверное декодирование: %+v", bp)
	}
}
