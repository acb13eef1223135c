package model

import (
	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
)

// Статусы транзакции.
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusPending   = "pending"
	TransactionStatusFlagged   = "flagged"
	TransactionStatusFailed    = "failed"
)

// Transaction — денежный перевод между пользователями.
// Хранится в коллекции transactions.
type Transaction struct {
	// ID — идентификатор документа
	ID string `json:"id"`
	// Reference — человекочитаемый номер транзакции
	Reference string `json:"reference"`
	// Description — описание платежа
	Description string `json:"description"`
	// FromUserID — отправитель (ID документа users)
	FromUserID string `json:"fromUserId"`
	// ToUserID — получатель (ID документа users)
	ToUserID string `json:"toUserId"`
	// FromMobile — номер телефона отправителя
	FromMobile string `json:"fromMobile"`
	// ToMobile — номер телефона получателя
	ToMobile string `json:"toMobile"`
	// Amount — сумма перевода
	Amount float64 `json:"amount"`
	// Status — статус (completed, pending, flagged, failed)
	Status string `json:"status"`
	// Type — тип операции (transfer, deposit, withdrawal)
	Type string `json:"type"`
	// Category — категория платежа
	Category string `json:"category"`
	// CreatedAt — время создания, epoch-миллисекунды
	CreatedAt int64 `json:"createdAt"`
}

// DecodeTransaction декодирует документ коллекции transactions.
func DecodeTransaction(doc docstore.Document) (Transaction, error) {
	var (
		tx  = Transaction{ID: doc.ID}
		err error
	)
	if tx.Reference, err = decodeString(doc.Fields, "reference"); err != nil {
		return Transaction{}, err
	}
	if tx.Description, err = decodeString(doc.Fields, "description"); err != nil {
		return Transaction{}, err
	}
	if tx.FromUserID, err = decodeString(doc.Fields, "fromUserId"); err != nil {
		return Transaction{}, err
	}
	if tx.ToUserID, err = decodeString(doc.Fields, "toUserId"); err != nil {
		return Transaction{}, err
	}
	if tx.FromMobile, err = decodeString(doc.Fields, "fromMobile"); err != nil {
		return Transaction{}, err
	}
	if tx.ToMobile, err = decodeString(doc.Fields, "toMobile"); err != nil {
		return Transaction{}, err
	}
	if tx.Amount, err = decodeFloat(doc.Fields, "amount"); err != nil {
		return Transaction{}, err
	}
	if tx.Status, err = decodeString(doc.Fields, "status"); err != nil {
		return Transaction{}, err
	}
	if tx.Type, err = decodeString(doc.Fields, "type"); err != nil {
		return Transaction{}, err
	}
	if tx.Category, err = decodeString(doc.Fields, "category"); err != nil {
		return Transaction{}, err
	}
	if tx.CreatedAt, err = decodeMillis(doc.Fields, "createdAt"); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// Fields сериализует транзакцию в поля документа для вставки.
func (tx Transaction) Fields() map[string]any {
	return map[string]any{
		"reference":   tx.Reference,
		"description": tx.Description,
		"fromUserId":  tx.FromUserID,
		"toUserId":    tx.ToUserID,
		"fromMobile":  tx.FromMobile,
		"toMobile":    tx.ToMobile,
		"amount":      tx.Amount,
		"status":      tx.Status,
		"type":        tx.Type,
		"category":    tx.Category,
		"createdAt":   tx.CreatedAt,
	}
}
