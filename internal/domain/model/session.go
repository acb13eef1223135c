package model

import (
	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
)

// Вердикты поведенческого анализа сессии.
const (
	SessionBehaviorNormal    = "normal"
	SessionBehaviorAnomalous = "anomalous"
)

// BehavioralSession — сырая поведенческая сессия мобильного приложения.
// Хранится в коллекции raw_behavioral_sessions.
type BehavioralSession struct {
	// ID — идентификатор документа
	ID string `json:"id"`
	// SessionID — идентификатор сессии, назначенный приложением
	SessionID string `json:"sessionId"`
	// UserID — пользователь сессии
	UserID string `json:"userId"`
	// Behavior — вердикт анализа (normal, anomalous)
	Behavior string `json:"behavior"`
	// DeviceModel — модель устройства
	DeviceModel string `json:"deviceModel"`
	// Timestamp — время снимка телеметрии, epoch-миллисекунды
	Timestamp int64 `json:"timestamp"`
	// CreatedAt — время записи документа, epoch-миллисекунды
	CreatedAt int64 `json:"createdAt"`
}

// DecodeSession декодирует документ коллекции raw_behavioral_sessions.
func DecodeSession(doc docstore.Document) (BehavioralSession, error) {
	var (
		s   = BehavioralSession{ID: doc.ID}
		err error
	)
	if s.SessionID, err = decodeString(doc.Fields, "sessionId"); err != nil {
		return BehavioralSession{}, err
	}
	if s.UserID, err = decodeString(doc.Fields, "userId"); err != nil {
		return BehavioralSession{}, err
	}
	if s.Behavior, err = decodeString(doc.Fields, "behavior"); err != nil {
		return BehavioralSession{}, err
	}
	if s.DeviceModel, err = decodeString(doc.Fields, "deviceModel"); err != nil {
		return BehavioralSession{}, err
	}
	if s.Timestamp, err = decodeMillis(doc.Fields, "timestamp"); err != nil {
		return BehavioralSession{}, err
	}
	if s.CreatedAt, err = decodeMillis(doc.Fields, "createdAt"); err != nil {
		return BehavioralSession{}, err
	}
	return s, nil
}

// Fields сериализует сессию в поля документа для вставки.
func (s BehavioralSession) Fields() map[string]any {
	return map[string]any{
		"sessionId":   s.SessionID,
		"userId":      s.UserID,
		"behavior":    s.Behavior,
		"deviceModel": s.DeviceModel,
		"timestamp":   s.Timestamp,
		"createdAt":   s.CreatedAt,
	}
}
