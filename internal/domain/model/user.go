package model

import (
	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
)

// Статусы пользователя.
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// User — пользователь мобильного приложения.
// Хранится в коллекции users.
type User struct {
	// ID — идентификатор документа
	ID string `json:"id"`
	// FullName — полное имя
	FullName string `json:"fullName"`
	// EmailID — адрес электронной почты
	EmailID string `json:"emailId"`
	// Mobile — номер мобильного телефона
	Mobile string `json:"mobile"`
	// Status — статус (active, blocked)
	Status string `json:"status"`
	// Verified — пройдена ли верификация личности
	Verified bool `json:"verified"`
	// AppVersion — версия мобильного приложения при последнем входе
	AppVersion string `json:"appVersion"`
	// CreatedAt — время регистрации, epoch-миллисекунды
	CreatedAt int64 `json:"createdAt"`
	// LastLoginAt — время последнего входа, epoch-миллисекунды
	LastLoginAt int64 `json:"lastLoginAt"`
}

// DecodeUser декодирует документ коллекции users.
func DecodeUser(doc docstore.Document) (User, error) {
	var (
		u   = User{ID: doc.ID}
		err error
	)
	if u.FullName, err = decodeString(doc.Fields, "fullName"); err != nil {
		return User{}, err
	}
	if u.EmailID, err = decodeString(doc.Fields, "emailId"); err != nil {
		return User{}, err
	}
	if u.Mobile, err = decodeString(doc.Fields, "mobile"); err != nil {
		return User{}, err
	}
	if u.Status, err = decodeString(doc.Fields, "status"); err != nil {
		return User{}, err
	}
	if u.Verified, err = decodeBool(doc.Fields, "verified"); err != nil {
		return User{}, err
	}
	if u.AppVersion, err = decodeString(doc.Fields, "appVersion"); err != nil {
		return User{}, err
	}
	if u.CreatedAt, err = decodeMillis(doc.Fields, "createdAt"); err != nil {
		return User{}, err
	}
	if u.LastLoginAt, err = decodeMillis(doc.Fields, "lastLoginAt"); err != nil {
		return User{}, err
	}
	return u, nil
}

// Fields сериализует пользователя в поля документа для вставки.
func (u User) Fields() map[string]any {
	return map[string]any{
		"fullName":    u.FullName,
		"emailId":     u.EmailID,
		"mobile":      u.Mobile,
		"status":      u.Status,
		"verified":    u.Verified,
		"appVersion":  u.AppVersion,
		"createdAt":   u.CreatedAt,
		"lastLoginAt": u.LastLoginAt,
	}
}
