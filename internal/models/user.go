package models

import (
	"slices"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser         Role = "user"
	RoleVeterinarian Role = "veterinarian"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleVeterinarian || r == RoleAdmin
}

// Caller - пользователь, от имени которого выполняется операция.
// Нулевое значение соответствует анонимному запросу.
type Caller struct {
	UserID uuid.UUID
	Role   Role
}

func (c Caller) Anonymous() bool {
	return c.UserID == uuid.Nil
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// IsStaff - ветеринар или администратор
func (c Caller) IsStaff() bool {
	return c.Role == RoleVeterinarian || c.Role == RoleAdmin
}

// Channel - канал доставки уведомлений
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelPush    Channel = "push"
	ChannelWebhook Channel = "webhook"
)

// Channels - все поддерживаемые каналы в порядке опроса при рассылке
var Channels = []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelWebhook}

func (c Channel) Valid() bool {
	return slices.Contains(Channels, c)
}

// Recipient - пользователь из справочника, которому отправляется уведомление
type Recipient struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	DeviceToken string    `json:"-"`
}

// RecipientQuery - критерии выбора получателей для рассылки по региону
type RecipientQuery struct {
	State         string
	District      string
	Channel       Channel
	ExcludeUserID uuid.UUID
}
