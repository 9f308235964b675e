package model

import (
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

type MessageModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id"`
	MessageID string    `gorm:"uniqueIndex:idx_messages_message_id;size:36;not null;column:message_id"`
	SessionID string    `gorm:"index:idx_messages_session_id;size:36;not null;column:session_id"`
	Sender    string    `gorm:"size:16;not null;column:sender"`
	Text      string    `gorm:"type:text;not null;column:text"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null;column:created_at"`
}

func (MessageModel) TableName() string { return "messages" }

func (m *MessageModel) ToDomain() *domain.Message {
	return &domain.Message{
		MessageID: m.MessageID,
		SessionID: m.SessionID,
		Sender:    domain.Sender(m.Sender),
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func ToMessageModel(d *domain.Message) *MessageModel {
	return &MessageModel{
		MessageID: d.MessageID,
		SessionID: d.SessionID,
		Sender:    string(d.Sender),
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
	}
}
