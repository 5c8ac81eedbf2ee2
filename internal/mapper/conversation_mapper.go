package mapper

import (
	"encoding/json"

	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/model"

	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToModel(e *entity.ConversationMessage) *model.ConversationMessage {
	msg := &model.ConversationMessage{
		Id:        e.Id,
		SessionId: e.SessionId,
		Role:      e.Role,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
	if e.Metadata != nil {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			msg.Metadata = datatypes.JSON(raw)
		}
	}
	return msg
}

func (m *ConversationMapper) ToEntity(msg *model.ConversationMessage) *entity.ConversationMessage {
	e := &entity.ConversationMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	if len(msg.Metadata) > 0 {
		var meta map[string]interface{}
		if err := json.Unmarshal(msg.Metadata, &meta); err == nil {
			e.Metadata = meta
		}
	}
	return e
}
