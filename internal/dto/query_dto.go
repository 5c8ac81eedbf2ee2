package dto

import "github.com/google/uuid"

type QueryRequest struct {
	SessionId *uuid.UUID `json:"session_id" validate:"omitempty"`
	Query     string     `json:"query" validate:"required"`
}

type RetrievedRowResponse struct {
	Id      int64  `json:"id"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

type QueryResponse struct {
	SessionId     uuid.UUID              `json:"session_id"`
	Intent        string                 `json:"intent"`
	Action        *string                `json:"action"`
	ChangedIds    []int64                `json:"changed_ids"`
	RetrievedRows []RetrievedRowResponse `json:"retrieved_rows"`
	NewContent    *string                `json:"new_content"`
	CallToDb      bool                   `json:"call_to_db"`
	Response      string                 `json:"response"`
}

type ConversationMessageResponse struct {
	Id        uuid.UUID              `json:"id"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

type HistoryResponse struct {
	SessionId uuid.UUID                     `json:"session_id"`
	Messages  []ConversationMessageResponse `json:"messages"`
}
