package dto

type AddContentRequest struct {
	Content   string `json:"content" validate:"required"`
	SourceURL string `json:"source_url" validate:"omitempty,url"`
}

type ReplaceContentRequest struct {
	RowIds     []int64 `json:"row_ids" validate:"required,min=1"`
	NewContent string  `json:"new_content" validate:"required"`
}

type DeleteContentRequest struct {
	RowIds []int64 `json:"row_ids" validate:"required,min=1"`
}

type MutationResponse struct {
	Action     string  `json:"action"`
	ChangedIds []int64 `json:"changed_ids"`
}

// PublishEmbedContentMessage is the payload carried on the embedding topic.
// The consumer re-reads the record, so only the id travels.
type PublishEmbedContentMessage struct {
	RecordId int64 `json:"record_id"`
}
