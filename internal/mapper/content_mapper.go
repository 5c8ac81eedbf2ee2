package mapper

import (
	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ContentMapper struct{}

func NewContentMapper() *ContentMapper {
	return &ContentMapper{}
}

func (m *ContentMapper) ToModel(e *entity.ContentRecord) *model.ContentRecord {
	rec := &model.ContentRecord{
		Id:        e.Id,
		Content:   e.Content,
		SourceURL: e.SourceURL,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.Embedding != nil {
		v := pgvector.NewVector(e.Embedding)
		rec.Embedding = &v
	}
	return rec
}

func (m *ContentMapper) ToEntity(rec *model.ContentRecord) *entity.ContentRecord {
	e := &entity.ContentRecord{
		Id:        rec.Id,
		Content:   rec.Content,
		SourceURL: rec.SourceURL,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.Embedding != nil {
		e.Embedding = rec.Embedding.Slice()
	}
	return e
}
