package contract

import (
	"context"

	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/repository/specification"
)

type ContentRepository interface {
	Create(ctx context.Context, record *entity.ContentRecord) error
	CreateBulk(ctx context.Context, records []*entity.ContentRecord) error
	UpdateContent(ctx context.Context, id int64, content string) error
	SetEmbedding(ctx context.Context, id int64, embedding []float32) error
	// DeleteByIDs returns the ids that actually existed and were removed.
	DeleteByIDs(ctx context.Context, ids []int64) ([]int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar returns up to limit records ordered nearest-first by
	// embedding distance. Ranking and tie-break belong to the storage engine.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ContentRecord, error)
}
