package implementation

import (
	"context"
	"errors"

	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/mapper"
	"ai-docshelper-be/internal/model"
	"ai-docshelper-be/internal/repository/contract"
	"ai-docshelper-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ContentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentMapper
}

func NewContentRepository(db *gorm.DB) contract.ContentRepository {
	return &ContentRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentMapper(),
	}
}

func (r *ContentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContentRepositoryImpl) Create(ctx context.Context, record *entity.ContentRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentRepositoryImpl) CreateBulk(ctx context.Context, records []*entity.ContentRecord) error {
	models := make([]*model.ContentRecord, len(records))
	for i, rec := range records {
		models[i] = r.mapper.ToModel(rec)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*records[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ContentRepositoryImpl) UpdateContent(ctx context.Context, id int64, content string) error {
	return r.db.WithContext(ctx).
		Model(&model.ContentRecord{}).
		Where("id = ?", id).
		Update("content", content).Error
}

func (r *ContentRepositoryImpl) SetEmbedding(ctx context.Context, id int64, embedding []float32) error {
	v := pgvector.NewVector(embedding)
	return r.db.WithContext(ctx).
		Model(&model.ContentRecord{}).
		Where("id = ?", id).
		Update("embedding", &v).Error
}

func (r *ContentRepositoryImpl) DeleteByIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var existing []int64
	err := r.db.WithContext(ctx).
		Model(&model.ContentRecord{}).
		Where("id IN ?", ids).
		Pluck("id", &existing).Error
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, nil
	}

	if err := r.db.WithContext(ctx).Where("id IN ?", existing).Delete(&model.ContentRecord{}).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *ContentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentRecord, error) {
	var m model.ContentRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentRecord, error) {
	var models []*model.ContentRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ContentRecord, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ContentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ContentRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContentRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ContentRecord, error) {
	if limit <= 0 {
		limit = 3
	}
	var models []*model.ContentRecord

	// L2 distance ordering, matching the ingestion-side vector column.
	// Rows whose embedding is still pending are excluded from ranking.
	err := r.db.WithContext(ctx).
		Where("embedding IS NOT NULL").
		Order(gorm.Expr("embedding <-> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.ContentRecord, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
