package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/repository/contract"
	"ai-docshelper-be/internal/repository/specification"
)

// ContentRepository is an in-memory implementation of the content store
// contract. It backs unit tests and the ephemeral dev mode; it interprets the
// specification types it knows about instead of building SQL.
type ContentRepository struct {
	mu      sync.RWMutex
	records map[int64]*entity.ContentRecord
	nextId  int64
}

func NewContentRepository() *ContentRepository {
	return &ContentRepository{
		records: make(map[int64]*entity.ContentRecord),
		nextId:  1,
	}
}

var _ contract.ContentRepository = (*ContentRepository)(nil)

func (r *ContentRepository) Create(ctx context.Context, record *entity.ContentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.Id = r.nextId
	r.nextId++
	record.CreatedAt = time.Now()
	clone := *record
	r.records[record.Id] = &clone
	return nil
}

func (r *ContentRepository) CreateBulk(ctx context.Context, records []*entity.ContentRecord) error {
	for _, rec := range records {
		if err := r.Create(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *ContentRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[id]; ok {
		rec.Content = content
		rec.UpdatedAt = time.Now()
	}
	return nil
}

func (r *ContentRepository) SetEmbedding(ctx context.Context, id int64, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[id]; ok {
		rec.Embedding = embedding
	}
	return nil
}

func (r *ContentRepository) DeleteByIDs(ctx context.Context, ids []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted []int64
	for _, id := range ids {
		if _, ok := r.records[id]; ok {
			delete(r.records, id)
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

func (r *ContentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentRecord, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *ContentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.ContentRecord
	for _, rec := range r.records {
		if matchContentSpecs(rec, specs) {
			clone := *rec
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (r *ContentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *ContentRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ContentRecord, error) {
	if limit <= 0 {
		limit = 3
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		rec  *entity.ContentRecord
		dist float64
	}
	var candidates []scored
	for _, rec := range r.records {
		if rec.Embedding == nil {
			continue
		}
		clone := *rec
		candidates = append(candidates, scored{rec: &clone, dist: l2Distance(embedding, rec.Embedding)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]*entity.ContentRecord, len(candidates))
	for i, c := range candidates {
		out[i] = c.rec
	}
	return out, nil
}

func matchContentSpecs(rec *entity.ContentRecord, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByRecordID:
			if rec.Id != s.ID {
				return false
			}
		case specification.ByRecordIDs:
			found := false
			for _, id := range s.IDs {
				if rec.Id == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
