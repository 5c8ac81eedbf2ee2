package conversation

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Detector flags queries that are semantically near-duplicates of an earlier
// user turn in the same session. Prior-turn embeddings are memoized per
// content hash so a long session does not re-embed the same texts on every
// request; the scan itself always covers the full current log.
type Detector struct {
	embedder embedding.EmbeddingProvider
	manager  *Manager
	memo     *cache.Cache
	logger   logger.ILogger
}

func NewDetector(embedder embedding.EmbeddingProvider, manager *Manager, log logger.ILogger) *Detector {
	return &Detector{
		embedder: embedder,
		manager:  manager,
		memo:     cache.New(1*time.Hour, 10*time.Minute),
		logger:   log,
	}
}

// IsRepeat reports whether query is semantically similar, at or above
// threshold, to any prior user message of the session. Messages whose
// embedding has zero norm are skipped rather than matched.
func (d *Detector) IsRepeat(ctx context.Context, sessionId uuid.UUID, query string, threshold float64) (bool, error) {
	messages, err := d.manager.ReadAll(ctx, sessionId)
	if err != nil {
		return false, err
	}

	var priorUserTexts []string
	for _, msg := range messages {
		if msg.Role == constant.MessageRoleUser {
			priorUserTexts = append(priorUserTexts, msg.Content)
		}
	}
	if len(priorUserTexts) == 0 {
		return false, nil
	}

	queryEmbedding, err := d.embed(query)
	if err != nil {
		return false, fmt.Errorf("embed query: %w", err)
	}

	for _, text := range priorUserTexts {
		priorEmbedding, err := d.embed(text)
		if err != nil {
			return false, fmt.Errorf("embed prior message: %w", err)
		}

		similarity, ok := embedding.CosineSimilarity(queryEmbedding, priorEmbedding)
		if !ok {
			continue
		}
		if similarity >= threshold {
			d.logger.Debug("pipeline.repeat", "Repeated query detected", map[string]interface{}{
				"session_id": sessionId.String(),
				"similarity": similarity,
			})
			return true, nil
		}
	}
	return false, nil
}

func (d *Detector) embed(text string) ([]float32, error) {
	key := contentKey(text)
	if cached, found := d.memo.Get(key); found {
		return cached.([]float32), nil
	}

	resp, err := d.embedder.Generate(text, embedding.TaskSemanticSimilarity)
	if err != nil {
		return nil, err
	}

	values := resp.Embedding.Values
	d.memo.Set(key, values, cache.DefaultExpiration)
	return values, nil
}

func contentKey(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
