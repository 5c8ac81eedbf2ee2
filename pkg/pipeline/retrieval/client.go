package retrieval

import (
	"context"
	"fmt"

	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/unitofwork"
	"ai-docshelper-be/pkg/embedding"
)

// Record is one retrieved row in the shape the synthesis and responder
// stages consume.
type Record struct {
	Id      int64  `json:"id"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Client performs semantic lookups against the content store: embed the
// query, then take the nearest rows by vector distance.
type Client struct {
	embedder   embedding.EmbeddingProvider
	uowFactory unitofwork.RepositoryFactory
	topN       int
	logger     logger.ILogger
}

func NewClient(embedder embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory, topN int, log logger.ILogger) *Client {
	return &Client{
		embedder:   embedder,
		uowFactory: uowFactory,
		topN:       topN,
		logger:     log,
	}
}

// Retrieve returns up to topN records nearest to query, nearest-first. An
// empty result is a valid outcome, not an error.
func (c *Client) Retrieve(ctx context.Context, query string) ([]Record, error) {
	resp, err := c.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed retrieval query: %w", err)
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.ContentRepository().SearchSimilar(ctx, resp.Embedding.Values, c.topN)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record{
			Id:      row.Id,
			Content: row.Content,
			URL:     row.SourceURL,
		}
	}
	c.logger.Debug("pipeline.retrieval", "Similarity search complete", map[string]interface{}{
		"rows": len(records),
	})
	return records, nil
}
