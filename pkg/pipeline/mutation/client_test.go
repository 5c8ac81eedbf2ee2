package mutation

import (
	"context"
	"testing"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/memory"
	"ai-docshelper-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T) (*Client, *memory.Factory) {
	t.Helper()
	factory := memory.NewFactory()
	client := NewClient(factory, nil, "embed.content", nil, logger.NewNopLogger())
	return client, factory
}

func seedRecords(t *testing.T, factory *memory.Factory, contents ...string) []int64 {
	t.Helper()
	ctx := context.Background()
	ids := make([]int64, len(contents))
	for i, content := range contents {
		rec := &entity.ContentRecord{Content: content}
		assert.NoError(t, factory.ContentRepo().Create(ctx, rec))
		ids[i] = rec.Id
	}
	return ids
}

func TestApplyAdd(t *testing.T) {
	client, factory := newTestClient(t)
	ctx := context.Background()

	content := "new documentation entry"
	changed, err := client.Apply(ctx, constant.ActionAdd, nil, &content)
	assert.NoError(t, err)
	assert.Len(t, changed, 1)

	stored, err := factory.ContentRepo().FindOne(ctx, specification.ByRecordID{ID: changed[0]})
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Equal(t, content, stored.Content)
	// embedding arrives asynchronously, the fresh row has none
	assert.Nil(t, stored.Embedding)
}

func TestApplyAddWithoutContent(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Apply(context.Background(), constant.ActionAdd, nil, nil)
	var failed *FailedError
	assert.ErrorAs(t, err, &failed)
	assert.Equal(t, constant.ActionAdd, failed.Action)
}

func TestApplyReplaceTargetsFirstIdOnly(t *testing.T) {
	client, factory := newTestClient(t)
	ctx := context.Background()
	ids := seedRecords(t, factory, "first row", "second row")

	newContent := "rewritten row"
	changed, err := client.Apply(ctx, constant.ActionReplace, ids, &newContent)
	assert.NoError(t, err)
	assert.Equal(t, []int64{ids[0]}, changed)

	first, _ := factory.ContentRepo().FindOne(ctx, specification.ByRecordID{ID: ids[0]})
	second, _ := factory.ContentRepo().FindOne(ctx, specification.ByRecordID{ID: ids[1]})
	assert.Equal(t, "rewritten row", first.Content)
	assert.Equal(t, "second row", second.Content)
}

func TestApplyReplaceWithNoTargets(t *testing.T) {
	client, _ := newTestClient(t)

	newContent := "anything"
	_, err := client.Apply(context.Background(), constant.ActionReplace, nil, &newContent)
	assert.ErrorIs(t, err, ErrNoTargetRecords)
}

func TestApplyDeleteRemovesAllTargets(t *testing.T) {
	client, factory := newTestClient(t)
	ctx := context.Background()
	ids := seedRecords(t, factory, "doomed one", "doomed two", "survivor")

	changed, err := client.Apply(ctx, constant.ActionDelete, ids[:2], nil)
	assert.NoError(t, err)
	assert.ElementsMatch(t, ids[:2], changed)

	remaining, err := factory.ContentRepo().Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), remaining)
}

func TestApplyDeleteAllIdsMissing(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Apply(context.Background(), constant.ActionDelete, []int64{404, 405}, nil)
	assert.ErrorIs(t, err, ErrNoTargetRecords)
}

func TestApplyUnsupportedAction(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Apply(context.Background(), "merge", nil, nil)
	var failed *FailedError
	assert.ErrorAs(t, err, &failed)
}
