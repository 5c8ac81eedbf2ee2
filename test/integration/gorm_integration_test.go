package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/repository/specification"
	"ai-docshelper-be/internal/repository/unitofwork"
	"ai-docshelper-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ContentRepository())
	assert.NotNil(t, uow.ConversationMessageRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Content record round trip", func(t *testing.T) {
		ctx := context.Background()
		record := &entity.ContentRecord{
			Content:   "integration test row " + uuid.New().String(),
			SourceURL: "https://example.com/integration",
		}
		assert.NoError(t, uow.ContentRepository().Create(ctx, record))
		assert.NotZero(t, record.Id)

		loaded, err := uow.ContentRepository().FindOne(ctx, specification.ByRecordID{ID: record.Id})
		assert.NoError(t, err)
		if assert.NotNil(t, loaded) {
			assert.Equal(t, record.Content, loaded.Content)
			assert.Nil(t, loaded.Embedding)
		}

		deleted, err := uow.ContentRepository().DeleteByIDs(ctx, []int64{record.Id})
		assert.NoError(t, err)
		assert.Equal(t, []int64{record.Id}, deleted)
	})

	t.Run("Conversation message round trip", func(t *testing.T) {
		ctx := context.Background()
		sessionId := uuid.New()

		msg := &entity.ConversationMessage{
			Id:        uuid.New(),
			SessionId: sessionId,
			Role:      "user",
			Content:   "integration hello",
			Metadata:  map[string]interface{}{"source": "integration-test"},
		}
		assert.NoError(t, uow.ConversationMessageRepository().Create(ctx, msg))

		messages, err := uow.ConversationMessageRepository().FindAll(ctx,
			specification.BySessionID{SessionID: sessionId},
		)
		assert.NoError(t, err)
		if assert.Len(t, messages, 1) {
			assert.Equal(t, "integration hello", messages[0].Content)
			assert.Equal(t, "integration-test", messages[0].Metadata["source"])
		}

		assert.NoError(t, uow.ConversationMessageRepository().DeleteBySessionId(ctx, sessionId))
	})
}
