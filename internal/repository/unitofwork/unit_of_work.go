package unitofwork

import (
	"context"

	"ai-docshelper-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ContentRepository() contract.ContentRepository
	ConversationMessageRepository() contract.ConversationMessageRepository
}
