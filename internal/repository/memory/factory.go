package memory

import (
	"context"
	"fmt"

	"ai-docshelper-be/internal/repository/contract"
	"ai-docshelper-be/internal/repository/unitofwork"
)

// Factory satisfies unitofwork.RepositoryFactory over the in-memory
// repositories so pipeline tests run against the real orchestration code.
type Factory struct {
	content      *ContentRepository
	conversation *ConversationMessageRepository
}

func NewFactory() *Factory {
	return &Factory{
		content:      NewContentRepository(),
		conversation: NewConversationMessageRepository(),
	}
}

func (f *Factory) ContentRepo() *ContentRepository                  { return f.content }
func (f *Factory) ConversationRepo() *ConversationMessageRepository { return f.conversation }

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memoryUnitOfWork{factory: f}
}

type memoryUnitOfWork struct {
	factory *Factory
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *memoryUnitOfWork) Commit() error                   { return nil }
func (u *memoryUnitOfWork) Rollback() error {
	return fmt.Errorf("in-memory unit of work does not support rollback")
}

func (u *memoryUnitOfWork) ContentRepository() contract.ContentRepository {
	return u.factory.content
}

func (u *memoryUnitOfWork) ConversationMessageRepository() contract.ConversationMessageRepository {
	return u.factory.conversation
}
