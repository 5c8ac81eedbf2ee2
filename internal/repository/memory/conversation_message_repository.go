package memory

import (
	"context"
	"sync"
	"time"

	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/repository/contract"
	"ai-docshelper-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ConversationMessageRepository is the in-memory counterpart of the durable
// session log. Append order is preserved.
type ConversationMessageRepository struct {
	mu       sync.RWMutex
	messages []*entity.ConversationMessage
}

func NewConversationMessageRepository() *ConversationMessageRepository {
	return &ConversationMessageRepository{}
}

var _ contract.ConversationMessageRepository = (*ConversationMessageRepository)(nil)

func (r *ConversationMessageRepository) Create(ctx context.Context, message *entity.ConversationMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	clone := *message
	r.messages = append(r.messages, &clone)
	return nil
}

func (r *ConversationMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.ConversationMessage
	for _, msg := range r.messages {
		if matchConversationSpecs(msg, specs) {
			clone := *msg
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *ConversationMessageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *ConversationMessageRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.messages[:0]
	for _, msg := range r.messages {
		if msg.SessionId != sessionId {
			kept = append(kept, msg)
		}
	}
	r.messages = kept
	return nil
}

func matchConversationSpecs(msg *entity.ConversationMessage, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.BySessionID:
			if msg.SessionId != s.SessionID {
				return false
			}
		case specification.ByRole:
			if msg.Role != s.Role {
				return false
			}
		}
	}
	return true
}
