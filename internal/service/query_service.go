package service

import (
	"context"
	"time"

	"ai-docshelper-be/internal/dto"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/memory"
	"ai-docshelper-be/pkg/pipeline"
	"ai-docshelper-be/pkg/pipeline/conversation"

	"github.com/google/uuid"
)

type IQueryService interface {
	HandleQuery(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error)
	GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.HistoryResponse, error)
	ClearHistory(ctx context.Context, sessionId uuid.UUID) error
}

type queryService struct {
	orchestrator *pipeline.Orchestrator
	conversation *conversation.Manager
	sessions     *memory.SessionRegistry
	logger       logger.ILogger
}

func NewQueryService(
	orchestrator *pipeline.Orchestrator,
	conv *conversation.Manager,
	sessions *memory.SessionRegistry,
	log logger.ILogger,
) IQueryService {
	return &queryService{
		orchestrator: orchestrator,
		conversation: conv,
		sessions:     sessions,
		logger:       log,
	}
}

// HandleQuery runs one query through the pipeline under the session's lock.
// A request without a session id starts a fresh session.
func (s *queryService) HandleQuery(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	sessionId := uuid.New()
	if req.SessionId != nil {
		sessionId = *req.SessionId
	}

	state := s.sessions.GetOrCreate(sessionId)
	state.Mu.Lock()
	defer state.Mu.Unlock()

	started := time.Now()
	result, err := s.orchestrator.Run(ctx, sessionId, req.Query)
	if err != nil {
		return nil, err
	}
	s.logger.Info("service.query", "Query handled", map[string]interface{}{
		"session_id":  sessionId.String(),
		"intent":      result.Intent,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	rows := make([]dto.RetrievedRowResponse, len(result.RetrievedRows))
	for i, row := range result.RetrievedRows {
		rows[i] = dto.RetrievedRowResponse{Id: row.Id, Content: row.Content, URL: row.URL}
	}
	return &dto.QueryResponse{
		SessionId:     sessionId,
		Intent:        result.Intent,
		Action:        result.Action,
		ChangedIds:    result.ChangedIds,
		RetrievedRows: rows,
		NewContent:    result.NewContent,
		CallToDb:      result.CallToDb,
		Response:      result.FinalUserResponse,
	}, nil
}

func (s *queryService) GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.HistoryResponse, error) {
	messages, err := s.conversation.ReadAll(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	res := &dto.HistoryResponse{
		SessionId: sessionId,
		Messages:  make([]dto.ConversationMessageResponse, len(messages)),
	}
	for i, msg := range messages {
		res.Messages[i] = dto.ConversationMessageResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			Metadata:  msg.Metadata,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		}
	}
	return res, nil
}

// ClearHistory empties the session log. Clearing an unknown session succeeds
// as a no-op.
func (s *queryService) ClearHistory(ctx context.Context, sessionId uuid.UUID) error {
	state := s.sessions.GetOrCreate(sessionId)
	state.Mu.Lock()
	defer state.Mu.Unlock()

	return s.conversation.Clear(ctx, sessionId)
}
