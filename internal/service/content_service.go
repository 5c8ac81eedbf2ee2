package service

import (
	"context"

	"ai-docshelper-be/internal/constant"
	"ai-docshelper-be/internal/dto"
	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/pkg/logger"
	"ai-docshelper-be/internal/repository/unitofwork"
	"ai-docshelper-be/pkg/pipeline/mutation"
)

// IContentService exposes the content-store mutations directly, for callers
// that manage records without going through the conversational pipeline.
type IContentService interface {
	Add(ctx context.Context, req *dto.AddContentRequest) (*dto.MutationResponse, error)
	Replace(ctx context.Context, req *dto.ReplaceContentRequest) (*dto.MutationResponse, error)
	Delete(ctx context.Context, req *dto.DeleteContentRequest) (*dto.MutationResponse, error)
}

type contentService struct {
	mutator    *mutation.Client
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewContentService(mutator *mutation.Client, uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IContentService {
	return &contentService{
		mutator:    mutator,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *contentService) Add(ctx context.Context, req *dto.AddContentRequest) (*dto.MutationResponse, error) {
	if req.SourceURL != "" {
		// Direct adds may carry provenance the pipeline path has no source for.
		record := &entity.ContentRecord{Content: req.Content, SourceURL: req.SourceURL}
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.ContentRepository().Create(ctx, record); err != nil {
			return nil, &mutation.FailedError{Action: constant.ActionAdd, Err: err}
		}
		s.mutator.RequestEmbedding(record.Id)
		return &dto.MutationResponse{Action: constant.ActionAdd, ChangedIds: []int64{record.Id}}, nil
	}

	changed, err := s.mutator.Apply(ctx, constant.ActionAdd, nil, &req.Content)
	if err != nil {
		return nil, err
	}
	return &dto.MutationResponse{Action: constant.ActionAdd, ChangedIds: changed}, nil
}

func (s *contentService) Replace(ctx context.Context, req *dto.ReplaceContentRequest) (*dto.MutationResponse, error) {
	changed, err := s.mutator.Apply(ctx, constant.ActionReplace, req.RowIds, &req.NewContent)
	if err != nil {
		return nil, err
	}
	return &dto.MutationResponse{Action: constant.ActionReplace, ChangedIds: changed}, nil
}

func (s *contentService) Delete(ctx context.Context, req *dto.DeleteContentRequest) (*dto.MutationResponse, error) {
	changed, err := s.mutator.Apply(ctx, constant.ActionDelete, req.RowIds, nil)
	if err != nil {
		return nil, err
	}
	return &dto.MutationResponse{Action: constant.ActionDelete, ChangedIds: changed}, nil
}
