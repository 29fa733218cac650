package service

import (
	"context"

	"branching-chat-be/internal/dto"
	"branching-chat-be/internal/repository/unitofwork"
	"branching-chat-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

const defaultSearchLimit = 10

type ISearchService interface {
	// Search finds the user's conversations whose messages are semantically
	// closest to the query.
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchConversationsRequest) ([]*dto.SearchConversationsResponse, error)
}

type searchService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewSearchService(uowFactory unitofwork.RepositoryFactory, embeddingProvider embedding.EmbeddingProvider) ISearchService {
	return &searchService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (s *searchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchConversationsRequest) ([]*dto.SearchConversationsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	embedded, err := s.embeddingProvider.Generate(req.Query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	query := pgvector.NewVector(embedded.Embedding.Values)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	hits, err := uow.MessageEmbeddingRepository().SearchByUser(ctx, userId, query, limit)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.SearchConversationsResponse, len(hits))
	for i, hit := range hits {
		result[i] = &dto.SearchConversationsResponse{
			ConversationId: hit.ConversationId,
			MessageId:      hit.MessageId,
			Document:       hit.Document,
		}
	}
	return result, nil
}
