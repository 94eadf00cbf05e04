package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/recommendation-console/internal/domain"
	apperrors "github.com/spec-kit/recommendation-console/pkg/util"
)

const itemsQuery = `
  query GetItems {
    items {
      id
      name
      category
      description
    }
  }
`

const generateRecommendationsMutation = `
  mutation GenerateRecommendations($preferences: String!) {
    generateRecommendations(preferences: $preferences) {
      id
      name
      category
      description
    }
  }
`

// CatalogService reads items and requests recommendations over GraphQL.
type CatalogService struct {
	gql    *graphqlClient
	logger *zap.Logger
}

// NewCatalogService builds the service. A nil client uses http.DefaultClient.
func NewCatalogService(endpoint string, client *http.Client, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *CatalogService {
	if client == nil {
		client = http.DefaultClient
	}
	return &CatalogService{
		gql:    newGraphQLClient(endpoint, client, timeout, tokens),
		logger: logger,
	}
}

// Items lists every catalog item.
func (s *CatalogService) Items(ctx context.Context) ([]domain.Item, error) {
	var data struct {
		Items []domain.Item `json:"items"`
	}
	if err := s.gql.do(ctx, itemsQuery, nil, &data); err != nil {
		s.logger.Warn("items query failed", zap.Error(err))
		return nil, err
	}
	return data.Items, nil
}

// GenerateRecommendations asks the backend for items matching preferences.
func (s *CatalogService) GenerateRecommendations(ctx context.Context, preferences string) ([]domain.Item, error) {
	if strings.TrimSpace(preferences) == "" {
		return nil, apperrors.NewValidationError("Please enter your preferences.", nil)
	}
	var data struct {
		GenerateRecommendations []domain.Item `json:"generateRecommendations"`
	}
	vars := map[string]any{"preferences": preferences}
	if err := s.gql.do(ctx, generateRecommendationsMutation, vars, &data); err != nil {
		s.logger.Warn("generateRecommendations failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("recommendations generated", zap.Int("count", len(data.GenerateRecommendations)))
	return data.GenerateRecommendations, nil
}
