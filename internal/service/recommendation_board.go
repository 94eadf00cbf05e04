package service

import (
	"sync"

	"github.com/spec-kit/recommendation-console/internal/domain"
)

// RecommendationBoard holds the most recently generated recommendations.
type RecommendationBoard struct {
	mu    sync.RWMutex
	items []domain.Item
}

// NewRecommendationBoard returns an empty board.
func NewRecommendationBoard() *RecommendationBoard {
	return &RecommendationBoard{}
}

// Set replaces the board's contents.
func (b *RecommendationBoard) Set(items []domain.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append([]domain.Item(nil), items...)
}

// Clear empties the board.
func (b *RecommendationBoard) Clear() {
	b.Set(nil)
}

// Items returns a copy of the board's contents.
func (b *RecommendationBoard) Items() []domain.Item {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.Item(nil), b.items...)
}
