package services

import (
	"context"
	"fmt"

	"linkup/pkg/cache"
	"linkup/pkg/models"
	"linkup/pkg/repository"

	"github.com/google/uuid"
)

// FeedService is the read side: reverse-chronological post listings with
// author and comment-author identity resolved at read time.
type FeedService interface {
	ListAll(ctx context.Context, limit, offset int) ([]models.Post, error)
	// ListByUser returns an empty feed, not an error, when userID is
	// malformed or owns no posts.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Post, error)
}

type feedService struct {
	repo  repository.PostRepository
	cache cache.Cache
}

func NewFeedService(repo repository.PostRepository, c cache.Cache) FeedService {
	return &feedService{repo: repo, cache: c}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *feedService) ListAll(ctx context.Context, limit, offset int) ([]models.Post, error) {
	limit, offset = clampPage(limit, offset)

	cacheKey := fmt.Sprintf("feed:all:%d:%d", limit, offset)
	var cached []models.Post
	if s.cache.Get(cacheKey, &cached) {
		return cached, nil
	}

	posts, err := s.repo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, posts, feedTTL)
	return posts, nil
}

func (s *feedService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Post, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []models.Post{}, nil
	}

	limit, offset = clampPage(limit, offset)

	cacheKey := fmt.Sprintf("feed:user:%s:%d:%d", userID, limit, offset)
	var cached []models.Post
	if s.cache.Get(cacheKey, &cached) {
		return cached, nil
	}

	posts, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, posts, feedTTL)
	return posts, nil
}
