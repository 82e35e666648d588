package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linkup/pkg/apperr"
	"linkup/pkg/cache"
	"linkup/pkg/models"
	"linkup/pkg/repository"
)

const maxTextLen = 5000

// PostService is the mutation side of the feed: it validates input, delegates
// existence/ownership enforcement to the repository and invalidates the feed
// cache after every successful write.
type PostService interface {
	Create(ctx context.Context, ownerID, text, imageURL string) (models.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (models.LikesPayload, error)
	AddComment(ctx context.Context, postID, userID, text string) (models.Comment, error)
	EditText(ctx context.Context, postID, requesterID, newText string) (models.Post, error)
	Delete(ctx context.Context, postID, requesterID string) error
}

type postService struct {
	repo  repository.PostRepository
	cache cache.Cache
}

func NewPostService(repo repository.PostRepository, c cache.Cache) PostService {
	return &postService{repo: repo, cache: c}
}

func (s *postService) Create(ctx context.Context, ownerID, text, imageURL string) (models.Post, error) {
	text = strings.TrimSpace(text)
	imageURL = strings.TrimSpace(imageURL)

	if text == "" && imageURL == "" {
		return models.Post{}, apperr.Validationf("a post needs text or an image")
	}
	if len(text) > maxTextLen {
		return models.Post{}, apperr.Validationf("text too long (max %d chars)", maxTextLen)
	}

	p, err := s.repo.Create(ctx, ownerID, text, imageURL)
	if err != nil {
		return models.Post{}, err
	}

	s.invalidateFeeds(ownerID)
	return p, nil
}

func (s *postService) ToggleLike(ctx context.Context, postID, userID string) (models.LikesPayload, error) {
	likes, err := s.repo.ToggleLike(ctx, postID, userID)
	if err != nil {
		return models.LikesPayload{}, err
	}

	s.cache.DelPattern("feed:*")
	return models.LikesPayload{PostID: postID, Likes: likes}, nil
}

func (s *postService) AddComment(ctx context.Context, postID, userID, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, apperr.Validationf("comment text cannot be empty")
	}
	if len(text) > maxTextLen {
		return models.Comment{}, apperr.Validationf("text too long (max %d chars)", maxTextLen)
	}

	c, err := s.repo.AddComment(ctx, postID, userID, text)
	if err != nil {
		return models.Comment{}, err
	}

	s.cache.DelPattern("feed:*")
	return c, nil
}

func (s *postService) EditText(ctx context.Context, postID, requesterID, newText string) (models.Post, error) {
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return models.Post{}, apperr.Validationf("text cannot be empty")
	}
	if len(newText) > maxTextLen {
		return models.Post{}, apperr.Validationf("text too long (max %d chars)", maxTextLen)
	}

	p, err := s.repo.UpdateText(ctx, postID, requesterID, newText)
	if err != nil {
		return models.Post{}, err
	}

	s.invalidateFeeds(requesterID)
	return p, nil
}

func (s *postService) Delete(ctx context.Context, postID, requesterID string) error {
	if err := s.repo.Delete(ctx, postID, requesterID); err != nil {
		return err
	}

	s.invalidateFeeds(requesterID)
	return nil
}

func (s *postService) invalidateFeeds(ownerID string) {
	s.cache.DelPattern("feed:all:*")
	s.cache.DelPattern(fmt.Sprintf("feed:user:%s:*", ownerID))
}

// feedTTL keeps cached pages fresh enough that likes/comments from other
// users show up on the next poll.
const feedTTL = 15 * time.Second
