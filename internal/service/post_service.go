package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"inkpress/internal/cache"
	apperrors "inkpress/internal/errors"
	"inkpress/internal/model"
	"inkpress/internal/repository"
)

const (
	// RecentPostsLimit caps the number of posts returned by ListRecent.
	RecentPostsLimit = 20

	recentPostsKey = "posts:recent"
	recentPostsTTL = 30 * time.Second
)

// CoverUpload is a staged cover file. The database row is written first and
// the file only becomes visible once Commit succeeds; Discard cleans up when
// the row never made it.
type CoverUpload interface {
	Path() string
	Commit() error
	Discard() error
}

// PostService handles post creation, updates and reads.
type PostService interface {
	Create(ctx context.Context, authorID uint, title, summary, content string, cover CoverUpload) (*model.Post, error)
	Update(ctx context.Context, callerID, postID uint, title, summary, content string, cover CoverUpload) (*model.Post, error)
	Get(ctx context.Context, id uint) (*model.Post, error)
	ListRecent(ctx context.Context) ([]model.Post, error)
}

type postService struct {
	postRepo repository.PostRepository
	cache    *cache.Client
}

// NewPostService creates a new post service.
func NewPostService(postRepo repository.PostRepository, cache *cache.Client) PostService {
	return &postService{
		postRepo: postRepo,
		cache:    cache,
	}
}

// Create persists a post owned by authorID. A cover upload is mandatory.
func (s *postService) Create(ctx context.Context, authorID uint, title, summary, content string, cover CoverUpload) (*model.Post, error) {
	if cover == nil {
		return nil, apperrors.ErrNoFile
	}

	post := &model.Post{
		Title:    title,
		Summary:  summary,
		Content:  content,
		Cover:    cover.Path(),
		AuthorID: authorID,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if derr := cover.Discard(); derr != nil {
			log.Printf("discard staged cover: %v", derr)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := cover.Commit(); err != nil {
		return nil, fmt.Errorf("commit cover: %w", err)
	}

	s.invalidateRecent(ctx)
	return s.postRepo.FindByID(ctx, post.ID)
}

// Update replaces the mutable fields of a post. Only the author may update;
// the cover is replaced only when a new upload is present.
func (s *postService) Update(ctx context.Context, callerID, postID uint, title, summary, content string, cover CoverUpload) (*model.Post, error) {
	discard := func() {
		if cover == nil {
			return
		}
		if err := cover.Discard(); err != nil {
			log.Printf("discard staged cover: %v", err)
		}
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		discard()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}

	if post.AuthorID != callerID {
		discard()
		return nil, apperrors.ErrNotAuthor
	}

	post.Title = title
	post.Summary = summary
	post.Content = content
	if cover != nil {
		post.Cover = cover.Path()
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		discard()
		return nil, fmt.Errorf("update post: %w", err)
	}

	if cover != nil {
		if err := cover.Commit(); err != nil {
			return nil, fmt.Errorf("commit cover: %w", err)
		}
	}

	s.invalidateRecent(ctx)
	return s.postRepo.FindByID(ctx, post.ID)
}

// Get returns a single post with its author populated.
func (s *postService) Get(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

// ListRecent returns the newest posts, at most RecentPostsLimit, serving from
// the cache when a fresh copy is available.
func (s *postService) ListRecent(ctx context.Context) ([]model.Post, error) {
	var cached []model.Post
	if s.cache.GetJSON(ctx, recentPostsKey, &cached) {
		return cached, nil
	}

	posts, err := s.postRepo.ListRecent(ctx, RecentPostsLimit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	_ = s.cache.SetJSON(ctx, recentPostsKey, posts, recentPostsTTL)
	return posts, nil
}

func (s *postService) invalidateRecent(ctx context.Context) {
	_ = s.cache.Delete(ctx, recentPostsKey)
}
