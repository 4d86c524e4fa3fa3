package service

import (
	"context"
	"time"

	"github.com/docsentry/docsentry/internal/domain"
	"github.com/docsentry/docsentry/internal/pagination"
	"github.com/google/uuid"
)

// PostRepositoryInterface defines the repository interface for post persistence
type PostRepositoryInterface interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context, afterID string, afterCreated time.Time, limit int) ([]*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// PostService handles business logic for posts
type PostService struct {
	repo    PostRepositoryInterface
	uuidGen UUIDGenerator
	now     func() time.Time
}

// NewPostService creates a new PostService instance
func NewPostService(repo PostRepositoryInterface) *PostService {
	return &PostService{
		repo:    repo,
		uuidGen: &DefaultUUIDGenerator{},
		now:     time.Now,
	}
}

// NewPostServiceWithClock creates a PostService with a custom clock and UUID
// generator (for testing).
func NewPostServiceWithClock(repo PostRepositoryInterface, uuidGen UUIDGenerator, now func() time.Time) *PostService {
	return &PostService{
		repo:    repo,
		uuidGen: uuidGen,
		now:     now,
	}
}

// CreatePostInput represents the input for creating a post
type CreatePostInput struct {
	Title   string
	Content string
	Author  string
}

// UpdatePostInput represents the input for updating a post
type UpdatePostInput struct {
	PostID  string
	Title   string
	Content string
	Author  string
}

// ListPostsInput represents the input for listing posts with pagination
type ListPostsInput struct {
	Cursor string
	Limit  int
}

// ListPostsOutput is a page of posts
type ListPostsOutput struct {
	Posts      []*domain.Post
	NextCursor string
	HasMore    bool
}

// Create validates and stores a new, unpublished post.
func (s *PostService) Create(ctx context.Context, input CreatePostInput) (*domain.Post, error) {
	post := domain.NewPost(s.uuidGen.NewString(), input.Title, input.Content, input.Author, s.now().UTC())

	if err := domain.ValidatePost(post); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to create post", err)
	}
	return post, nil
}

// GetByID fetches a post.
func (s *PostService) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns posts newest first, with cursor pagination.
func (s *PostService) List(ctx context.Context, input ListPostsInput) (*ListPostsOutput, error) {
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	var afterID string
	var afterCreated time.Time
	if cursor != nil {
		afterID = cursor.LastID
		afterCreated = cursor.Timestamp
	}

	posts, err := s.repo.List(ctx, afterID, afterCreated, limit)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to list posts", err)
	}

	next := pagination.CreateNextCursor(posts, limit,
		func(p *domain.Post) string { return p.ID },
		func(p *domain.Post) time.Time { return p.CreatedAt },
	)

	return &ListPostsOutput{
		Posts:      posts,
		NextCursor: next,
		HasMore:    next != "",
	}, nil
}

// Update validates and stores changed fields. Publication state is not
// touched here; use Publish/Unpublish.
func (s *PostService) Update(ctx context.Context, input UpdatePostInput) (*domain.Post, error) {
	post, err := s.repo.GetByID(ctx, input.PostID)
	if err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Content = input.Content
	post.Author = input.Author
	post.UpdatedAt = s.now().UTC()

	if err := domain.ValidatePost(post); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Publish stamps the post as published now. Republishing keeps the
// original timestamp.
func (s *PostService) Publish(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Publish(s.now())

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Unpublish clears the publication timestamp.
func (s *PostService) Unpublish(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Unpublish(s.now())

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}
