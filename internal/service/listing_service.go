package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"estatehub/internal/domain"
	"estatehub/internal/events"
	"estatehub/internal/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

// ListingService handles property inquiries and the blog.
type ListingService struct {
	repo     domain.ListingRepository
	eventBus domain.EventPublisher
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewListingService(repo domain.ListingRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ListingService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ListingService{repo: repo, eventBus: eventBus, now: time.Now, logger: logger}
}

type InquiryInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// CreateInquiry records a prospect's question about a published property.
func (s *ListingService) CreateInquiry(ctx context.Context, propertyID int64, in InquiryInput) (*models.Inquiry, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("%w: name and message are required", domain.ErrValidation)
	}
	if !validEmail(strings.TrimSpace(in.Email)) {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}

	property, err := s.repo.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsPublished {
		return nil, fmt.Errorf("property %d: %w", propertyID, domain.ErrNotFound)
	}

	inq := &models.Inquiry{
		PropertyID: propertyID,
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Phone:      in.Phone,
		Message:    in.Message,
		Status:     models.InquiryPending,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.CreateInquiry(ctx, inq); err != nil {
		return nil, err
	}

	s.publish(events.EventInquiryCreated, events.InquiryEventPayload{
		InquiryID:     inq.ID,
		PropertyID:    property.ID,
		PropertyTitle: property.Title,
		OwnerID:       property.OwnerID,
		Name:          inq.Name,
		Email:         inq.Email,
	})
	return inq, nil
}

func canAuthor(actor models.Actor) bool {
	return actor.Role == models.RoleAdmin || actor.Role == models.RoleAgent
}

// CreateBlogPost stores a draft, or a published post when publish is set.
// Admins and agents may write posts.
func (s *ListingService) CreateBlogPost(ctx context.Context, actor models.Actor, title, content string, publish bool) (*models.BlogPost, error) {
	if !canAuthor(actor) {
		return nil, domain.ErrForbidden
	}
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", domain.ErrValidation)
	}

	post := &models.BlogPost{
		Title:    title,
		Slug:     slugify(title) + "-" + uuid.NewString()[:8],
		Content:  content,
		AuthorID: actor.UserID,
	}
	if publish {
		post.Publish(s.now())
	}
	if err := s.repo.CreateBlogPost(ctx, post); err != nil {
		return nil, err
	}

	if post.IsPublished {
		s.publishPost(post)
	}
	return post, nil
}

// PublishBlogPost publishes a post. Only its author or an admin may do so.
// The first publication date is kept on republish.
func (s *ListingService) PublishBlogPost(ctx context.Context, actor models.Actor, postID int64) (*models.BlogPost, error) {
	post, err := s.repo.GetBlogPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !canAuthor(actor) || !actor.CanManage(post.AuthorID) {
		return nil, domain.ErrForbidden
	}
	if post.IsPublished {
		return post, nil
	}

	post.Publish(s.now())
	if err := s.repo.UpdateBlogPost(ctx, post); err != nil {
		return nil, err
	}
	s.publishPost(post)
	return post, nil
}

// ListBlogPosts shows drafts to admins and agents, published posts to others.
func (s *ListingService) ListBlogPosts(ctx context.Context, actor models.Actor) ([]*models.BlogPost, error) {
	posts, err := s.repo.ListBlogPosts(ctx, !canAuthor(actor))
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.BlogPost{}
	}
	return posts, nil
}

func (s *ListingService) publishPost(post *models.BlogPost) {
	s.publish(events.EventBlogPublished, events.BlogEventPayload{
		PostID:   post.ID,
		Title:    post.Title,
		Slug:     post.Slug,
		AuthorID: post.AuthorID,
	})
}

func (s *ListingService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}

// slugify turns a title into a URL slug, falling back to "post" for titles
// with nothing transliterable.
func slugify(title string) string {
	if s := slug.Make(title); s != "" {
		return s
	}
	return "post"
}
