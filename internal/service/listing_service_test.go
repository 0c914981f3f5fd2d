package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"estatehub/internal/domain"
	"estatehub/internal/events"
	"estatehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestListingService(repo domain.ListingRepository, bus domain.EventPublisher) *ListingService {
	s := NewListingService(repo, bus, nil)
	s.now = func() time.Time { return testNow }
	return s
}

func TestListingService_CreateInquiry(t *testing.T) {
	ctx := context.Background()
	published := &models.Property{ID: 1, Title: "Loft", OwnerID: 2, IsPublished: true}

	t.Run("Success", func(t *testing.T) {
		repo := new(mockListings)
		bus := new(mockEventBus)
		s := newTestListingService(repo, bus)

		repo.On("GetProperty", ctx, int64(1)).Return(published, nil)
		repo.On("CreateInquiry", ctx, mock.AnythingOfType("*models.Inquiry")).Return(nil)
		bus.On("PublishJSON", events.EventInquiryCreated, mock.MatchedBy(func(p events.InquiryEventPayload) bool {
			return p.OwnerID == 2 && p.PropertyTitle == "Loft"
		})).Return(nil)

		inq, err := s.CreateInquiry(ctx, 1, InquiryInput{Name: " Ann ", Email: "ann@example.com", Message: "Is it still available?"})
		require.NoError(t, err)
		assert.Equal(t, "Ann", inq.Name)
		assert.Equal(t, models.InquiryPending, inq.Status)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("Unpublished", func(t *testing.T) {
		repo := new(mockListings)
		s := newTestListingService(repo, nil)
		repo.On("GetProperty", ctx, int64(1)).Return(&models.Property{ID: 1}, nil)

		_, err := s.CreateInquiry(ctx, 1, InquiryInput{Name: "Ann", Email: "ann@example.com", Message: "Hi"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Invalid", func(t *testing.T) {
		s := newTestListingService(new(mockListings), nil)

		_, err := s.CreateInquiry(ctx, 1, InquiryInput{Name: "Ann", Email: "not-an-email", Message: "Hi"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = s.CreateInquiry(ctx, 1, InquiryInput{Email: "ann@example.com", Message: "Hi"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestListingService_Blog(t *testing.T) {
	ctx := context.Background()
	agent := models.Actor{UserID: 2, Role: models.RoleAgent}

	t.Run("CreateDraft", func(t *testing.T) {
		repo := new(mockListings)
		s := newTestListingService(repo, nil)
		repo.On("CreateBlogPost", ctx, mock.AnythingOfType("*models.BlogPost")).Return(nil)

		post, err := s.CreateBlogPost(ctx, agent, "Top 5 Beach Towns!", "...", false)
		require.NoError(t, err)
		assert.False(t, post.IsPublished)
		assert.Nil(t, post.PublishedDate)
		assert.True(t, strings.HasPrefix(post.Slug, "top-5-beach-towns-"), post.Slug)
	})

	t.Run("BuyerCannotWrite", func(t *testing.T) {
		s := newTestListingService(new(mockListings), nil)
		_, err := s.CreateBlogPost(ctx, models.Actor{UserID: 9, Role: models.RoleBuyer}, "t", "c", true)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("PublishKeepsFirstDate", func(t *testing.T) {
		repo := new(mockListings)
		bus := new(mockEventBus)
		s := newTestListingService(repo, bus)

		draft := &models.BlogPost{ID: 4, Title: "t", AuthorID: 2}
		repo.On("GetBlogPost", ctx, int64(4)).Return(draft, nil)
		repo.On("UpdateBlogPost", ctx, draft).Return(nil)
		bus.On("PublishJSON", events.EventBlogPublished, mock.Anything).Return(nil).Once()

		post, err := s.PublishBlogPost(ctx, agent, 4)
		require.NoError(t, err)
		require.NotNil(t, post.PublishedDate)
		assert.Equal(t, testNow, *post.PublishedDate)

		s.now = func() time.Time { return testNow.Add(48 * time.Hour) }
		post, err = s.PublishBlogPost(ctx, agent, 4)
		require.NoError(t, err)
		assert.Equal(t, testNow, *post.PublishedDate)
		repo.AssertNumberOfCalls(t, "UpdateBlogPost", 1)
		bus.AssertExpectations(t)
	})

	t.Run("OtherAgentCannotPublish", func(t *testing.T) {
		repo := new(mockListings)
		s := newTestListingService(repo, nil)
		repo.On("GetBlogPost", ctx, int64(4)).Return(&models.BlogPost{ID: 4, AuthorID: 2}, nil)

		_, err := s.PublishBlogPost(ctx, models.Actor{UserID: 3, Role: models.RoleAgent}, 4)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("ListScopesDrafts", func(t *testing.T) {
		repo := new(mockListings)
		s := newTestListingService(repo, nil)
		repo.On("ListBlogPosts", ctx, true).Return(nil, nil)
		repo.On("ListBlogPosts", ctx, false).Return([]*models.BlogPost{{ID: 1}}, nil)

		public, err := s.ListBlogPosts(ctx, models.Actor{UserID: 9, Role: models.RoleBuyer})
		require.NoError(t, err)
		assert.NotNil(t, public)
		assert.Empty(t, public)

		all, err := s.ListBlogPosts(ctx, agent)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", slugify("Hello, World!"))
	assert.Equal(t, "a-b", slugify("  a   b  "))
	assert.Equal(t, "post", slugify("!!!"))
	assert.Equal(t, "cafe-by-the-sea", slugify("Café by the Sea"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, validEmail("ann@example.com"))
	assert.False(t, validEmail(""))
	assert.False(t, validEmail("not-an-email"))
	assert.False(t, validEmail("ann@"))
}
