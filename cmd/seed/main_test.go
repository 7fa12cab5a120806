package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"inkpress/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockPostRepository is a mock implementation of repository.PostRepository.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) ListRecent(ctx context.Context, limit int) ([]model.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func TestSeedFixtures_FreshDatabase(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)

	for _, fixture := range fixtures {
		userRepo.On("FindByUsername", mock.Anything, fixture.Username).Return(nil, gorm.ErrRecordNotFound)
	}
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	postRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).Return(nil)

	users, posts, err := seedFixtures(context.Background(), userRepo, postRepo)

	assert.NoError(t, err)
	assert.Equal(t, len(fixtures), users)
	wantPosts := 0
	for _, fixture := range fixtures {
		wantPosts += len(fixture.Posts)
	}
	assert.Equal(t, wantPosts, posts)
	userRepo.AssertExpectations(t)
	postRepo.AssertExpectations(t)
}

func TestSeedFixtures_SecondRunIsIdempotent(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)

	for i, fixture := range fixtures {
		userRepo.On("FindByUsername", mock.Anything, fixture.Username).Return(&model.User{
			ID:       uint(i + 1),
			Username: fixture.Username,
		}, nil)
	}

	users, posts, err := seedFixtures(context.Background(), userRepo, postRepo)

	assert.NoError(t, err)
	assert.Zero(t, users)
	assert.Zero(t, posts)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	postRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
