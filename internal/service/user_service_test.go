package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todoapp/internal/cache"
	"todoapp/internal/errors"
	"todoapp/internal/model"
)

func TestUserService_GetByEmail(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "found",
			email: " A@X.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: 1, Email: "a@x.com", IsActive: true}, nil)
			},
		},
		{
			name:  "not found",
			email: "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			user, err := NewUserService(mockRepo, nil).GetByEmail(context.Background(), tt.email)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(1), user.ID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_GetByEmailStoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, stderrors.New("timeout"))

	_, err := NewUserService(mockRepo, nil).GetByEmail(context.Background(), "a@x.com")
	assert.Error(t, err)
	assert.False(t, stderrors.Is(err, errors.ErrUserNotFound))
}

func TestUserService_GetUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Email: "a@x.com"}, nil)
	mockRepo.On("FindByID", mock.Anything, uint(2)).Return(nil, gorm.ErrRecordNotFound)
	service := NewUserService(mockRepo, nil)

	user, err := service.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = service.GetUser(context.Background(), 2)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestUserService_GetByEmailCacheHit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	defer client.Close()

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{
		ID:             1,
		Name:           "A",
		Email:          "a@x.com",
		HashedPassword: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		IsActive:       true,
	}, nil).Once()
	service := NewUserService(mockRepo, client)

	first, err := service.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, first.HashedPassword)
	assert.True(t, mr.Exists("user:email:a@x.com"))

	second, err := service.GetByEmail(context.Background(), " A@X.com")
	require.NoError(t, err)
	assert.Equal(t, uint(1), second.ID)
	assert.Equal(t, "A", second.Name)
	assert.True(t, second.IsActive)
	assert.Empty(t, second.HashedPassword)
	mockRepo.AssertNumberOfCalls(t, "FindByEmail", 1)
}
