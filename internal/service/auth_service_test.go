package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hammerio/internal/auth"
	apperrors "hammerio/internal/errors"
	"hammerio/internal/model"
)

func TestAuthService_Login(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	johnny := &model.User{ID: "a4", Username: "johnnyb", Email: "hammer.io.team@gmail.com", PasswordHash: string(hashedPassword)}

	tests := []struct {
		name          string
		login         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login by username",
			login:    "johnnyb",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "johnnyb").Return(johnny, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, "a4", "johnnyb", auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:     "successful login by email",
			login:    "hammer.io.team@gmail.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "hammer.io.team@gmail.com").Return(nil, gorm.ErrRecordNotFound)
				mRepo.On("FindByEmail", mock.Anything, "hammer.io.team@gmail.com").Return(johnny, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, "a4", "johnnyb", auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:     "invalid credentials - user not found",
			login:    "nobody",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
				mRepo.On("FindByEmail", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "invalid credentials - wrong password",
			login:    "johnnyb",
			password: "wrong",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "johnnyb").Return(johnny, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), mockTokenStore)
			tokens, user, err := service.Login(context.Background(), tt.login, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, tokens)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
				assert.Equal(t, "a4", user.ID)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	tokenID, refresh, err := jwtService.GenerateRefreshToken("a4", "johnnyb")
	require.NoError(t, err)
	_, access, err := jwtService.GenerateAccessToken("a4", "johnnyb")
	require.NoError(t, err)

	tests := []struct {
		name          string
		token         string
		setupMock     func(*MockTokenStore)
		expectedError error
	}{
		{
			name:  "stored token",
			token: refresh,
			setupMock: func(m *MockTokenStore) {
				m.On("GetRefreshToken", mock.Anything, tokenID).Return("a4", "johnnyb", nil)
			},
		},
		{
			name:  "revoked token",
			token: refresh,
			setupMock: func(m *MockTokenStore) {
				m.On("GetRefreshToken", mock.Anything, tokenID).Return("", "", auth.ErrRefreshTokenNotFound)
			},
			expectedError: ErrInvalidRefreshToken,
		},
		{
			name:          "access token is not a refresh token",
			token:         access,
			setupMock:     func(m *MockTokenStore) {},
			expectedError: ErrInvalidRefreshToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockTokenStore)
			tt.setupMock(store)

			service := NewAuthService(new(MockUserRepository), jwtService, store)
			newAccess, err := service.RefreshToken(context.Background(), tt.token)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, newAccess)
			} else {
				require.NoError(t, err)
				claims, err := jwtService.ValidateAccessToken(newAccess)
				require.NoError(t, err)
				assert.Equal(t, "a4", claims.UserID)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	refreshID, refresh, err := jwtService.GenerateRefreshToken("a4", "johnnyb")
	require.NoError(t, err)
	_, access, err := jwtService.GenerateAccessToken("a4", "johnnyb")
	require.NoError(t, err)
	accessClaims, err := jwtService.ValidateAccessToken(access)
	require.NoError(t, err)

	store := new(MockTokenStore)
	store.On("DeleteRefreshToken", mock.Anything, refreshID).Return(nil)
	store.On("BlacklistAccessToken", mock.Anything, accessClaims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= auth.AccessTokenExpiry
	})).Return(nil)

	service := NewAuthService(new(MockUserRepository), jwtService, store)
	require.NoError(t, service.Logout(context.Background(), refresh, accessClaims))
	store.AssertExpectations(t)

	failing := new(MockTokenStore)
	failing.On("DeleteRefreshToken", mock.Anything, refreshID).Return(errors.New("connection refused"))
	service = NewAuthService(new(MockUserRepository), jwtService, failing)
	assert.ErrorContains(t, service.Logout(context.Background(), refresh, nil), "delete refresh token")

	assert.Equal(t, ErrInvalidRefreshToken, service.Logout(context.Background(), "garbage", nil))
}
