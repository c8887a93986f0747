package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, model string, p *models.Principal) error {
	args := m.Called(ctx, model, p)
	return args.Error(0)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, model, email string) (*models.Principal, error) {
	args := m.Called(ctx, model, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, model string, id uuid.UUID) (*models.Principal, error) {
	args := m.Called(ctx, model, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *mockAuthRepo) List(ctx context.Context, model string, limit, offset int) ([]models.Principal, error) {
	args := m.Called(ctx, model, limit, offset)
	return args.Get(0).([]models.Principal), args.Error(1)
}

func (m *mockAuthRepo) SetActive(ctx context.Context, model string, id uuid.UUID, active bool) error {
	args := m.Called(ctx, model, id, active)
	return args.Error(0)
}

func (m *mockAuthRepo) UpdateUsername(ctx context.Context, model string, id uuid.UUID, username string) error {
	args := m.Called(ctx, model, id, username)
	return args.Error(0)
}

func (m *mockAuthRepo) UpdateFreelancerProfile(ctx context.Context, id uuid.UUID, bio, photoKey *string) error {
	args := m.Called(ctx, id, bio, photoKey)
	return args.Error(0)
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *mockAuthRepo) ListSessions(ctx context.Context, principalID uuid.UUID, model string) ([]models.Session, error) {
	args := m.Called(ctx, principalID, model)
	return args.Get(0).([]models.Session), args.Error(1)
}

func (m *mockAuthRepo) DeleteSessionByID(ctx context.Context, sessionID, principalID uuid.UUID) error {
	args := m.Called(ctx, sessionID, principalID)
	return args.Error(0)
}

func testTokenManager() *TokenManager {
	return NewTokenManager("access-secret-for-tests", "refresh-secret-for-tests", 15*time.Minute, 720*time.Hour)
}

func TestAuthService_Register_DefaultsToUser(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), nil)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, models.PrincipalUser, "buyer@example.com").Return(nil, repository.ErrPrincipalNotFound)
	repo.On("Create", ctx, models.PrincipalUser, mock.AnythingOfType("*models.Principal")).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "buyer@example.com",
		Password: "Str0ngPass",
	}, nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	assert.Equal(t, "buyer", result.Principal.Username)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_AdminRejected(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "root@example.com",
		Password: "Str0ngPass",
		Role:     models.PrincipalAdmin,
	}, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create")
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), nil)
	ctx := context.Background()

	existing := &models.Principal{ID: uuid.New(), Email: "taken@example.com"}
	repo.On("GetByEmail", ctx, models.PrincipalFreelancer, "taken@example.com").Return(existing, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "taken@example.com",
		Password: "Str0ngPass",
		Role:     models.PrincipalFreelancer,
	}, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "short",
	}, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "GetByEmail")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), nil)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Str0ngPass"), bcrypt.DefaultCost)
	principal := &models.Principal{
		ID:           uuid.New(),
		Email:        "buyer@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
		Model:        models.PrincipalUser,
	}
	repo.On("GetByEmail", ctx, models.PrincipalUser, "buyer@example.com").Return(principal, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "buyer@example.com", Password: "WrongPass1"}, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), nil)
	ctx := context.Background()

	principal := &models.Principal{ID: uuid.New(), Email: "blocked@example.com", IsActive: false}
	repo.On("GetByEmail", ctx, models.PrincipalUser, "blocked@example.com").Return(principal, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "blocked@example.com", Password: "Str0ngPass"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "заблокирован")
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), nil)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Str0ngPass"), bcrypt.DefaultCost)
	principal := &models.Principal{
		ID:           uuid.New(),
		Email:        "seller@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
		Model:        models.PrincipalFreelancer,
	}
	repo.On("GetByEmail", ctx, models.PrincipalFreelancer, "seller@example.com").Return(principal, nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Login(ctx, LoginInput{
		Email:    "seller@example.com",
		Password: "Str0ngPass",
		Role:     models.PrincipalFreelancer,
	}, map[string]string{"ip": "127.0.0.1"})
	assert.NoError(t, err)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_RestoresRole(t *testing.T) {
	repo := new(mockAuthRepo)
	tokens := testTokenManager()
	svc := NewAuthService(repo, tokens, nil)
	ctx := context.Background()

	principal := &models.Principal{ID: uuid.New(), IsActive: true, Model: models.PrincipalInfluencer}
	pair, _, _, err := tokens.GeneratePair(principal)
	assert.NoError(t, err)

	repo.On("GetByID", ctx, models.PrincipalInfluencer, principal.ID).Return(principal, nil)
	repo.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken, nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_GarbageToken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), nil)

	_, err := svc.Refresh(context.Background(), "not-a-jwt", nil)
	assert.Error(t, err)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
}
