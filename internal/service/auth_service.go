package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/goroutine"
	"github.com/ignatzorin/marketplace-backend/internal/logger"
	"github.com/ignatzorin/marketplace-backend/internal/mail"
	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
	"github.com/ignatzorin/marketplace-backend/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, model string, p *models.Principal) error
	GetByEmail(ctx context.Context, model, email string) (*models.Principal, error)
	GetByID(ctx context.Context, model string, id uuid.UUID) (*models.Principal, error)
	List(ctx context.Context, model string, limit, offset int) ([]models.Principal, error)
	SetActive(ctx context.Context, model string, id uuid.UUID, active bool) error
	UpdateUsername(ctx context.Context, model string, id uuid.UUID, username string) error
	UpdateFreelancerProfile(ctx context.Context, id uuid.UUID, bio, photoKey *string) error
	CreateSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, refreshToken string) error
	ListSessions(ctx context.Context, principalID uuid.UUID, model string) ([]models.Session, error)
	DeleteSessionByID(ctx context.Context, sessionID, principalID uuid.UUID) error
}

// AuthService инкапсулирует регистрацию и аутентификацию четырёх типов аккаунтов.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
	mailer       mail.Mailer
}

// RegisterInput содержит данные принципала при регистрации.
type RegisterInput struct {
	Email    string
	Password string
	Username string
	Role     string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	Principal *models.Principal
	TokenPair *TokenPair
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, tokenManager *TokenManager, mailer mail.Mailer) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
		mailer:       mailer,
	}
}

// Register создаёт аккаунт выбранного типа и выпускает токены.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta map[string]string) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	role := in.Role
	if role == "" {
		role = models.PrincipalUser
	}
	if _, ok := models.ValidPrincipalModels[role]; !ok || role == models.PrincipalAdmin {
		// Админы создаются только миграцией или другим админом.
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый тип аккаунта")
	}

	if _, err := s.repo.GetByEmail(ctx, role, in.Email); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
	} else if !errors.Is(err, repository.ErrPrincipalNotFound) {
		return nil, err
	}

	username := in.Username
	if username == "" {
		username = deriveUsername(in.Email)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	principal := &models.Principal{
		Email:        strings.ToLower(in.Email),
		Username:     username,
		PasswordHash: string(passHash),
	}

	if err := s.repo.Create(ctx, role, principal); err != nil {
		return nil, err
	}

	tokenPair, err := s.issueSession(ctx, principal, meta)
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		to := principal.Email
		name := principal.Username
		goroutine.SafeGo(func() {
			subject := "Добро пожаловать на платформу"
			body := fmt.Sprintf("Здравствуйте, %s! Ваш аккаунт создан.", name)
			if err := s.mailer.Send(context.Background(), to, subject, body); err != nil {
				logger.Log.WithField("error", err.Error()).Warn("auth service: не удалось отправить приветственное письмо")
			}
		})
	}

	return &AuthResult{Principal: principal, TokenPair: tokenPair}, nil
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta map[string]string) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	role := in.Role
	if role == "" {
		role = models.PrincipalUser
	}
	if _, ok := models.ValidPrincipalModels[role]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый тип аккаунта")
	}

	principal, err := s.repo.GetByEmail(ctx, role, in.Email)
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !principal.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	tokenPair, err := s.issueSession(ctx, principal, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Principal: principal, TokenPair: tokenPair}, nil
}

// Refresh выпускает новую пару токенов по refresh токену.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, meta map[string]string) (*TokenPair, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	principalID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "некорректный subject")
	}

	role := models.PrincipalUser
	if len(claims.Audience) > 0 {
		role = claims.Audience[0]
	}

	principal, err := s.repo.GetByID(ctx, role, principalID)
	if err != nil {
		return nil, err
	}
	if !principal.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
	}

	if err := s.repo.DeleteSession(ctx, oldToken); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, principal, meta)
}

// Logout удаляет сессию по refresh токену.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.DeleteSession(ctx, refreshToken)
}

// GetProfile возвращает принципала по идентификатору и роли.
func (s *AuthService) GetProfile(ctx context.Context, role string, id uuid.UUID) (*models.Principal, error) {
	return s.repo.GetByID(ctx, role, id)
}

// UpdateUsername меняет имя принципала.
func (s *AuthService) UpdateUsername(ctx context.Context, role string, id uuid.UUID, username string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return s.repo.UpdateUsername(ctx, role, id, username)
}

// UpdateFreelancerProfile меняет описание и фото фрилансера.
func (s *AuthService) UpdateFreelancerProfile(ctx context.Context, id uuid.UUID, bio, photoKey *string) error {
	return s.repo.UpdateFreelancerProfile(ctx, id, bio, photoKey)
}

// ListPrincipals возвращает аккаунты одного типа (админский обзор).
func (s *AuthService) ListPrincipals(ctx context.Context, role string, limit, offset int) ([]models.Principal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, role, limit, offset)
}

// SetActive блокирует или разблокирует аккаунт (админ).
func (s *AuthService) SetActive(ctx context.Context, role string, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, role, id, active)
}

// ListSessions возвращает активные сессии принципала.
func (s *AuthService) ListSessions(ctx context.Context, principalID uuid.UUID, role string) ([]models.Session, error) {
	return s.repo.ListSessions(ctx, principalID, role)
}

// DeleteSession удаляет сессию по идентификатору.
func (s *AuthService) DeleteSession(ctx context.Context, sessionID, principalID uuid.UUID) error {
	return s.repo.DeleteSessionByID(ctx, sessionID, principalID)
}

func (s *AuthService) issueSession(ctx context.Context, principal *models.Principal, meta map[string]string) (*TokenPair, error) {
	tokenPair, _, refreshExp, err := s.tokenManager.GeneratePair(principal)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		PrincipalID:    principal.ID,
		PrincipalModel: principal.Model,
		RefreshToken:   tokenPair.RefreshToken,
		ExpiresAt:      refreshExp,
	}

	if meta != nil {
		if ua, ok := meta["user_agent"]; ok {
			session.UserAgent = &ua
		}
		if ip, ok := meta["ip"]; ok {
			session.IPAddress = &ip
		}
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return tokenPair, nil
}

// deriveUsername формирует username из email.
func deriveUsername(email string) string {
	name := strings.Split(email, "@")[0]
	name = strings.NewReplacer(".", "_", "+", "_").Replace(name)
	name = strings.ToLower(name)
	if len(name) < 3 {
		name = "user_" + uuid.NewString()[:6]
	}
	return name
}
