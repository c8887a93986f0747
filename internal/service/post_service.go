package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
	"github.com/ignatzorin/marketplace-backend/internal/validation"
)

// PostRepository описывает зависимости PostService от слоя хранилища.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListFeed(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, authorModel string) ([]models.Post, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id, authorID uuid.UUID) error
}

// PostService управляет лентой публикаций и комментариями.
type PostService struct {
	repo PostRepository
}

// NewPostService создаёт сервис публикаций.
func NewPostService(repo PostRepository) *PostService {
	return &PostService{repo: repo}
}

// Create создаёт публикацию.
func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, authorModel, title, body string, photoKey *string) (*models.Post, error) {
	if err := validation.ValidatePostTitle(title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePostBody(body); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	post := &models.Post{
		AuthorID:    authorID,
		AuthorModel: authorModel,
		Title:       title,
		Body:        body,
		PhotoKey:    photoKey,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Get возвращает публикацию с комментариями.
func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*models.Post, []models.Comment, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, nil, apperror.New(apperror.ErrCodeNotFound, "пост не найден")
		}
		return nil, nil, err
	}

	comments, err := s.repo.ListComments(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return post, comments, nil
}

// ListFeed возвращает ленту публикаций.
func (s *PostService) ListFeed(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListFeed(ctx, limit, offset)
}

// ListByAuthor возвращает публикации автора.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uuid.UUID, authorModel string) ([]models.Post, error) {
	return s.repo.ListByAuthor(ctx, authorID, authorModel)
}

// Delete удаляет публикацию её автором.
func (s *PostService) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, authorID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "пост не найден")
		}
		return err
	}
	return nil
}

// AddComment добавляет комментарий к публикации.
func (s *PostService) AddComment(ctx context.Context, postID, authorID uuid.UUID, authorModel, body string) (*models.Comment, error) {
	if err := validation.ValidateCommentBody(body); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "пост не найден")
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:      postID,
		AuthorID:    authorID,
		AuthorModel: authorModel,
		Body:        body,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment удаляет комментарий его автором.
func (s *PostService) DeleteComment(ctx context.Context, id, authorID uuid.UUID) error {
	if err := s.repo.DeleteComment(ctx, id, authorID); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "комментарий не найден")
		}
		return err
	}
	return nil
}
