package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/marketplace-backend/internal/models"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

type PostRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create создаёт публикацию.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO posts (author_id, author_model, title, body, photo_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, post.AuthorID, post.AuthorModel, post.Title, post.Body, post.PhotoKey)
	if err := row.Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return fmt.Errorf("post repository: create: %w", err)
	}
	return nil
}

// GetByID возвращает публикацию.
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.GetContext(ctx, &post, `
		SELECT id, author_id, author_model, title, body, photo_key, created_at, updated_at
		FROM posts WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("post repository: get by id: %w", err)
	}
	return &post, nil
}

// ListFeed возвращает ленту публикаций от новых к старым.
func (r *PostRepository) ListFeed(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts, `
		SELECT id, author_id, author_model, title, body, photo_key, created_at, updated_at
		FROM posts ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("post repository: list feed: %w", err)
	}
	return posts, nil
}

// ListByAuthor возвращает публикации одного автора.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, authorModel string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts, `
		SELECT id, author_id, author_model, title, body, photo_key, created_at, updated_at
		FROM posts WHERE author_id = $1 AND author_model = $2 ORDER BY created_at DESC
	`, authorID, authorModel)
	if err != nil {
		return nil, fmt.Errorf("post repository: list by author: %w", err)
	}
	return posts, nil
}

// Delete удаляет публикацию автора; комментарии уходят каскадом.
func (r *PostRepository) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("post repository: delete: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// CreateComment добавляет комментарий к публикации.
func (r *PostRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO comments (post_id, author_id, author_model, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, comment.PostID, comment.AuthorID, comment.AuthorModel, comment.Body)
	if err := row.Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return fmt.Errorf("post repository: create comment: %w", err)
	}
	return nil
}

// ListComments возвращает комментарии публикации от старых к новым.
func (r *PostRepository) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.SelectContext(ctx, &comments, `
		SELECT id, post_id, author_id, author_model, body, created_at
		FROM comments WHERE post_id = $1 ORDER BY created_at
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("post repository: list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment удаляет комментарий его автора.
func (r *PostRepository) DeleteComment(ctx context.Context, id, authorID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("post repository: delete comment: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
