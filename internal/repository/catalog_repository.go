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
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubcategoryNotFound = errors.New("subcategory not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrAddOnNotFound       = errors.New("addon not found")
)

type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateCategory создаёт категорию верхнего уровня.
func (r *CatalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO categories (name, slug) VALUES ($1, $2)
		RETURNING id, created_at
	`, category.Name, category.Slug)
	if err := row.Scan(&category.ID, &category.CreatedAt); err != nil {
		return fmt.Errorf("catalog repository: create category: %w", err)
	}
	return nil
}

// ListCategories возвращает категории с вложенными подкатегориями.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.SelectContext(ctx, &categories, `
		SELECT id, name, slug, created_at FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list categories: %w", err)
	}

	for i := range categories {
		var subs []models.Subcategory
		err := r.db.SelectContext(ctx, &subs, `
			SELECT id, category_id, name, slug, created_at
			FROM subcategories WHERE category_id = $1 ORDER BY name
		`, categories[i].ID)
		if err != nil {
			continue
		}
		categories[i].Subcategories = subs
	}

	return categories, nil
}

// DeleteCategory удаляет категорию вместе с подкатегориями.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog repository: delete category: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// CreateSubcategory создаёт подкатегорию внутри категории.
func (r *CatalogRepository) CreateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO subcategories (category_id, name, slug) VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, sub.CategoryID, sub.Name, sub.Slug)
	if err := row.Scan(&sub.ID, &sub.CreatedAt); err != nil {
		return fmt.Errorf("catalog repository: create subcategory: %w", err)
	}
	return nil
}

// GetSubcategoryByID возвращает подкатегорию по идентификатору.
func (r *CatalogRepository) GetSubcategoryByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	var sub models.Subcategory
	err := r.db.GetContext(ctx, &sub, `
		SELECT id, category_id, name, slug, created_at FROM subcategories WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubcategoryNotFound
		}
		return nil, fmt.Errorf("catalog repository: get subcategory: %w", err)
	}
	return &sub, nil
}

// DeleteSubcategory удаляет подкатегорию.
func (r *CatalogRepository) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog repository: delete subcategory: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSubcategoryNotFound
	}
	return nil
}

// CreateService создаёт услугу. Услуга создаётся неодобренной.
func (r *CatalogRepository) CreateService(ctx context.Context, service *models.Service) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO services (freelancer_id, category_id, subcategory_id, title, description, price, photo_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_approved, created_at, updated_at
	`, service.FreelancerID, service.CategoryID, service.SubcategoryID,
		service.Title, service.Description, service.Price, service.PhotoKey)
	if err := row.Scan(&service.ID, &service.IsApproved, &service.CreatedAt, &service.UpdatedAt); err != nil {
		return fmt.Errorf("catalog repository: create service: %w", err)
	}
	return nil
}

// GetServiceByID возвращает услугу вместе с дополнениями.
func (r *CatalogRepository) GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := r.db.GetContext(ctx, &service, `
		SELECT id, freelancer_id, category_id, subcategory_id, title, description,
		       price, is_approved, photo_key, created_at, updated_at
		FROM services WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("catalog repository: get service: %w", err)
	}

	addons, err := r.ListAddOnsByService(ctx, id)
	if err != nil {
		return nil, err
	}
	service.AddOns = addons
	return &service, nil
}

// ListServicesBySubcategory возвращает одобренные услуги подкатегории.
func (r *CatalogRepository) ListServicesBySubcategory(ctx context.Context, subcategoryID uuid.UUID, limit, offset int) ([]models.Service, error) {
	var services []models.Service
	err := r.db.SelectContext(ctx, &services, `
		SELECT id, freelancer_id, category_id, subcategory_id, title, description,
		       price, is_approved, photo_key, created_at, updated_at
		FROM services
		WHERE subcategory_id = $1 AND is_approved = TRUE
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, subcategoryID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list services by subcategory: %w", err)
	}
	return services, nil
}

// ListServicesByFreelancer возвращает все услуги фрилансера, включая неодобренные.
func (r *CatalogRepository) ListServicesByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Service, error) {
	var services []models.Service
	err := r.db.SelectContext(ctx, &services, `
		SELECT id, freelancer_id, category_id, subcategory_id, title, description,
		       price, is_approved, photo_key, created_at, updated_at
		FROM services WHERE freelancer_id = $1 ORDER BY created_at DESC
	`, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list services by freelancer: %w", err)
	}
	return services, nil
}

// ListUnapprovedServices возвращает услуги, ожидающие одобрения администратора.
func (r *CatalogRepository) ListUnapprovedServices(ctx context.Context, limit, offset int) ([]models.Service, error) {
	var services []models.Service
	err := r.db.SelectContext(ctx, &services, `
		SELECT id, freelancer_id, category_id, subcategory_id, title, description,
		       price, is_approved, photo_key, created_at, updated_at
		FROM services WHERE is_approved = FALSE ORDER BY created_at LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list unapproved services: %w", err)
	}
	return services, nil
}

// UpdateService обновляет поля услуги её владельцем.
func (r *CatalogRepository) UpdateService(ctx context.Context, service *models.Service) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE services
		SET title = $2, description = $3, price = $4, photo_key = $5, updated_at = NOW()
		WHERE id = $1
	`, service.ID, service.Title, service.Description, service.Price, service.PhotoKey)
	if err != nil {
		return fmt.Errorf("catalog repository: update service: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// ApproveService открывает услугу для публичного каталога.
func (r *CatalogRepository) ApproveService(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE services SET is_approved = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("catalog repository: approve service: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// DeleteService удаляет услугу; дополнения удаляются каскадом.
func (r *CatalogRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog repository: delete service: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// CreateAddOn создаёт дополнение к услуге.
func (r *CatalogRepository) CreateAddOn(ctx context.Context, addon *models.AddOn) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO addons (service_id, title, duration_days, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, addon.ServiceID, addon.Title, addon.DurationDays, addon.Price)
	if err := row.Scan(&addon.ID, &addon.CreatedAt); err != nil {
		return fmt.Errorf("catalog repository: create addon: %w", err)
	}
	return nil
}

// ListAddOnsByService возвращает дополнения услуги.
func (r *CatalogRepository) ListAddOnsByService(ctx context.Context, serviceID uuid.UUID) ([]models.AddOn, error) {
	var addons []models.AddOn
	err := r.db.SelectContext(ctx, &addons, `
		SELECT id, service_id, title, duration_days, price, created_at
		FROM addons WHERE service_id = $1 ORDER BY created_at
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list addons: %w", err)
	}
	return addons, nil
}

// ResolveAddOns возвращает дополнения по списку идентификаторов.
// Если хотя бы один id не находится, возвращает ErrAddOnNotFound.
func (r *CatalogRepository) ResolveAddOns(ctx context.Context, ids []uuid.UUID) ([]models.AddOn, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, service_id, title, duration_days, price, created_at
		FROM addons WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: resolve addons: %w", err)
	}

	var addons []models.AddOn
	if err := r.db.SelectContext(ctx, &addons, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("catalog repository: resolve addons: %w", err)
	}
	if len(addons) != len(ids) {
		return nil, ErrAddOnNotFound
	}
	return addons, nil
}

// DeleteAddOn удаляет дополнение.
func (r *CatalogRepository) DeleteAddOn(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM addons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog repository: delete addon: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrAddOnNotFound
	}
	return nil
}
