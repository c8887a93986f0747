package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
	"github.com/ignatzorin/marketplace-backend/internal/validation"
)

// CatalogRepository описывает зависимости CatalogService от слоя хранилища.
type CatalogRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CreateSubcategory(ctx context.Context, sub *models.Subcategory) error
	GetSubcategoryByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error
	CreateService(ctx context.Context, service *models.Service) error
	GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListServicesBySubcategory(ctx context.Context, subcategoryID uuid.UUID, limit, offset int) ([]models.Service, error)
	ListServicesByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Service, error)
	ListUnapprovedServices(ctx context.Context, limit, offset int) ([]models.Service, error)
	UpdateService(ctx context.Context, service *models.Service) error
	ApproveService(ctx context.Context, id uuid.UUID) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	CreateAddOn(ctx context.Context, addon *models.AddOn) error
	ListAddOnsByService(ctx context.Context, serviceID uuid.UUID) ([]models.AddOn, error)
	DeleteAddOn(ctx context.Context, id uuid.UUID) error
}

// CatalogService управляет каталогом услуг: категории, услуги, дополнения.
type CatalogService struct {
	repo CatalogRepository
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// CreateCategory создаёт категорию (админ).
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	category := &models.Category{Name: name, Slug: slugify(name)}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories возвращает дерево категорий.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// DeleteCategory удаляет категорию (админ).
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "категория не найдена")
		}
		return err
	}
	return nil
}

// CreateSubcategory создаёт подкатегорию (админ).
func (s *CatalogService) CreateSubcategory(ctx context.Context, categoryID uuid.UUID, name string) (*models.Subcategory, error) {
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	sub := &models.Subcategory{CategoryID: categoryID, Name: name, Slug: slugify(name)}
	if err := s.repo.CreateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// DeleteSubcategory удаляет подкатегорию (админ).
func (s *CatalogService) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSubcategory(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSubcategoryNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "подкатегория не найдена")
		}
		return err
	}
	return nil
}

// CreateServiceInput содержит данные новой услуги.
type CreateServiceInput struct {
	CategoryID    uuid.UUID
	SubcategoryID uuid.UUID
	Title         string
	Description   string
	Price         float64
}

// CreateService создаёт услугу фрилансера. Услуга попадает в каталог
// только после одобрения администратором.
func (s *CatalogService) CreateService(ctx context.Context, freelancerID uuid.UUID, in CreateServiceInput) (*models.Service, error) {
	if err := validation.ValidateServiceTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateServiceDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice(in.Price); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if _, err := s.repo.GetSubcategoryByID(ctx, in.SubcategoryID); err != nil {
		if errors.Is(err, repository.ErrSubcategoryNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "подкатегория не найдена")
		}
		return nil, err
	}

	service := &models.Service{
		FreelancerID:  freelancerID,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Title:         in.Title,
		Description:   in.Description,
		Price:         in.Price,
	}
	if err := s.repo.CreateService(ctx, service); err != nil {
		return nil, err
	}
	return service, nil
}

// GetService возвращает услугу с дополнениями.
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	service, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, apperror.ErrServiceNotFound
		}
		return nil, err
	}
	return service, nil
}

// ListServices возвращает одобренные услуги подкатегории.
func (s *CatalogService) ListServices(ctx context.Context, subcategoryID uuid.UUID, limit, offset int) ([]models.Service, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListServicesBySubcategory(ctx, subcategoryID, limit, offset)
}

// ListOwnServices возвращает услуги фрилансера, включая неодобренные.
func (s *CatalogService) ListOwnServices(ctx context.Context, freelancerID uuid.UUID) ([]models.Service, error) {
	return s.repo.ListServicesByFreelancer(ctx, freelancerID)
}

// ListUnapproved возвращает очередь модерации (админ).
func (s *CatalogService) ListUnapproved(ctx context.Context, limit, offset int) ([]models.Service, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListUnapprovedServices(ctx, limit, offset)
}

// UpdateServiceInput содержит изменяемые поля услуги.
type UpdateServiceInput struct {
	Title       string
	Description string
	Price       float64
	PhotoKey    *string
}

// UpdateService обновляет услугу её владельцем.
func (s *CatalogService) UpdateService(ctx context.Context, freelancerID, serviceID uuid.UUID, in UpdateServiceInput) (*models.Service, error) {
	service, err := s.ownedService(ctx, freelancerID, serviceID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateServiceTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateServiceDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice(in.Price); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	service.Title = in.Title
	service.Description = in.Description
	service.Price = in.Price
	if in.PhotoKey != nil {
		service.PhotoKey = in.PhotoKey
	}

	if err := s.repo.UpdateService(ctx, service); err != nil {
		return nil, err
	}
	return service, nil
}

// ApproveService одобряет услугу (админ).
func (s *CatalogService) ApproveService(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.ApproveService(ctx, id); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return apperror.ErrServiceNotFound
		}
		return err
	}
	return nil
}

// DeleteService удаляет услугу её владельцем.
func (s *CatalogService) DeleteService(ctx context.Context, freelancerID, serviceID uuid.UUID) error {
	if _, err := s.ownedService(ctx, freelancerID, serviceID); err != nil {
		return err
	}
	return s.repo.DeleteService(ctx, serviceID)
}

// CreateAddOnInput содержит данные нового дополнения.
type CreateAddOnInput struct {
	Title        string
	DurationDays int
	Price        float64
}

// CreateAddOn добавляет дополнение к услуге её владельцем.
func (s *CatalogService) CreateAddOn(ctx context.Context, freelancerID, serviceID uuid.UUID, in CreateAddOnInput) (*models.AddOn, error) {
	if _, err := s.ownedService(ctx, freelancerID, serviceID); err != nil {
		return nil, err
	}

	if err := validation.ValidateAddOnTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateAddOnDuration(in.DurationDays); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice(in.Price); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	addon := &models.AddOn{
		ServiceID:    serviceID,
		Title:        in.Title,
		DurationDays: in.DurationDays,
		Price:        in.Price,
	}
	if err := s.repo.CreateAddOn(ctx, addon); err != nil {
		return nil, err
	}
	return addon, nil
}

// DeleteAddOn удаляет дополнение владельцем услуги.
func (s *CatalogService) DeleteAddOn(ctx context.Context, freelancerID, serviceID, addonID uuid.UUID) error {
	service, err := s.ownedService(ctx, freelancerID, serviceID)
	if err != nil {
		return err
	}

	for _, addon := range service.AddOns {
		if addon.ID == addonID {
			return s.repo.DeleteAddOn(ctx, addonID)
		}
	}
	return apperror.New(apperror.ErrCodeNotFound, "дополнение не найдено")
}

// ownedService возвращает услугу, если она принадлежит фрилансеру.
func (s *CatalogService) ownedService(ctx context.Context, freelancerID, serviceID uuid.UUID) (*models.Service, error) {
	service, err := s.repo.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, apperror.ErrServiceNotFound
		}
		return nil, err
	}
	if service.FreelancerID != freelancerID {
		return nil, apperror.ErrForbidden
	}
	return service, nil
}

// slugify приводит имя к виду для URL.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
