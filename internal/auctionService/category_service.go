package auction

import (
	"fmt"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/authz"
	"pacomprar/internal/models"
)

// CreateCategory stores a new category. Admin only.
func (s *Service) CreateCategory(caller authz.Caller, name string) (models.Category, error) {
	if err := requireWrite(authz.AdminOrReadOnly, caller, authz.Resource{}); err != nil {
		return models.Category{}, err
	}
	if name == "" {
		return models.Category{}, fmt.Errorf("service: %w - missing category name", auctionerrors.ErrInvalidInput)
	}
	cat := models.Category{Name: name}
	if err := s.repo.CreateCategory(&cat); err != nil {
		return models.Category{}, fmt.Errorf("service: create category: %w", err)
	}
	return cat, nil
}

// GetCategory fetches a category by id.
func (s *Service) GetCategory(id uint) (models.Category, error) {
	cat, err := s.repo.GetCategoryByID(id)
	if err != nil {
		return models.Category{}, fmt.Errorf("service: get category %d: %w", id, err)
	}
	return cat, nil
}

// ListCategories returns all categories in ascending id order.
func (s *Service) ListCategories() ([]models.Category, error) {
	cats, err := s.repo.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("service: list categories: %w", err)
	}
	return cats, nil
}

// UpdateCategory renames a category. Admin only.
func (s *Service) UpdateCategory(caller authz.Caller, id uint, name string) (models.Category, error) {
	if err := requireWrite(authz.AdminOrReadOnly, caller, authz.Resource{}); err != nil {
		return models.Category{}, err
	}
	if name == "" {
		return models.Category{}, fmt.Errorf("service: %w - missing category name", auctionerrors.ErrInvalidInput)
	}
	cat, err := s.GetCategory(id)
	if err != nil {
		return models.Category{}, err
	}
	cat.Name = name
	if err := s.repo.UpdateCategory(&cat); err != nil {
		return models.Category{}, fmt.Errorf("service: update category %d: %w", id, err)
	}
	return cat, nil
}

// DeleteCategory removes a category and, through the store, every auction
// under it along with their bids, ratings and comments. Admin only.
func (s *Service) DeleteCategory(caller authz.Caller, id uint) error {
	if err := requireWrite(authz.AdminOrReadOnly, caller, authz.Resource{}); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(id); err != nil {
		return fmt.Errorf("service: delete category %d: %w", id, err)
	}
	return nil
}
