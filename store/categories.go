package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/models"
)

type Categories struct {
	db *gorm.DB
}

func NewCategories(db *gorm.DB) *Categories {
	return &Categories{db: db}
}

func (s *Categories) All(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name").Find(&categories).Error
	if err != nil {
		return nil, translate(err, "", "")
	}
	return categories, nil
}

func (s *Categories) BySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).First(&category, "slug = ?", slug).Error
	if err != nil {
		return nil, translate(err, "category not found", "")
	}
	return &category, nil
}

func (s *Categories) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, translate(err, "", "")
	}
	return count > 0, nil
}

// 新增商品分類，名稱重複時回傳Conflict
func (s *Categories) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "category name is required")
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Category{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return nil, translate(err, "", "")
	}
	if count > 0 {
		return nil, apperr.New(apperr.Conflict, "category already exists")
	}

	category := models.Category{
		Name: name,
		Slug: models.Slugify(name),
	}
	err = s.db.WithContext(ctx).Create(&category).Error
	if err != nil {
		return nil, translate(err, "", "category already exists")
	}
	return &category, nil
}

// 修改商品分類名稱並重新計算slug
func (s *Categories) Update(ctx context.Context, id uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "category name is required")
	}

	var category models.Category
	err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "category not found", "")
	}

	category.Name = name
	category.Slug = models.Slugify(name)
	err = s.db.WithContext(ctx).Save(&category).Error
	if err != nil {
		return nil, translate(err, "", "category already exists")
	}
	return &category, nil
}

// 刪除商品分類，不檢查是否仍有商品使用
func (s *Categories) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Category{}, id)
	if result.Error != nil {
		return translate(result.Error, "", "")
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "category not found")
	}
	return nil
}
