package store

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/models"
)

const (
	LatestLimit     = 12
	DefaultPageSize = 6
)

type Products struct {
	db *gorm.DB
}

func NewProducts(db *gorm.DB) *Products {
	return &Products{db: db}
}

// ProductInput 新增或修改商品時的欄位，Price及Quantity為nil代表未填寫
type ProductInput struct {
	Name        string
	Description string
	Price       *decimal.Decimal
	Quantity    *int
	CategoryID  uint
	Shipping    bool
	Photo       *models.Photo
}

func (in ProductInput) validate(requirePhoto bool) error {
	if strings.TrimSpace(in.Name) == "" ||
		strings.TrimSpace(in.Description) == "" ||
		in.Price == nil ||
		in.Quantity == nil ||
		in.CategoryID == 0 {
		return apperr.New(apperr.Validation, "name, description, price, quantity and category are required")
	}
	if in.Price.IsNegative() {
		return apperr.New(apperr.Validation, "price must not be negative")
	}
	if *in.Quantity < 0 {
		return apperr.New(apperr.Validation, "quantity must not be negative")
	}
	if in.Photo == nil && requirePhoto {
		return apperr.New(apperr.Validation, "photo is required and should be less than 1MB")
	}
	if in.Photo != nil && len(in.Photo.Data) > models.MaxPhotoSize {
		return apperr.New(apperr.Validation, "photo is required and should be less than 1MB")
	}
	return nil
}

type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// ProductFilter 空的條件不加入查詢
type ProductFilter struct {
	CategoryIDs []uint
	Price       *PriceRange
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"currentPage"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// 計算總頁數
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func (s *Products) newestFirst(ctx context.Context) *gorm.DB {
	return omitPhoto(s.db.WithContext(ctx)).Order("created_at desc").Order("id desc")
}

// 查詢最新的12筆商品
func (s *Products) Latest(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.newestFirst(ctx).
		Preload("Category").
		Limit(LatestLimit).
		Find(&products).
		Error
	if err != nil {
		return nil, translate(err, "", "")
	}
	return products, nil
}

// 分頁查詢商品，skip = (page-1) * pageSize
func (s *Products) Page(ctx context.Context, page, pageSize int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	err = s.newestFirst(ctx).
		Preload("Category").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).
		Error
	if err != nil {
		return nil, translate(err, "", "")
	}

	return &ProductPage{
		Products:   products,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	}, nil
}

// 每頁固定6筆，最新在前
func (s *Products) List(ctx context.Context, page int) ([]models.Product, error) {
	if page < 1 {
		page = 1
	}

	var products []models.Product
	err := s.newestFirst(ctx).
		Preload("Category").
		Offset((page - 1) * DefaultPageSize).
		Limit(DefaultPageSize).
		Find(&products).
		Error
	if err != nil {
		return nil, translate(err, "", "")
	}
	return products, nil
}

func (s *Products) Count(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error
	if err != nil {
		return 0, translate(err, "", "")
	}
	return total, nil
}

// 依分類及價格區間篩選商品，兩個條件以AND結合
func (s *Products) Filter(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := s.newestFirst(ctx).Preload("Category")
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	if filter.Price != nil {
		query = query.Where("price BETWEEN ? AND ?", filter.Price.Min, filter.Price.Max)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, translate(err, "", "")
	}
	return products, nil
}

// 以名稱或描述搜尋商品，不分大小寫
func (s *Products) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"

	var products []models.Product
	err := s.newestFirst(ctx).
		Preload("Category").
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Find(&products).
		Error
	if err != nil {
		return nil, translate(err, "", "")
	}
	return products, nil
}

func (s *Products) BySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := omitPhoto(s.db.WithContext(ctx)).
		Preload("Category").
		First(&product, "slug = ?", slug).
		Error
	if err != nil {
		return nil, translate(err, "product not found", "")
	}
	return &product, nil
}

func (s *Products) ByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := omitPhoto(s.db.WithContext(ctx)).
		Preload("Category").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, translate(err, "product not found", "")
	}
	return &product, nil
}

// 查詢商品圖片
func (s *Products) Photo(ctx context.Context, id uint) (*models.Photo, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Select("id", "photo_data", "photo_type").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, translate(err, "product not found", "")
	}
	if len(product.PhotoData) == 0 {
		return nil, apperr.New(apperr.NotFound, "photo not found")
	}
	return &models.Photo{Data: product.PhotoData, ContentType: product.PhotoType}, nil
}

func (s *Products) checkCategory(ctx context.Context, id uint) error {
	exists, err := NewCategories(s.db).Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.New(apperr.Validation, "category does not exist")
	}
	return nil
}

func (s *Products) nameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).
		Error
	if err != nil {
		return false, translate(err, "", "")
	}
	return count > 0, nil
}

// 新增商品，名稱重複時回傳Conflict
func (s *Products) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)

	taken, err := s.nameTaken(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Conflict, "product already exists")
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:        name,
		Slug:        models.Slugify(name),
		Description: in.Description,
		Price:       *in.Price,
		Quantity:    *in.Quantity,
		CategoryID:  in.CategoryID,
		Shipping:    in.Shipping,
		PhotoData:   in.Photo.Data,
		PhotoType:   in.Photo.ContentType,
	}
	err = s.db.WithContext(ctx).Create(&product).Error
	if err != nil {
		return nil, translate(err, "", "product already exists")
	}

	return s.ByID(ctx, product.ID)
}

// 修改商品，有上傳圖片時才更新圖片
func (s *Products) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)

	if _, err := s.ByID(ctx, id); err != nil {
		return nil, err
	}
	taken, err := s.nameTaken(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Conflict, "product already exists")
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        name,
		"slug":        models.Slugify(name),
		"description": in.Description,
		"price":       *in.Price,
		"quantity":    *in.Quantity,
		"category_id": in.CategoryID,
		"shipping":    in.Shipping,
	}
	if in.Photo != nil {
		updates["photo_data"] = in.Photo.Data
		updates["photo_type"] = in.Photo.ContentType
	}

	err = s.db.WithContext(ctx).
		Model(&models.Product{ID: id}).
		Updates(updates).
		Error
	if err != nil {
		return nil, translate(err, "", "product already exists")
	}

	return s.ByID(ctx, id)
}

// 刪除商品，不檢查訂單是否引用此商品
func (s *Products) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return translate(result.Error, "", "")
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "product not found")
	}
	return nil
}
