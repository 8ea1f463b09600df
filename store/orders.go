package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/models"
)

type Orders struct {
	db *gorm.DB
}

func NewOrders(db *gorm.DB) *Orders {
	return &Orders{db: db}
}

// 新增訂單及訂單項目，Status未設定時為Not Process
func (s *Orders) Create(ctx context.Context, order *models.Order) error {
	if order.Status == "" {
		order.Status = models.OrderNotProcessed
	}
	err := s.db.WithContext(ctx).Create(order).Error
	return translate(err, "", "")
}

// 展開商品(不含圖片)及購買者名稱
func (s *Orders) expanded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Items.Product", omitPhoto).
		Preload("Buyer", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Order("created_at desc").
		Order("id desc")
}

// 查詢使用者自己的訂單
func (s *Orders) ByBuyer(ctx context.Context, buyerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.expanded(ctx).Where("buyer_id = ?", buyerID).Find(&orders).Error
	if err != nil {
		return nil, translate(err, "", "")
	}
	return orders, nil
}

// 查詢所有訂單(管理員)
func (s *Orders) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.expanded(ctx).Find(&orders).Error
	if err != nil {
		return nil, translate(err, "", "")
	}
	return orders, nil
}

// 修改訂單狀態，只更新status欄位，付款資料不會被改動
func (s *Orders) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if strings.TrimSpace(string(status)) == "" {
		return nil, apperr.New(apperr.Validation, "status is required")
	}

	result := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return nil, translate(result.Error, "", "")
	}
	if result.RowsAffected == 0 {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}

	var order models.Order
	err := s.expanded(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "order not found", "")
	}
	return &order, nil
}

// 刪除使用者的所有訂單及訂單項目，回傳刪除的訂單數量
func (s *Orders) DeleteByBuyer(ctx context.Context, buyerID uint) (int64, error) {
	db := s.db.WithContext(ctx)

	orderIDs := db.Model(&models.Order{}).Select("id").Where("buyer_id = ?", buyerID)
	err := db.Where("order_id IN (?)", orderIDs).Delete(&models.OrderItem{}).Error
	if err != nil {
		return 0, translate(err, "", "")
	}

	result := db.Where("buyer_id = ?", buyerID).Delete(&models.Order{})
	if result.Error != nil {
		return 0, translate(result.Error, "", "")
	}
	return result.RowsAffected, nil
}
