package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// 訂單狀態由管理員自由設定，以下為後台提供的選項，其他值也接受
type OrderStatus string

const (
	OrderNotProcessed OrderStatus = "Not Process"
	OrderProcessing   OrderStatus = "Processing"
	OrderShipped      OrderStatus = "Shipped"
	OrderDelivered    OrderStatus = "Delivered"
	OrderCancelled    OrderStatus = "Cancelled"
)

// 金流回傳的交易結果，Raw保留原始資料
type PaymentResult struct {
	TransactionID string          `json:"transactionId"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	Success       bool            `json:"success"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

type Order struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Items     []OrderItem   `gorm:"foreignKey:OrderID" json:"products"`
	Payment   PaymentResult `gorm:"serializer:json;type:text;not null" json:"payment"`
	BuyerID   uint          `gorm:"index;not null" json:"buyerId"`
	Buyer     *User         `json:"buyer,omitempty"`
	Status    OrderStatus   `gorm:"size:64;not null" json:"status"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// 購買當下的購物車項目，商品已刪除時Product為nil
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   uint            `gorm:"index;not null" json:"-"`
	ProductID uint            `gorm:"index" json:"productId"`
	Product   *Product        `json:"product,omitempty"`
	Name      string          `gorm:"size:191" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"qty"`
}

// 結帳時前端送出的購物車項目
type CartItem struct {
	ProductID uint            `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"qty"`
}

func (c CartItem) Subtotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
