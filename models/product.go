package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品圖片大小上限(bytes)
const MaxPhotoSize = 1000000

//金額在JSON中輸出為數字
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:191;uniqueIndex;not null" json:"name"`
	Slug        string          `gorm:"size:191;index;not null" json:"slug"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	CategoryID  uint            `gorm:"index;not null" json:"categoryId"`
	Category    *Category       `json:"category,omitempty"`
	PhotoData   []byte          `json:"-"`
	PhotoType   string          `gorm:"size:100" json:"-"`
	Shipping    bool            `gorm:"not null;default:false" json:"shipping"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// 與商品存在同一筆資料的圖片
type Photo struct {
	Data        []byte
	ContentType string
}
