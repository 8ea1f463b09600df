// Package store holds the gorm repositories behind the storefront API.
package store

import (
	"errors"

	"gorm.io/gorm"

	"storefront/apperr"
)

// 將gorm錯誤轉為apperr，找不到資料為NotFound，重複鍵為Conflict
func translate(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.NotFound, notFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.Conflict, conflict, err)
	default:
		return apperr.Wrap(apperr.Internal, "database error", err)
	}
}

// 查詢時排除商品圖片
func omitPhoto(db *gorm.DB) *gorm.DB {
	return db.Omit("photo_data", "photo_type")
}
