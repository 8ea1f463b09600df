package middleware

import (
	"log"

	"github.com/gin-gonic/gin"

	"storefront/apperr"
	"storefront/store"
)

// 檢查是否有admin權限，角色每次從資料庫讀取，沒有則中止請求
func CheckAdminPermissionMiddleware(users *store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := UserID(c)
		if !exists {
			abortWithError(c, apperr.New(apperr.Unauthorized, "please log in"))
			return
		}

		user, err := users.ByID(c.Request.Context(), userID)
		if err != nil {
			if apperr.Is(err, apperr.NotFound) {
				//Token有效但帳號已被刪除
				abortWithError(c, apperr.New(apperr.Unauthorized, "please log in"))
				return
			}
			log.Printf("無法取得使用者角色 user=%d: %v\n", userID, err)
			abortWithError(c, err)
			return
		}

		if !user.Role.IsAdmin() {
			abortWithError(c, apperr.New(apperr.Forbidden, "unauthorized access"))
			return
		}

		c.Next()
	}
}
