package middleware

import (
	"github.com/gin-gonic/gin"

	"storefront/apperr"
)

// 檢查是否有登入，沒有則中止請求
func CheckLoginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := UserID(c); !exists {
			abortWithError(c, apperr.New(apperr.Unauthorized, "please log in"))
			return
		}

		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.KindOf(err).Status(), gin.H{
		"success": false,
		"message": apperr.PublicMessage(err),
	})
}
