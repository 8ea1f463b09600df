package middleware

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/auth"
)

const (
	userIDKey = "UserID"
	claimsKey = "Claims"
)

// 解析Authorization的Token，合法則將使用者存入context，否則以未登入身分繼續
func AuthMiddleware(tokens *auth.Tokens, revocations *auth.Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if token == "" {
			c.Next()
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			log.Printf("無法驗證Token: %v\n", err)
			c.Next()
			return
		}

		//Redis無法連線時視為未登入
		revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Printf("無法檢查Token是否已登出: %v\n", err)
			c.Next()
			return
		}
		if revoked {
			c.Next()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// 取得已登入的使用者ID
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func Claims(c *gin.Context) (auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := v.(auth.Claims)
	return claims, ok
}
