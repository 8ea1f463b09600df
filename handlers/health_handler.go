package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 檢查資料庫及Redis連線
func HealthHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	ctx := c.Request.Context()
	status := gin.H{"database": "ok", "redis": "ok"}
	healthy := true

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status["database"] = "unavailable"
		healthy = false
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		status["redis"] = "unavailable"
		healthy = false
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"success": healthy,
		"status":  status,
	})
}
