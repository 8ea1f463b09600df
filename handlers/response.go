package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"storefront/apperr"
	"storefront/checkout"
	"storefront/middleware"
)

// 依錯誤種類回傳狀態碼，內部錯誤只記錄在log不回傳給前端
func respondError(c *gin.Context, err error) {
	var unrecorded *checkout.UnrecordedChargeError
	if errors.As(err, &unrecorded) {
		log.Printf("[%s] %s %s: %v\n", middleware.RequestID(c), c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":       false,
			"message":       "payment was charged but the order could not be recorded",
			"transactionId": unrecorded.TransactionID,
		})
		return
	}

	kind := apperr.KindOf(err)
	if kind == apperr.Internal || kind == apperr.Upstream {
		log.Printf("[%s] %s %s: %v\n", middleware.RequestID(c), c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(kind.Status(), gin.H{
		"success": false,
		"message": apperr.PublicMessage(err),
	})
}

// 綁定請求資料錯誤，列出驗證失敗的欄位
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "invalid request body",
		})
		return
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[jsonFieldName(fieldErr.Field())] = fieldErr.Tag()
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "please fill all the fields",
		"fields":  fields,
	})
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
