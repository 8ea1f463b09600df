package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/checkout"
	"storefront/middleware"
	"storefront/models"
	"storefront/store"
)

// 查詢自己的訂單列表
func GetOrderListHandler(c *gin.Context, orders *store.Orders) {
	userID, _ := middleware.UserID(c)

	orderList, err := orders.ByBuyer(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orderList,
	})
}

// 取得付款元件使用的client token
func PaymentTokenHandler(c *gin.Context, payments *checkout.Service) {
	token, err := payments.ClientToken(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"clientToken": token,
	})
}

// 送出付款，交易成功且訂單寫入後才回應
func PaymentHandler(c *gin.Context, payments *checkout.Service) {
	userID, _ := middleware.UserID(c)

	var paymentReq struct {
		Nonce     string            `json:"nonce" binding:"required"`
		CartItems []models.CartItem `json:"cartItems" binding:"required"`
	}
	if err := c.ShouldBindJSON(&paymentReq); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := payments.Pay(c.Request.Context(), userID, paymentReq.Nonce, paymentReq.CartItems)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ok":      true,
		"order":   order,
	})
}
