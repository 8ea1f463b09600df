package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/apperr"
	"storefront/cache"
	"storefront/models"
	"storefront/store"
)

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.Validation, "invalid "+name)
	}
	return uint(id), nil
}

// 查詢使用者列表(不含管理員)
func GetUserListHandler(c *gin.Context, users *store.Users) {
	userList, err := users.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   userList,
	})
}

// 刪除使用者及其所有訂單
func DeleteUserHandler(c *gin.Context, users *store.Users, orders *store.Orders) {
	userID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	deleted, err := users.Delete(c.Request.Context(), userID, orders)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("刪除使用者%d及%d筆訂單\n", userID, deleted)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "user deleted successfully",
		"deletedOrders": deleted,
	})
}

// 查詢所有訂單
func GetAllOrdersHandler(c *gin.Context, orders *store.Orders) {
	orderList, err := orders.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orderList,
	})
}

// 修改訂單狀態，不檢查狀態順序
func UpdateOrderStatusHandler(c *gin.Context, orders *store.Orders) {
	orderID, err := paramID(c, "orderId")
	if err != nil {
		respondError(c, err)
		return
	}

	var statusReq struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&statusReq); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := orders.UpdateStatus(c.Request.Context(), orderID, models.OrderStatus(strings.TrimSpace(statusReq.Status)))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "order updated successfully",
		"order":   order,
	})
}

// 讀取multipart表單的商品欄位，未填寫的數值欄位為nil
func bindProductForm(c *gin.Context) (store.ProductInput, error) {
	in := store.ProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}

	if v := strings.TrimSpace(c.PostForm("price")); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return in, apperr.New(apperr.Validation, "price must be a number")
		}
		in.Price = &price
	}
	if v := strings.TrimSpace(c.PostForm("quantity")); v != "" {
		quantity, err := strconv.Atoi(v)
		if err != nil {
			return in, apperr.New(apperr.Validation, "quantity must be an integer")
		}
		in.Quantity = &quantity
	}
	if v := strings.TrimSpace(c.PostForm("category")); v != "" {
		categoryID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return in, apperr.New(apperr.Validation, "invalid category")
		}
		in.CategoryID = uint(categoryID)
	}
	if v := c.PostForm("shipping"); v != "" {
		shipping, err := strconv.ParseBool(v)
		if err != nil {
			return in, apperr.New(apperr.Validation, "shipping must be true or false")
		}
		in.Shipping = shipping
	}

	file, err := c.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, nil
	case err != nil:
		return in, apperr.New(apperr.Validation, "invalid photo upload")
	}

	photo, err := readPhoto(file)
	if err != nil {
		return in, err
	}
	in.Photo = photo
	return in, nil
}

// 讀取上傳的圖片，超過1MB直接拒絕
func readPhoto(file *multipart.FileHeader) (*models.Photo, error) {
	if file.Size > models.MaxPhotoSize {
		return nil, apperr.New(apperr.Validation, "photo is required and should be less than 1MB")
	}

	f, err := file.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "read photo", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, models.MaxPhotoSize+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "read photo", err)
	}
	if len(data) > models.MaxPhotoSize {
		return nil, apperr.New(apperr.Validation, "photo is required and should be less than 1MB")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &models.Photo{Data: data, ContentType: contentType}, nil
}

// 新增商品
func CreateProductHandler(c *gin.Context, products *store.Products, productCache *cache.Products) {
	in, err := bindProductForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := products.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	productCache.Invalidate(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "product created successfully",
		"product": product,
	})
}

// 修改商品，沒有上傳圖片時保留原圖片
func UpdateProductHandler(c *gin.Context, products *store.Products, productCache *cache.Products) {
	productID, err := paramID(c, "pid")
	if err != nil {
		respondError(c, err)
		return
	}

	in, err := bindProductForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := products.Update(c.Request.Context(), productID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	productCache.Invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "product updated successfully",
		"product": product,
	})
}

func DeleteProductHandler(c *gin.Context, products *store.Products, productCache *cache.Products) {
	productID, err := paramID(c, "pid")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := products.Delete(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}
	productCache.Invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "product deleted successfully",
	})
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func CreateCategoryHandler(c *gin.Context, categories *store.Categories) {
	var categoryReq categoryRequest
	if err := c.ShouldBindJSON(&categoryReq); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := categories.Create(c.Request.Context(), categoryReq.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "category created successfully",
		"category": category,
	})
}

// 修改分類名稱，商品快取內含分類名稱所以需清除
func UpdateCategoryHandler(c *gin.Context, categories *store.Categories, productCache *cache.Products) {
	categoryID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var categoryReq categoryRequest
	if err := c.ShouldBindJSON(&categoryReq); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := categories.Update(c.Request.Context(), categoryID, categoryReq.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	productCache.Invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "category updated successfully",
		"category": category,
	})
}

func DeleteCategoryHandler(c *gin.Context, categories *store.Categories, productCache *cache.Products) {
	categoryID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := categories.Delete(c.Request.Context(), categoryID); err != nil {
		respondError(c, err)
		return
	}
	productCache.Invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "category deleted successfully",
	})
}
