package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/apperr"
	"storefront/cache"
	"storefront/store"
)

// 查詢最新12筆商品(經由Redis快取)
func GetProductListHandler(c *gin.Context, productCache *cache.Products) {
	products, err := productCache.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"totalCount": len(products),
		"products":   products,
	})
}

// 以slug查詢單一商品
func GetProductDataHandler(c *gin.Context, products *store.Products) {
	product, err := products.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": product,
	})
}

// 回傳商品圖片的原始資料
func GetProductPhotoHandler(c *gin.Context, products *store.Products) {
	productID, err := paramID(c, "pid")
	if err != nil {
		respondError(c, err)
		return
	}

	photo, err := products.Photo(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, photo.ContentType, photo.Data)
}

// 依分類(checked)及價格區間(radio)篩選商品
func FilterProductsHandler(c *gin.Context, products *store.Products) {
	var filterReq struct {
		Checked []uint            `json:"checked"`
		Radio   []decimal.Decimal `json:"radio"`
	}
	if err := c.ShouldBindJSON(&filterReq); err != nil {
		respondBindError(c, err)
		return
	}

	filter := store.ProductFilter{CategoryIDs: filterReq.Checked}
	switch len(filterReq.Radio) {
	case 0:
	case 2:
		filter.Price = &store.PriceRange{Min: filterReq.Radio[0], Max: filterReq.Radio[1]}
	default:
		respondError(c, apperr.New(apperr.Validation, "radio must be [min, max]"))
		return
	}

	productList, err := products.Filter(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": productList,
	})
}

func CountProductsHandler(c *gin.Context, products *store.Products) {
	total, err := products.Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"totalProducts": total,
	})
}

// 查詢第page頁商品，每頁6筆
func ProductListPageHandler(c *gin.Context, products *store.Products) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := products.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": result,
	})
}

// 分頁查詢商品，參數錯誤時使用預設值
func PaginationHandler(c *gin.Context, products *store.Products) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(store.DefaultPageSize)))
	if err != nil {
		pageSize = store.DefaultPageSize
	}

	result, err := products.Page(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"products":    result.Products,
		"totalCount":  result.TotalCount,
		"currentPage": result.Page,
		"pageSize":    result.PageSize,
		"totalPages":  result.TotalPages,
	})
}

// 以名稱或描述搜尋商品
func SearchProductsHandler(c *gin.Context, products *store.Products) {
	keyword := strings.TrimSpace(c.Param("keyword"))
	if keyword == "" {
		respondError(c, apperr.New(apperr.Validation, "keyword is required"))
		return
	}

	results, err := products.Search(c.Request.Context(), keyword)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": results,
	})
}

// 查詢商品分類列表
func GetCategoryListHandler(c *gin.Context, categories *store.Categories) {
	categoryList, err := categories.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": categoryList,
	})
}

func GetCategoryHandler(c *gin.Context, categories *store.Categories) {
	category, err := categories.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"category": category,
	})
}
