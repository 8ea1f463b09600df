package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/apperr"
	"storefront/auth"
	"storefront/middleware"
	"storefront/models"
	"storefront/store"
)

// 註冊使用者帳戶
func RegisterHandler(c *gin.Context, users *store.Users, passwords *auth.Passwords, tokens *auth.Tokens) {
	var registerReq struct {
		Name     string         `json:"name" binding:"required"`
		Email    string         `json:"email" binding:"required,email"`
		Password string         `json:"password" binding:"required"`
		Phone    string         `json:"phone" binding:"required"`
		Address  models.Address `json:"address"`
		Answer   string         `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&registerReq); err != nil {
		respondBindError(c, err)
		return
	}
	if registerReq.Address.IsZero() {
		respondError(c, apperr.New(apperr.Validation, "please fill all the fields"))
		return
	}

	//密碼只在此處Hash一次
	hashedPassword, err := passwords.Hash(registerReq.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	newUser := models.User{
		Name:     strings.TrimSpace(registerReq.Name),
		Email:    strings.ToLower(strings.TrimSpace(registerReq.Email)),
		Password: hashedPassword,
		Phone:    registerReq.Phone,
		Address:  registerReq.Address,
		Answer:   registerReq.Answer,
		Role:     models.RoleCustomer,
	}
	if err := users.Create(c.Request.Context(), &newUser); err != nil {
		respondError(c, err)
		return
	}

	token, _, err := tokens.Issue(newUser.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "user registered successfully",
		"user":    newUser,
		"token":   token,
	})
}

func LoginHandler(c *gin.Context, users *store.Users, passwords *auth.Passwords, tokens *auth.Tokens) {
	var loginReq struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := users.ByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(loginReq.Email)))
	if err != nil {
		respondError(c, err)
		return
	}

	if !passwords.Check(loginReq.Password, user.Password) {
		respondError(c, apperr.New(apperr.Unauthorized, "invalid credentials"))
		return
	}

	token, _, err := tokens.Issue(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "login successfully",
		"user":    user,
		"token":   token,
	})
}

// 以Email及安全問題答案重設密碼
func ForgotPasswordHandler(c *gin.Context, users *store.Users, passwords *auth.Passwords) {
	var forgotReq struct {
		Email       string `json:"email" binding:"required"`
		Answer      string `json:"answer" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&forgotReq); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := users.ByEmailAndAnswer(ctx, strings.ToLower(strings.TrimSpace(forgotReq.Email)), forgotReq.Answer)
	if err != nil {
		respondError(c, err)
		return
	}

	hashedPassword, err := passwords.Hash(forgotReq.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := users.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "password reset successfully",
	})
}

// 修改使用者資料，未填寫的欄位維持原值
func UpdateProfileHandler(c *gin.Context, users *store.Users, passwords *auth.Passwords) {
	userID, _ := middleware.UserID(c)

	var profileReq struct {
		Name     *string         `json:"name"`
		Password *string         `json:"password"`
		Phone    *string         `json:"phone"`
		Address  *models.Address `json:"address"`
	}
	if err := c.ShouldBindJSON(&profileReq); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := users.ByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if profileReq.Name != nil && strings.TrimSpace(*profileReq.Name) != "" {
		user.Name = strings.TrimSpace(*profileReq.Name)
	}
	if profileReq.Phone != nil && *profileReq.Phone != "" {
		user.Phone = *profileReq.Phone
	}
	if profileReq.Address != nil && !profileReq.Address.IsZero() {
		user.Address = *profileReq.Address
	}
	//有提供密碼才重新Hash
	if profileReq.Password != nil && *profileReq.Password != "" {
		hashedPassword, err := passwords.Hash(*profileReq.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		user.Password = hashedPassword
	}

	if err := users.Save(ctx, user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "profile updated successfully",
		"updatedUser": user,
	})
}

// 登出，Token到期前都無法再使用
func LogOutHandler(c *gin.Context, revocations *auth.Revocations) {
	claims, _ := middleware.Claims(c)
	if err := revocations.Revoke(c.Request.Context(), claims); err != nil {
		respondError(c, apperr.Wrap(apperr.Internal, "logout failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "logout successfully",
	})
}

// 前端用來確認登入或admin權限
func AuthProbeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
	})
}
