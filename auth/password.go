package auth

import (
	"golang.org/x/crypto/bcrypt"

	"storefront/apperr"
)

const DefaultCost = 12

type Passwords struct {
	cost int
}

func NewPasswords(cost int) *Passwords {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Passwords{cost: cost}
}

// 將密碼Hash，註冊、重設密碼及修改資料都只在這裡Hash一次
func (p *Passwords) Hash(password string) (string, error) {
	if password == "" {
		return "", apperr.New(apperr.Validation, "password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", apperr.Wrap(apperr.Validation, "password cannot be hashed", err)
	}
	return string(hashed), nil
}

// 檢查密碼是否正確
func (p *Passwords) Check(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
