package models

import (
	"encoding/json"
	"time"
)

type Role int

const (
	RoleCustomer Role = 0
	RoleAdmin    Role = 1
)

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "customer"
}

// 地址，舊版前端只送一行文字時存放在Street
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var line string
	if err := json.Unmarshal(data, &line); err == nil {
		*a = Address{Street: line}
		return nil
	}

	type plain Address
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Address(p)
	return nil
}

func (a Address) IsZero() bool {
	return a == Address{}
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Phone     string    `gorm:"size:32;not null" json:"phone"`
	Address   Address   `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Answer    string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"not null;default:0" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
