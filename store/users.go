package store

import (
	"context"

	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/models"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// 檢查Email是否重複
func (s *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).
		Error
	if err != nil {
		return false, translate(err, "", "")
	}
	return count > 0, nil
}

// 新增使用者，Password必須是已Hash的值
func (s *Users) Create(ctx context.Context, user *models.User) error {
	exists, err := s.EmailExists(ctx, user.Email)
	if err != nil {
		return err
	}
	if exists {
		return apperr.New(apperr.Conflict, "email already registered")
	}

	err = s.db.WithContext(ctx).Create(user).Error
	return translate(err, "", "email already registered")
}

func (s *Users) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "user not found", "")
	}
	return &user, nil
}

func (s *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, translate(err, "user not found", "")
	}
	return &user, nil
}

// 以Email與安全問題答案查詢使用者，兩者都需完全相符
func (s *Users) ByEmailAndAnswer(ctx context.Context, email, answer string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND answer = ?", email, answer).
		First(&user).
		Error
	if err != nil {
		return nil, translate(err, "invalid information", "")
	}
	return &user, nil
}

func (s *Users) UpdatePassword(ctx context.Context, id uint, hashed string) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password", hashed)
	if result.Error != nil {
		return translate(result.Error, "", "")
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

// 儲存使用者資料(修改個人資料)
func (s *Users) Save(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Save(user).Error
	return translate(err, "user not found", "email already registered")
}

// 查詢所有非管理員的使用者
func (s *Users) ListCustomers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("role <> ?", models.RoleAdmin).
		Order("created_at desc").
		Find(&users).
		Error
	if err != nil {
		return nil, translate(err, "", "")
	}
	return users, nil
}

// 設定使用者角色
func (s *Users) SetRole(ctx context.Context, id uint, role models.Role) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role)
	if result.Error != nil {
		return translate(result.Error, "", "")
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

// 刪除使用者並刪除其所有訂單，回傳刪除的訂單數量。
// 兩次寫入之間沒有交易，中途失敗可能留下孤兒訂單。
func (s *Users) Delete(ctx context.Context, id uint, orders *Orders) (int64, error) {
	if _, err := s.ByID(ctx, id); err != nil {
		return 0, err
	}

	err := s.db.WithContext(ctx).Delete(&models.User{}, id).Error
	if err != nil {
		return 0, translate(err, "", "")
	}

	return orders.DeleteByBuyer(ctx, id)
}
