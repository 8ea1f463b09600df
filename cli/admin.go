package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/auth"
	"storefront/config"
	"storefront/models"
	"storefront/store"
)

type adminInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Answer   string
}

var admin adminInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "建立管理員帳戶",
	Long: `建立管理員帳戶，API註冊只會建立一般使用者。

Examples:
  storefront create-admin --name Admin --email admin@example.com --password secret --answer blue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := config.SetupDatabase(cfg)
		if err != nil {
			return err
		}
		defer func() {
			dbInstance, _ := db.DB()
			_ = dbInstance.Close()
		}()
		if err := config.Migrate(db); err != nil {
			return err
		}

		user, err := createAdmin(cmd.Context(), db, auth.NewPasswords(cfg.Auth.BcryptCost), admin)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已建立管理員 %s (id=%d)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	flags := createAdminCmd.Flags()
	flags.StringVar(&admin.Name, "name", "", "名稱")
	flags.StringVar(&admin.Email, "email", "", "Email")
	flags.StringVar(&admin.Password, "password", "", "密碼")
	flags.StringVar(&admin.Phone, "phone", "-", "電話")
	flags.StringVar(&admin.Address, "address", "-", "地址")
	flags.StringVar(&admin.Answer, "answer", "", "忘記密碼的安全問題答案")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	_ = createAdminCmd.MarkFlagRequired("answer")
}

func createAdmin(ctx context.Context, db *gorm.DB, passwords *auth.Passwords, in adminInput) (*models.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Answer == "" {
		return nil, apperr.New(apperr.Validation, "name, email and answer are required")
	}

	hashedPassword, err := passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: hashedPassword,
		Phone:    in.Phone,
		Address:  models.Address{Street: in.Address},
		Answer:   in.Answer,
		Role:     models.RoleAdmin,
	}
	if err := store.NewUsers(db).Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
