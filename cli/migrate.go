package cli

import (
	"log"

	"github.com/spf13/cobra"

	"storefront/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "建立或更新資料表",
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
		log.Println("migration完成")
		return nil
	},
}
