package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront/config"
)

var (
	configFile string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront - 電商網站後端API",
		RunE:          runServe, //預設啟動伺服器
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "設定檔路徑")
}

// Execute 執行指令，錯誤會輸出到stderr
func Execute() error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
