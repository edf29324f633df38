package main

import (
	"fmt"
	"os"

	"catalog-normalizer/internal/infrastructure/config"
	"catalog-normalizer/internal/pkg/common"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "normalizer",
	Short:         "Meal catalog normalization and reconciliation engine",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 載入 .env
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found")
		}

		// 載入設定
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 初始化 logger（需在載入 config 後）
		if err := common.InitLogger(cfg.LogLevel); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func main() {
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newServeCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	common.Sync()
}
