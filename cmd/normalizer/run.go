package main

import (
	"context"
	"fmt"
	"os"

	"catalog-normalizer/internal/core/catalog"
	"catalog-normalizer/internal/core/source"
	"catalog-normalizer/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRunCommand 單輪轉換：讀入原始目錄、正規化、寫出正規目錄
// 輸入可以是本地路徑或 http(s) URL
func newRunCommand() *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "run <input> <output>",
		Short: "Normalize a raw meal catalog document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer common.Sync()
			return runNormalize(cmd.Context(), args[0], args[1], reportPath)
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "write a secondary audit report document to this path")
	return cmd
}

func runNormalize(ctx context.Context, inputPath, outputPath, reportPath string) error {
	common.LogInfo("啟動應用",
		zap.String("version", cfg.App.Version),
		zap.String("mode", "run"),
		zap.String("input", inputPath),
		zap.String("output", outputPath),
	)

	// 讀取原始目錄（讀不到即整輪失敗）
	fetcher := source.NewFetcher(cfg.Fetch)
	data, err := fetcher.Load(ctx, inputPath)
	if err != nil {
		return err
	}

	// 解析（非法 JSON 即整輪失敗）
	raw, err := catalog.ParseRawDocument(data)
	if err != nil {
		return err
	}

	// 整輪轉換：單次確定性掃描
	reconciler := catalog.NewReconciler(cfg.Engine)
	doc, err := reconciler.Reconcile(raw)
	if err != nil {
		return err
	}

	// 寫出正規目錄（寫不出即整輪失敗）
	out, err := common.ToJSONIndent(doc)
	if err != nil {
		return fmt.Errorf("failed to encode output document: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write output document: %w", err)
	}

	// 選配的稽核報告文件
	if reportPath != "" {
		reportOut, err := common.ToJSONIndent(reconciler.Report())
		if err != nil {
			return fmt.Errorf("failed to encode report document: %w", err)
		}
		if err := os.WriteFile(reportPath, reportOut, 0644); err != nil {
			return fmt.Errorf("failed to write report document: %w", err)
		}
	}

	summary := reconciler.Report().Summary
	common.LogInfo("目錄已輸出",
		zap.String("output", outputPath),
		zap.Int("records_out", summary.RecordsOut),
		zap.Int("regions_out", summary.RegionsOut),
	)
	return nil
}
