package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"catalog-normalizer/internal/infrastructure/config"
	"catalog-normalizer/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Fetcher 目錄文件讀取器
// 輸入是本地路徑或 http(s) URL；遠端抓取走 resty，附逾時與重試
type Fetcher struct {
	cfg    config.FetchConfig
	client *resty.Client
}

// NewFetcher 創建新的目錄讀取器
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json")

	return &Fetcher{
		cfg:    cfg,
		client: client,
	}
}

// Load 讀取目錄文件內容
func (f *Fetcher) Load(ctx context.Context, path string) ([]byte, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return f.fetchRemote(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	if f.cfg.MaxBytes > 0 && int64(len(data)) > f.cfg.MaxBytes {
		return nil, fmt.Errorf("catalog file exceeds size limit (%d bytes)", f.cfg.MaxBytes)
	}
	return data, nil
}

// fetchRemote 抓取遠端目錄
func (f *Fetcher) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	common.LogInfo("抓取遠端目錄",
		zap.String("url", url),
		zap.Duration("timeout", f.cfg.Timeout),
	)

	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("failed to fetch catalog: unexpected status %d", resp.StatusCode())
	}

	body := resp.Body()
	if f.cfg.MaxBytes > 0 && int64(len(body)) > f.cfg.MaxBytes {
		return nil, fmt.Errorf("remote catalog exceeds size limit (%d bytes)", f.cfg.MaxBytes)
	}
	return body, nil
}
