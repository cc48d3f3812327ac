// Package fxfeed は外部為替レートAPIのクライアントを提供します。
package fxfeed

import (
	"os"
	"time"
)

// Config は為替レートAPIクライアントの設定を保持します。
type Config struct {
	FXAPIKey string        // 認証用APIキー
	BaseURL  string        // APIのベースURL（例: "https://api.exchangeratesapi.io/v1"）
	Timeout  time.Duration // HTTPリクエストタイムアウト
}

// LoadConfig は環境変数から為替レートAPIの設定を読み込みます。
func LoadConfig() Config {
	return Config{
		FXAPIKey: os.Getenv("FX_API_KEY"),
		BaseURL:  os.Getenv("FX_API_URL"),
		Timeout:  10 * time.Second,
	}
}
