package fxfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"broker_backend/internal/feature/rates/adapters/fxfeed/dto"
	"broker_backend/internal/feature/rates/domain"
	"broker_backend/internal/feature/rates/domain/entity"
	"broker_backend/internal/feature/rates/usecase"
)

// Client は外部為替レートAPIからレートを取得するRateFeed実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがRateFeedを実装していることをコンパイル時に検証します。
var _ usecase.RateFeed = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// FetchLatest はフィードの/latestエンドポイントから最新レート一式を取得します。
// ネットワークエラーおよび4xx/5xx応答はdomain.ErrFeedUnavailableとして報告し、
// 呼び出し側が保存済みレートを変更しないことを保証します。
func (f *Client) FetchLatest(ctx context.Context) (*entity.RateSnapshot, error) {
	q := url.Values{}
	q.Set("access_key", f.cfg.FXAPIKey)
	q.Set("format", "1")

	u := fmt.Sprintf("%s/latest?%s", f.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: http %d", domain.ErrFeedUnavailable, res.StatusCode)
	}

	var body dto.LatestResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrFeedUnavailable, err)
	}
	if body.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrFeedUnavailable, body.Error.Info)
	}

	rates := make(map[string]decimal.Decimal, len(body.Rates))
	for currency, rate := range body.Rates {
		rates[currency] = decimal.NewFromFloat(rate)
	}
	return &entity.RateSnapshot{
		Base:  body.Base,
		Date:  body.Date,
		Rates: rates,
	}, nil
}
