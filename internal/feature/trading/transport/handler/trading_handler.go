// Package handler はtradingフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"broker_backend/internal/api"
	"broker_backend/internal/feature/trading/domain/entity"
	"broker_backend/internal/feature/trading/transport/http/dto"
	"broker_backend/internal/feature/trading/usecase"
	jwtmw "broker_backend/internal/platform/jwt"
)

// TradingUsecase は売買操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type TradingUsecase interface {
	// Buy はユーザーが株式を購入し、購入後の全保有状況を返します。
	Buy(ctx context.Context, userID, companyID uint, quantity int64) ([]entity.Position, error)
	// Sell はユーザーが株式を売却し、売却後の全保有状況を返します。
	Sell(ctx context.Context, userID, companyID uint, quantity int64) ([]entity.Position, error)
	// Holdings はユーザーの現在の全保有状況を返します。
	Holdings(ctx context.Context, userID uint) ([]entity.Position, error)
}

// TradingHandler は売買操作のHTTPリクエストを処理します。
type TradingHandler struct {
	trading TradingUsecase
}

// NewTradingHandler はTradingHandlerの新しいインスタンスを生成します。
func NewTradingHandler(trading TradingUsecase) *TradingHandler {
	return &TradingHandler{trading: trading}
}

// Buy は株式購入APIエンドポイントを処理します。
// - 会社が存在しない場合は404
// - 在庫不足の場合は406
// - 競合リトライ上限到達の場合は409
// - 成功時は購入後の保有一覧を200で返却
func (h *TradingHandler) Buy(c *gin.Context) {
	h.trade(c, h.trading.Buy)
}

// Sell は株式売却APIエンドポイントを処理します。
// - 会社が存在しない場合は404
// - 保有不足（ポジションなしを含む）の場合は406
// - 競合リトライ上限到達の場合は409
// - 成功時は売却後の保有一覧を200で返却
func (h *TradingHandler) Sell(c *gin.Context) {
	h.trade(c, h.trading.Sell)
}

// Holdings はユーザーの保有一覧APIエンドポイントを処理します。
func (h *TradingHandler) Holdings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	positions, err := h.trading.Holdings(c.Request.Context(), userID)
	if err != nil {
		slog.Error("failed to list holdings", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, toItems(positions))
}

// trade はBuy/Sell共通のリクエスト処理を実装します。
func (h *TradingHandler) trade(c *gin.Context, op func(ctx context.Context, userID, companyID uint, quantity int64) ([]entity.Position, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid company id"})
		return
	}

	var req dto.TradeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	positions, err := op(c.Request.Context(), userID, uint(companyID), req.Quantity)
	if err != nil {
		status, msg := tradeErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("trade failed", "user_id", userID, "company_id", companyID, "error", err)
		}
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, toItems(positions))
}

// tradeErrorStatus はユースケースのエラーをHTTPステータスへ変換します。
func tradeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, usecase.ErrCompanyNotFound):
		return http.StatusNotFound, "Company not found"
	case errors.Is(err, usecase.ErrInsufficientShares):
		return http.StatusNotAcceptable, "Not enough company shares"
	case errors.Is(err, usecase.ErrInsufficientHoldings):
		return http.StatusNotAcceptable, "Not enough shares"
	case errors.Is(err, usecase.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid quantity"
	case errors.Is(err, usecase.ErrTradeConflict):
		return http.StatusConflict, "trade conflicted, please retry"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// currentUserID はJWTミドルウェアが設定したユーザーIDを取得します。
func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// toItems はポジションのスライスをレスポンスDTOへ変換します。
func toItems(positions []entity.Position) []dto.PositionItem {
	out := make([]dto.PositionItem, 0, len(positions))
	for _, p := range positions {
		out = append(out, dto.PositionItem{CompanyID: p.CompanyID, Quantity: p.Quantity})
	}
	return out
}
