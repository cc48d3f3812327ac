// Package handler はcompanyフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"broker_backend/internal/api"
	"broker_backend/internal/feature/company/domain/entity"
	"broker_backend/internal/feature/company/transport/http/dto"
	"broker_backend/internal/feature/company/usecase"
	ratesdomain "broker_backend/internal/feature/rates/domain"
)

// CompanyUsecase は会社情報操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type CompanyUsecase interface {
	CreateCompany(ctx context.Context, c *entity.Company) error
	// GetCompany はIDで会社を取得します。currencyが空でない場合、価格をその通貨へ換算して返します。
	GetCompany(ctx context.Context, id uint, currency string) (*entity.Company, error)
	ListCompanies(ctx context.Context, f usecase.ListFilter) ([]entity.Company, error)
	UpdateCompany(ctx context.Context, id uint, name, symbol string, price float64, availableShares int64) (*entity.Company, error)
	PatchCompany(ctx context.Context, id uint, patch usecase.CompanyPatch) (*entity.Company, error)
	DeleteCompany(ctx context.Context, id uint) error
}

// CompanyHandler は会社情報のHTTPリクエストを処理します。
type CompanyHandler struct {
	companies CompanyUsecase
}

// NewCompanyHandler はCompanyHandlerの新しいインスタンスを生成します。
func NewCompanyHandler(companies CompanyUsecase) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// Create は会社登録APIエンドポイントを処理します。
// - 名前またはシンボルが重複している場合は404
// - 成功時は登録した会社を201で返却
func (h *CompanyHandler) Create(c *gin.Context) {
	var req dto.CreateCompanyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	company := &entity.Company{
		Name:            req.Name,
		Symbol:          strings.ToUpper(req.Symbol),
		Currency:        req.Currency,
		Price:           req.Price,
		AvailableShares: req.AvailableShares,
	}
	if err := h.companies.CreateCompany(c.Request.Context(), company); err != nil {
		status, msg := companyErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to create company", "symbol", req.Symbol, "error", err)
		}
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusCreated, dto.FromEntity(company))
}

// Get は会社取得APIエンドポイントを処理します。
// currencyクエリパラメータが指定された場合、価格をその通貨で返します。
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := companyID(c)
	if !ok {
		return
	}

	currency := strings.ToUpper(c.Query("currency"))
	company, err := h.companies.GetCompany(c.Request.Context(), id, currency)
	if err != nil {
		status, msg := companyErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to get company", "id", id, "error", err)
		}
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(company))
}

// List は会社一覧APIエンドポイントを処理します。
func (h *CompanyHandler) List(c *gin.Context) {
	var q dto.ListCompaniesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid query"})
		return
	}

	filter := usecase.ListFilter{
		Name:        q.Name,
		Currency:    q.Currency,
		Price:       q.Price,
		PriceGT:     q.PriceGT,
		PriceLT:     q.PriceLT,
		Available:   q.Available,
		AvailableGT: q.AvailableGT,
		AvailableLT: q.AvailableLT,
		SortPrice:   q.SortPrice,
		SortUpdated: q.SortDate,
	}
	companies, err := h.companies.ListCompanies(c.Request.Context(), filter)
	if err != nil {
		slog.Error("failed to list companies", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntities(companies))
}

// Update は会社情報の全置換APIエンドポイントを処理します。通貨は変更されません。
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := companyID(c)
	if !ok {
		return
	}

	var req dto.UpdateCompanyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	company, err := h.companies.UpdateCompany(c.Request.Context(), id, req.Name, strings.ToUpper(req.Symbol), req.Price, req.AvailableShares)
	if err != nil {
		status, msg := companyErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to update company", "id", id, "error", err)
		}
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(company))
}

// Patch は会社情報の部分更新APIエンドポイントを処理します。
func (h *CompanyHandler) Patch(c *gin.Context) {
	id, ok := companyID(c)
	if !ok {
		return
	}

	var req dto.PatchCompanyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	patch := usecase.CompanyPatch{
		Name:            req.Name,
		Symbol:          req.Symbol,
		Price:           req.Price,
		AvailableShares: req.AvailableShares,
	}
	if patch.Symbol != nil {
		upper := strings.ToUpper(*patch.Symbol)
		patch.Symbol = &upper
	}

	company, err := h.companies.PatchCompany(c.Request.Context(), id, patch)
	if err != nil {
		status, msg := companyErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to patch company", "id", id, "error", err)
		}
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(company))
}

// Delete は会社削除APIエンドポイントを処理します。関連するポジションも同時に削除されます。
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := companyID(c)
	if !ok {
		return
	}

	if err := h.companies.DeleteCompany(c.Request.Context(), id); err != nil {
		status, msg := companyErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to delete company", "id", id, "error", err)
		}
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Company deleted"})
}

// companyID はパスパラメータから会社IDを取得します。不正な場合は400を返します。
func companyID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid company id"})
		return 0, false
	}
	return uint(id), true
}

// companyErrorStatus はユースケースのエラーをHTTPステータスへ変換します。
func companyErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrCompanyNotFound):
		return http.StatusNotFound, "Company not found"
	case errors.Is(err, usecase.ErrCompanyAlreadyExists):
		return http.StatusNotFound, "Company or symbol already exists"
	case errors.Is(err, ratesdomain.ErrUnknownCurrency):
		return http.StatusUnprocessableEntity, "Unknown currency"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
