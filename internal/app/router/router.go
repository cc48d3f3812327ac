package router

import (
	"github.com/gin-gonic/gin"

	authhandler "broker_backend/internal/feature/auth/transport/handler"
	companyhandler "broker_backend/internal/feature/company/transport/handler"
	tradinghandler "broker_backend/internal/feature/trading/transport/handler"
	"broker_backend/internal/platform/http/handler"
	jwtmw "broker_backend/internal/platform/jwt"
)

func NewRouter(authHandler *authhandler.AuthHandler, companies *companyhandler.CompanyHandler,
	trading *tradinghandler.TradingHandler) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	// 新規ユーザー登録
	r.POST("/signup", authHandler.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", authHandler.Login)

	// 認証必須のルート
	// r.Group("/") でルートグループを作成
	auth := r.Group("/")
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	// RequireActiveUser はリクエストごとにユーザーを再取得し、
	// 削除済み・無効化済みアカウントの有効なトークンを拒否する
	auth.Use(jwtmw.AuthRequired(), authHandler.RequireActiveUser())
	{
		auth.GET("/me", authHandler.Me)
		auth.DELETE("/me", authHandler.DeleteMe)

		auth.GET("/companies", companies.List)
		auth.POST("/companies", companies.Create)
		auth.GET("/companies/:id", companies.Get)
		auth.PUT("/companies/:id", companies.Update)
		auth.PATCH("/companies/:id", companies.Patch)
		auth.DELETE("/companies/:id", companies.Delete)

		auth.POST("/shares/buy/:id", trading.Buy)
		auth.POST("/shares/sell/:id", trading.Sell)
		auth.GET("/shares", trading.Holdings)
	}

	return r
}
