package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"broker_backend/internal/app/router"
	authadapters "broker_backend/internal/feature/auth/adapters"
	authhandler "broker_backend/internal/feature/auth/transport/handler"
	authusecase "broker_backend/internal/feature/auth/usecase"
	companyadapters "broker_backend/internal/feature/company/adapters"
	companyhandler "broker_backend/internal/feature/company/transport/handler"
	companyusecase "broker_backend/internal/feature/company/usecase"
	ratesadapters "broker_backend/internal/feature/rates/adapters"
	"broker_backend/internal/feature/rates/adapters/fxfeed"
	ratesusecase "broker_backend/internal/feature/rates/usecase"
	tradingadapters "broker_backend/internal/feature/trading/adapters"
	tradinghandler "broker_backend/internal/feature/trading/transport/handler"
	tradingusecase "broker_backend/internal/feature/trading/usecase"
	"broker_backend/internal/platform/cache"
	platformdb "broker_backend/internal/platform/db"
	platformhttp "broker_backend/internal/platform/http"
	jwtmw "broker_backend/internal/platform/jwt"
	platformredis "broker_backend/internal/platform/redis"
)

func main() {
	// .env はローカル開発用。本番では環境変数を直接設定する
	_ = godotenv.Load()

	// db
	db := platformdb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	userRepo := authadapters.NewUserMySQL(db)
	companyRepo := companyadapters.NewCompanyMySQL(db)
	tradeRepo := tradingadapters.NewTradeMySQL(db)
	rateRepo := ratesadapters.NewRateMySQL(db)

	// Redisキャッシュでラップ
	cachedCompanyRepo := cache.NewCachingCompanyRepository(rdb, 5*time.Minute, companyRepo, "companies")

	// 外部為替フィード
	feedCfg := fxfeed.LoadConfig()
	feed := fxfeed.NewClient(feedCfg, platformhttp.NewHTTPClient(feedCfg.Timeout))

	// Usecase
	jwtGen := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), 24*time.Hour)
	authUC := authusecase.NewAuthUsecase(userRepo, jwtGen)
	ratesUC := ratesusecase.NewRatesUsecase(rateRepo, feed, cachedCompanyRepo)
	companyUC := companyusecase.NewCompanyUsecase(cachedCompanyRepo, ratesUC)
	tradingUC := tradingusecase.NewTradingUsecase(tradeRepo, cachedCompanyRepo)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	companyH := companyhandler.NewCompanyHandler(companyUC)
	tradingH := tradinghandler.NewTradingHandler(tradingUC)

	// ルータ生成
	r := router.NewRouter(authH, companyH, tradingH)

	// ブラウザクライアント用CORS
	corsCfg := cors.DefaultConfig()
	if origins := splitOrigins(os.Getenv("CORS_ALLOW_ORIGINS")); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

// splitOrigins はカンマ区切りのCORS_ALLOW_ORIGINS指定をオリジンのリストへ分割します。
// 空要素と前後の空白は取り除きます。
func splitOrigins(s string) []string {
	var origins []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}
