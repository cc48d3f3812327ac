// Command ratesync fetches the latest exchange rates from the external feed,
// stores them, and reprices companies whose quote currency moved. With
// -interval it keeps running on a fixed schedule; without it, it syncs once.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	companyadapters "broker_backend/internal/feature/company/adapters"
	ratesadapters "broker_backend/internal/feature/rates/adapters"
	"broker_backend/internal/feature/rates/adapters/fxfeed"
	ratesusecase "broker_backend/internal/feature/rates/usecase"
	"broker_backend/internal/platform/cache"
	platformdb "broker_backend/internal/platform/db"
	platformhttp "broker_backend/internal/platform/http"
	platformredis "broker_backend/internal/platform/redis"
	"broker_backend/internal/shared/ratelimiter"
	"broker_backend/internal/shared/schedule"
)

func main() {
	interval := flag.Duration("interval", 0, "sync repeatedly at this interval (e.g. 1h); 0 syncs once and exits")
	flag.Parse()

	_ = godotenv.Load()

	db := platformdb.OpenDB()

	// サーバーと同じRedisを共有しているため、再価格付け後は
	// サーバーが読む会社キャッシュを無効化する必要がある
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Repriced companies may be served stale until cache TTL.")
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}
	companyRepo := companyadapters.NewCompanyMySQL(db)
	cachedCompanyRepo := cache.NewCachingCompanyRepository(rdb, 5*time.Minute, companyRepo, "companies")

	feedCfg := fxfeed.LoadConfig()
	feed := fxfeed.NewClient(feedCfg, platformhttp.NewHTTPClient(feedCfg.Timeout))
	rateRepo := ratesadapters.NewRateMySQL(db)
	uc := ratesusecase.NewRatesUsecase(rateRepo, feed, cachedCompanyRepo)

	// 無料プランのフィードは呼び出し回数に厳しい上限がある
	limiter := ratelimiter.NewRateLimiter(60, time.Hour)
	sync := func(ctx context.Context) error {
		limiter.WaitIfNeeded()
		return uc.SyncRates(ctx)
	}

	if *interval <= 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := sync(ctx); err != nil {
			log.Fatal(err)
		}
		log.Println("rate sync ok")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedule.RunEvery(ctx, *interval, "ratesync", sync)
}
