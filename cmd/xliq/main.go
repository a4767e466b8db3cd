package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"xliq/internal/application/port"
	"xliq/internal/application/service"
	"xliq/internal/application/usecase/watch"
	"xliq/internal/infrastructure/config"
	"xliq/internal/infrastructure/exchange"
	"xliq/internal/infrastructure/logger"
	"xliq/internal/infrastructure/storage/composite"
	"xliq/internal/infrastructure/storage/parquet"
	"xliq/internal/infrastructure/storage/postgres"
	"xliq/internal/infrastructure/storage/redis"
	"xliq/internal/infrastructure/storage/s3"
	"xliq/internal/infrastructure/storage/sqlite"
	"xliq/internal/interfaces/console"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	watchMode := flag.Bool("watch", false, "show live quotes instead of capturing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watchMode {
		if err := runWatch(ctx, cfg); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("watch exited")
		}
		return
	}

	source, err := exchange.New(cfg.Capture.Exchange, credsFromEnv(cfg.Capture.Exchange), optionsFor(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("build exchange adapter failed")
	}

	repo := buildRepo(cfg)
	if repo == nil {
		log.Fatal().Msg("no storage backend enabled")
	}
	defer repo.Close()

	var rdb *goredis.Client
	if cfg.Storage.Redis.Enabled {
		rdb = goredis.NewClient(&goredis.Options{Addr: cfg.Storage.Redis.Addr})
		defer rdb.Close()
		source = redis.NewQuoteCache(source, rdb, cfg.Storage.Redis.Prefix, cfg.RedisTTL())
	}

	archiver := buildArchiver(ctx, cfg)

	log.Info().
		Str("config", *configPath).
		Str("exchange", cfg.Capture.Exchange).
		Strs("pairs", cfg.Capture.Pairs).
		Dur("interval", cfg.CaptureInterval()).
		Msg("xliq started")

	var wg sync.WaitGroup

	// Seed the quote cache from the Binance stream when both are on.
	if rdb != nil && cfg.Capture.Exchange == "binance" && cfg.Exchange.Binance.Enabled && cfg.Exchange.Binance.WsURL != "" {
		cache, ok := source.(*redis.QuoteCache)
		if ok {
			wg.Add(1)
			go func() {
				defer wg.Done()
				runQuoteFeed(ctx, cfg, cache)
			}()
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		fs := service.NewFundingSync(source, repo, cfg.Capture.Pairs, time.Hour)
		fs.Run(ctx)
	}()

	for _, pair := range cfg.Capture.Pairs {
		capture := service.NewCapture(source, repo, archiver, service.CaptureConfig{
			Pair:     pair,
			Depth:    cfg.Capture.Depth,
			Interval: cfg.CaptureInterval(),
			Duration: cfg.CaptureDuration(),
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := capture.Run(ctx); err != nil {
				log.Error().Err(err).Msg("capture exited")
			}
		}()
	}

	wg.Wait()
	log.Info().Msg("xliq stopped")
}

func credsFromEnv(name string) exchange.Credentials {
	switch name {
	case "bybit":
		return exchange.Credentials{
			APIKey:    os.Getenv("XLIQ_BYBIT_API_KEY"),
			APISecret: os.Getenv("XLIQ_BYBIT_API_SECRET"),
		}
	default:
		return exchange.Credentials{
			APIKey:    os.Getenv("XLIQ_BINANCE_API_KEY"),
			APISecret: os.Getenv("XLIQ_BINANCE_API_SECRET"),
		}
	}
}

func optionsFor(cfg *config.Config) exchange.Options {
	switch cfg.Capture.Exchange {
	case "bybit":
		return exchange.Options{RestURL: cfg.Exchange.Bybit.RestURL, RPS: cfg.Exchange.Bybit.RPS}
	default:
		return exchange.Options{RestURL: cfg.Exchange.Binance.RestURL, RPS: cfg.Exchange.Binance.RPS}
	}
}

func buildRepo(cfg *config.Config) port.SnapshotRepository {
	var repos []port.SnapshotRepository

	if cfg.Storage.SQLite.Enabled {
		r, err := sqlite.New(cfg.Storage.SQLite.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("open sqlite failed")
		}
		repos = append(repos, r)
	}
	if cfg.Storage.Postgres.Enabled {
		r, err := postgres.New(cfg.Storage.Postgres.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres failed")
		}
		repos = append(repos, r)
	}

	switch len(repos) {
	case 0:
		return nil
	case 1:
		return repos[0]
	default:
		return composite.New(repos...)
	}
}

func buildArchiver(ctx context.Context, cfg *config.Config) port.Archiver {
	if !cfg.Storage.S3.Enabled {
		return nil
	}
	store, err := s3.New(ctx, s3.Options{
		Bucket:          cfg.Storage.S3.Bucket,
		Region:          cfg.Storage.S3.Region,
		Endpoint:        cfg.Storage.S3.Endpoint,
		AccessKeyID:     os.Getenv("XLIQ_S3_ACCESS_KEY"),
		SecretAccessKey: os.Getenv("XLIQ_S3_SECRET_KEY"),
		PathStyle:       cfg.Storage.S3.PathStyle,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("open s3 failed")
	}
	return parquet.NewArchiver(store, cfg.Storage.S3.Prefix)
}

// runWatch shows a live quote line from the Binance stream and a periodic
// best-across-exchanges snapshot over every enabled adapter.
func runWatch(ctx context.Context, cfg *config.Config) error {
	var ports []port.MarketData
	if cfg.Exchange.Binance.Enabled {
		p, err := exchange.New("binance", credsFromEnv("binance"), exchange.Options{
			RestURL: cfg.Exchange.Binance.RestURL,
			RPS:     cfg.Exchange.Binance.RPS,
		})
		if err != nil {
			return err
		}
		ports = append(ports, p)
	}
	if cfg.Exchange.Bybit.Enabled {
		p, err := exchange.New("bybit", credsFromEnv("bybit"), exchange.Options{
			RestURL: cfg.Exchange.Bybit.RestURL,
			RPS:     cfg.Exchange.Bybit.RPS,
		})
		if err != nil {
			return err
		}
		ports = append(ports, p)
	}

	var feeds []port.QuoteFeed
	if cfg.Exchange.Binance.Enabled && cfg.Exchange.Binance.WsURL != "" {
		feeds = append(feeds, exchange.NewBookTickerFeed(cfg.Exchange.Binance.WsURL))
	}

	svc := watch.NewService(watch.ServiceDeps{
		Feeds:         feeds,
		Ports:         ports,
		Symbols:       cfg.Capture.Pairs,
		PrintEveryMin: 1,
		Sink:          console.NewSink(),
	})
	return svc.Run(ctx)
}

func runQuoteFeed(ctx context.Context, cfg *config.Config, cache *redis.QuoteCache) {
	feed := exchange.NewBookTickerFeed(cfg.Exchange.Binance.WsURL)
	ticks, err := feed.Subscribe(ctx, cfg.Capture.Pairs)
	if err != nil {
		log.Warn().Err(err).Msg("quote feed unavailable")
		return
	}
	for tick := range ticks {
		cache.StoreQuote(ctx, tick.Symbol, tick.Quote, tick.Ts)
	}
}
