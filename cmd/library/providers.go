package main

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/application/library"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/persistence/gormstore"
	redisstore "github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/mq"
)

// provideDB 打开存储，cleanup关闭连接
func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := gormstore.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = gormstore.Close(db) }, nil
}

// provideSideEffects 按配置组装可借快照缓存与事件发布
//
// 两者都是提交后的旁路动作，连不上时只记录告警，服务照常启动。
func provideSideEffects(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]library.Option, func()) {
	var (
		opts     []library.Option
		cleanups []func()
	)

	if cfg.Redis.Enabled {
		client, err := redisstore.NewClient(ctx, cfg)
		if err != nil {
			logger.Warn("redis unavailable, availability cache disabled", "addr", cfg.Redis.Addr(), "error", err)
		} else {
			opts = append(opts, library.WithCache(redisstore.NewAvailabilityCache(client, cfg.Redis.SnapshotTTL)))
			cleanups = append(cleanups, func() { _ = client.Close() })
		}
	}

	if cfg.MQ.Enabled {
		pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, logger)
		if err != nil {
			logger.Warn("rabbitmq unavailable, loan events disabled", "exchange", cfg.MQ.Exchange, "error", err)
		} else {
			opts = append(opts, library.WithPublisher(messaging.NewEventPublisher(pub, cfg.Server.StoreTimeout)))
			cleanups = append(cleanups, func() { _ = pub.Close() })
		}
	}

	return opts, func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
}

// provideLibrary 创建图书馆核心并从存储加载
func provideLibrary(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	books book.Repository,
	members member.Repository,
	loans loan.Repository,
	opts []library.Option,
) (*library.Library, error) {
	all := append([]library.Option{
		library.WithLogger(logger),
		library.WithStoreTimeout(cfg.Server.StoreTimeout),
	}, opts...)

	lib := library.New(books, members, loans, all...)
	if err := lib.Load(ctx); err != nil {
		return nil, err
	}
	return lib, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpire)
}

func provideAuthMiddleware(cfg *config.Config, m *jwt.Manager) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(m, cfg.JWT.Enabled)
}
