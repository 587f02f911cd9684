package main

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/library"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/logger"
	"github.com/xiebiao/library/internal/infrastructure/persistence/gormstore"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/pkg/tracing"
)

// app 命令共享的运行时依赖
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	lib      *library.Library
	cleanups []func()
}

// bootstrap 手动组装依赖（与wire.go中的Provider一致）
//
// 依赖链：配置 → 日志 → 追踪 → 存储 → 旁路（Redis/MQ） → Library（加载内存索引）
func bootstrap(ctx context.Context, configPath string) (*app, error) {
	// 1. 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// 2. 日志
	a := &app{cfg: cfg, logger: logger.New(cfg.Log)}

	// 3. 链路追踪
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			a.logger.Warn("tracing disabled", "endpoint", cfg.Tracing.Endpoint, "error", err)
		} else {
			a.cleanups = append(a.cleanups, func() { _ = shutdown(context.Background()) })
		}
	}

	// 4. 存储
	db, closeDB, err := provideDB(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.cleanups = append(a.cleanups, closeDB)

	// 5. 旁路
	opts, closeSide := provideSideEffects(ctx, cfg, a.logger)
	a.cleanups = append(a.cleanups, closeSide)

	// 6. 图书馆核心
	a.lib, err = provideLibrary(ctx, cfg, a.logger,
		gormstore.NewBookRepository(db),
		gormstore.NewMemberRepository(db),
		gormstore.NewLoanRepository(db, gormstore.NewTxManager(db)),
		opts,
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// engine 组装HTTP路由
func (a *app) engine() *gin.Engine {
	return router.New(a.cfg, a.logger, router.Handlers{
		Books:   handler.NewBookHandler(a.lib),
		Members: handler.NewMemberHandler(a.lib),
		Loans:   handler.NewLoanHandler(a.lib),
		Auth:    provideAuthMiddleware(a.cfg, provideJWTManager(a.cfg)),
	})
}

// Close 逆序释放资源
func (a *app) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}
