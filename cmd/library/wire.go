//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 运行 `wire gen ./cmd/library` 生成wire_gen.go；未生成时bootstrap.go手动完成同样的组装。

package main

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/gormstore"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/router"
)

// storeSet 存储层
var storeSet = wire.NewSet(
	provideDB,
	gormstore.NewTxManager,
	gormstore.NewBookRepository,
	gormstore.NewMemberRepository,
	gormstore.NewLoanRepository,
)

// coreSet 图书馆核心与旁路
var coreSet = wire.NewSet(
	provideSideEffects,
	provideLibrary,
)

// httpSet 接口层
var httpSet = wire.NewSet(
	provideJWTManager,
	provideAuthMiddleware,
	handler.NewBookHandler,
	handler.NewMemberHandler,
	handler.NewLoanHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// initializeEngine 构造HTTP引擎，cleanup释放存储与旁路连接
func initializeEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gin.Engine, func(), error) {
	wire.Build(storeSet, coreSet, httpSet)
	return nil, nil, nil
}
