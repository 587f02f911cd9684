// Package router 组装gin路由
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/library/internal/infrastructure/config"
	_ "github.com/xiebiao/library/internal/interface/http/docs"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Books   *handler.BookHandler
	Members *handler.MemberHandler
	Loans   *handler.LoanHandler
	Auth    *middleware.AuthMiddleware
}

// New 创建gin引擎
//
// 路由：
//
//	GET  /ping | /metrics | /swagger/*any
//	GET  /api/v1/books?q=          GET  /api/v1/books/:isbn
//	GET  /api/v1/members/:id       GET  /api/v1/members/:id/loans
//	GET  /api/v1/stats
//	写接口（需要馆员令牌）：
//	POST /api/v1/books             POST /api/v1/members
//	PUT  /api/v1/members/:id/status
//	POST /api/v1/members/:id/fines/payments
//	POST /api/v1/loans             POST /api/v1/loans/return
func New(cfg *config.Config, logger *slog.Logger, h Handlers) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	staff := h.Auth.RequireStaff()
	v1 := r.Group("/api/v1")
	{
		books := v1.Group("/books")
		{
			books.GET("", h.Books.ListBooks)
			books.GET("/:isbn", h.Books.GetBook)
			books.POST("", staff, h.Books.AddBook)
		}

		members := v1.Group("/members")
		{
			members.GET("/:id", h.Members.GetMember)
			members.GET("/:id/loans", h.Members.ListLoans)
			members.POST("", staff, h.Members.AddMember)
			members.PUT("/:id/status", staff, h.Members.SetStatus)
			members.POST("/:id/fines/payments", staff, h.Members.PayFine)
		}

		loans := v1.Group("/loans", staff)
		{
			loans.POST("", h.Loans.Borrow)
			loans.POST("/return", h.Loans.Return)
		}

		v1.GET("/stats", h.Loans.Stats)
	}

	return r
}
