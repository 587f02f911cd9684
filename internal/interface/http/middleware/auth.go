package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/response"
)

const (
	ctxStaffID = "staff_id"
	ctxRole    = "role"
)

// AuthMiddleware 馆员令牌校验
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	enabled    bool
}

// NewAuthMiddleware 创建认证中间件，enabled=false时所有请求直接放行（本地调试）
func NewAuthMiddleware(jwtManager *jwt.Manager, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		enabled:    enabled,
	}
}

// RequireStaff 写接口必须携带馆员令牌
// 流程：
// 1. 读取Authorization: Bearer <token>
// 2. 校验签名、签发者、有效期
// 3. staff_id和role写入gin.Context
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.Parse(parts[1])
		if err != nil {
			response.Error(c, err) // ErrTokenExpired / ErrInvalidToken
			c.Abort()
			return
		}

		c.Set(ctxStaffID, claims.StaffID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// GetStaffID 当前馆员ID，未认证时为空
func GetStaffID(c *gin.Context) string {
	return c.GetString(ctxStaffID)
}
