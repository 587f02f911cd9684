// Package jwt 馆员访问令牌
//
// 只有持有有效令牌的馆员可以调用写接口（上架、办证、借还书、缴罚款）；
// 令牌由运维通过`library token`命令签发，不存在登录流程。
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Manager 令牌签发与校验
type Manager struct {
	secret []byte
	issuer string
	expire time.Duration
	now    func() time.Time
}

// NewManager 创建Manager，expire<=0时令牌有效期为24小时
func NewManager(secret, issuer string, expire time.Duration) *Manager {
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		issuer: issuer,
		expire: expire,
		now:    time.Now,
	}
}

// Claims 令牌载荷
type Claims struct {
	StaffID string `json:"staff_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Issue 签发令牌，返回令牌字符串和过期时间
func (m *Manager) Issue(staffID, role string) (string, time.Time, error) {
	if staffID == "" {
		return "", time.Time{}, apperrors.New(apperrors.ErrCodeInvalidParams, "staff id is required")
	}

	now := m.now()
	expiresAt := now.Add(m.expire)
	claims := Claims{
		StaffID: staffID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   staffID,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "sign token")
	}
	return token, expiresAt, nil
}

// Parse 校验签名、签发者和有效期
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.StaffID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
